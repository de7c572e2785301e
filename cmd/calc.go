package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dimkit/dimkit/units"
)

// calcArity maps each operator to the number of positional arguments after it.
var calcArity = map[string]int{
	"add": 4, "sub": 4, "mul": 4, "div": 4,
	"min": 4, "max": 4, "rem": 4, "cmp": 4,
	"abs": 2, "neg": 2, "sqrt": 2,
	"pow": 3, "to": 3, "rescale": 3,
}

func calcOps() []string {
	ops := make([]string, 0, len(calcArity))
	for op := range calcArity {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// --- dimkit calc ---

var calcCmd = &cobra.Command{
	Use:   "calc OP VALUE UNIT [VALUE UNIT | N | UNIT | PLACES]",
	Short: "Exact arithmetic on quantities",
	Long: `Apply an operator to quantities. A unit is a catalogued unit ID or a product of
factors joined by '*', such as unit:M*unit:SEC^-1; "1" is a pure number.
Binary operators convert the second operand into the first operand's unit.
Products and quotients are renamed to a catalogued unit when one matches.

Operators: ` + strings.Join(calcOps(), ", "),
	Example: "  dimkit calc add 1 unit:KiloM 500 unit:M\n  dimkit calc mul 10 unit:N 2 unit:M\n  dimkit calc to 36 unit:KiloM*unit:HR^-1 unit:M-PER-SEC",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, cfg := openCatalog(cmd)
		pc, err := resolvePrecision(cfg, precision, cmd.Flags().Changed("precision"), rounding, cmd.Flags().Changed("rounding"))
		if err != nil {
			logrus.Fatalf("Invalid precision: %v", err)
		}
		out, err := calculate(c.Arithmetic(pc), args[0], args[1:])
		if err != nil {
			logrus.Fatalf("calc %s: %v", args[0], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	},
}

// parseUnitExpr parses a '*'-joined product of factor units. "1" and the empty
// string are the pure number.
func parseUnitExpr(s string) (units.FactorUnits, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "1" {
		return units.FactorUnits{}, nil
	}
	var fus units.FactorUnits
	for _, part := range strings.Split(s, "*") {
		f, err := units.ParseFactorUnit(part)
		if err != nil {
			return nil, err
		}
		fus = append(fus, f)
	}
	return fus, nil
}

// parseQuantity parses a value and a unit expression.
func parseQuantity(value, unit string) (units.Quantity, error) {
	v, err := units.ParseRat(value)
	if err != nil {
		return units.Quantity{}, err
	}
	fus, err := parseUnitExpr(unit)
	if err != nil {
		return units.Quantity{}, err
	}
	return units.Quantity{Value: v, Unit: fus}, nil
}

// calculate applies op to the positional operands and renders the result.
func calculate(a *units.Arithmetic, op string, operands []string) (string, error) {
	arity, ok := calcArity[op]
	if !ok {
		return "", fmt.Errorf("unknown operator %q; valid: %s", op, strings.Join(calcOps(), ", "))
	}
	if len(operands) != arity {
		return "", fmt.Errorf("%s takes %d arguments, got %d", op, arity, len(operands))
	}
	x, err := parseQuantity(operands[0], operands[1])
	if err != nil {
		return "", err
	}

	var result units.Quantity
	switch op {
	case "abs":
		result, err = a.Abs(x)
	case "neg":
		result, err = a.Negate(x)
	case "sqrt":
		result, err = a.Sqrt(x)
	case "pow":
		n, perr := strconv.Atoi(operands[2])
		if perr != nil {
			return "", fmt.Errorf("power %q is not an integer", operands[2])
		}
		result, err = a.Pow(x, n)
	case "to":
		result, err = a.ConvertTo(x, operands[2])
	case "rescale":
		places, perr := strconv.ParseInt(operands[2], 10, 32)
		if perr != nil {
			return "", fmt.Errorf("places %q is not an integer", operands[2])
		}
		result, err = a.Rescale(x, int32(places))
	default:
		y, perr := parseQuantity(operands[2], operands[3])
		if perr != nil {
			return "", perr
		}
		if op == "cmp" {
			n, cerr := a.Compare(x, y)
			if cerr != nil {
				return "", cerr
			}
			return strconv.Itoa(n), nil
		}
		result, err = binaryOp(a, op, x, y)
	}
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

func binaryOp(a *units.Arithmetic, op string, x, y units.Quantity) (units.Quantity, error) {
	switch op {
	case "add":
		return a.Add(x, y)
	case "sub":
		return a.Subtract(x, y)
	case "mul":
		return a.Multiply(x, y)
	case "div":
		return a.Divide(x, y)
	case "min":
		return a.Min(x, y)
	case "max":
		return a.Max(x, y)
	default:
		return a.Remainder(x, y)
	}
}

func init() {
	addPrecisionFlags(calcCmd)
	rootCmd.AddCommand(calcCmd)
}
