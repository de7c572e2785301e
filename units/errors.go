package units

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below unwraps to one of these, so callers
// can use errors.Is for classification and errors.As for the details.
var (
	ErrParse                   = errors.New("parse error")
	ErrNotFound                = errors.New("not found")
	ErrIncompatibleDimensions  = errors.New("incompatible dimensions")
	ErrInconvertibleQuantities = errors.New("inconvertible quantities")
	ErrMissingConversionData   = errors.New("missing conversion data")
	ErrArgument                = errors.New("invalid argument")
	ErrInternalConsistency     = errors.New("internal consistency violation")
)

// ParseError reports a malformed dimension vector (or other catalog literal).
type ParseError struct {
	Input  string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at offset %d: %s", e.Input, e.Offset, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// NotFoundError reports an ID that does not resolve to a catalog entity.
type NotFoundError struct {
	Kind string // "unit", "prefix", "quantity kind", "system of units"
	ID   string
	// Referrer is the entity whose definition held the dangling reference, if any.
	Referrer string
}

func (e *NotFoundError) Error() string {
	if e.Referrer != "" {
		return fmt.Sprintf("%s %q referenced by %q not found", e.Kind, e.ID, e.Referrer)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IncompatibleDimensionsError reports two factor-unit products whose dimension
// vectors differ.
type IncompatibleDimensionsError struct {
	Left, Right       string
	LeftDim, RightDim DimensionVector
}

func (e *IncompatibleDimensionsError) Error() string {
	return fmt.Sprintf("%s (%s) and %s (%s) have different dimensions", e.Left, e.LeftDim, e.Right, e.RightDim)
}

func (e *IncompatibleDimensionsError) Unwrap() error { return ErrIncompatibleDimensions }

// InconvertibleQuantitiesError reports a conversion between units of different
// physical dimension.
type InconvertibleQuantitiesError struct {
	From, To       string
	FromDim, ToDim DimensionVector
}

func (e *InconvertibleQuantitiesError) Error() string {
	return fmt.Sprintf("cannot convert %s (%s) to %s (%s)", e.From, e.FromDim, e.To, e.ToDim)
}

func (e *InconvertibleQuantitiesError) Unwrap() error { return ErrInconvertibleQuantities }

// MissingConversionDataError reports a unit without a conversion multiplier.
type MissingConversionDataError struct {
	UnitID string
}

func (e *MissingConversionDataError) Error() string {
	return fmt.Sprintf("unit %q has no conversion multiplier", e.UnitID)
}

func (e *MissingConversionDataError) Unwrap() error { return ErrMissingConversionData }

// ArgumentError reports a malformed request or definition.
type ArgumentError struct {
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Arg, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrArgument }

// InternalConsistencyError reports a catalog defect such as a cycle in the
// scalingOf / factor-unit / broader graph. The catalog is acyclic by
// construction, so this is an assertion failure rather than a user error.
type InternalConsistencyError struct {
	Path   []string
	Reason string
}

func (e *InternalConsistencyError) Error() string {
	if len(e.Path) == 0 {
		return "internal consistency: " + e.Reason
	}
	return fmt.Sprintf("internal consistency: %s [%s]", e.Reason, strings.Join(e.Path, " -> "))
}

func (e *InternalConsistencyError) Unwrap() error { return ErrInternalConsistency }
