// Package trace provides step recording for unit matching analysis.
// This package has no dependencies on units/: it stores pure data types.
package trace

// Action names the kind of exploration step taken at a unit.
type Action string

const (
	// ActionConsume consumed a selector at the visited unit.
	ActionConsume Action = "consume"
	// ActionDescendScaled recursed from a scaled unit into its base.
	ActionDescendScaled Action = "descend-scaled"
	// ActionDescendFactors recursed into a derived unit's factor units.
	ActionDescendFactors Action = "descend-factors"
)

// StepRecord captures a single exploration step.
type StepRecord struct {
	UnitID    string
	Path      string // positional path from the unit under test ("", "/0", "/1~")
	Exponent  int    // cumulative exponent at this unit
	Action    Action
	Remaining int    // selectors left after the step
	Scale     string // cumulative scale factor after the step
}

// OutcomeRecord captures one candidate selection that consumed every selector.
type OutcomeRecord struct {
	Consumed []string // paths where selectors were consumed
	Scale    string
	Complete bool // no selectors left and scale factor of one
	Matched  bool // complete and every subtree explained
}
