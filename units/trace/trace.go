package trace

// TraceLevel controls the verbosity of match tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures every exploration step and candidate outcome.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	// MaxSteps caps recorded steps; 0 means unlimited. Steps past the cap are
	// counted in Dropped.
	MaxSteps int
}

// MatchTrace collects the exploration of one match query.
type MatchTrace struct {
	Config   TraceConfig
	UnitID   string
	Steps    []StepRecord
	Outcomes []OutcomeRecord
	Dropped  int
}

// NewMatchTrace creates a MatchTrace ready for recording.
func NewMatchTrace(config TraceConfig, unitID string) *MatchTrace {
	return &MatchTrace{
		Config:   config,
		UnitID:   unitID,
		Steps:    make([]StepRecord, 0),
		Outcomes: make([]OutcomeRecord, 0),
	}
}

// Enabled reports whether records are kept.
func (mt *MatchTrace) Enabled() bool {
	return mt != nil && mt.Config.Level == TraceLevelSteps
}

// RecordStep appends a step record.
func (mt *MatchTrace) RecordStep(record StepRecord) {
	if !mt.Enabled() {
		return
	}
	if mt.Config.MaxSteps > 0 && len(mt.Steps) >= mt.Config.MaxSteps {
		mt.Dropped++
		return
	}
	mt.Steps = append(mt.Steps, record)
}

// RecordOutcome appends a candidate outcome record.
func (mt *MatchTrace) RecordOutcome(record OutcomeRecord) {
	if !mt.Enabled() {
		return
	}
	mt.Outcomes = append(mt.Outcomes, record)
}
