package trace

// TraceSummary aggregates statistics from a MatchTrace.
type TraceSummary struct {
	TotalSteps    int
	Consumptions  int
	Descents      int
	MaxDepth      int
	Candidates    int
	CompleteCount int
	MatchedCount  int
	StepsPerUnit  map[string]int // unit ID → number of steps visiting it
}

// Summarize computes aggregate statistics from a MatchTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(mt *MatchTrace) *TraceSummary {
	summary := &TraceSummary{
		StepsPerUnit: make(map[string]int),
	}
	if mt == nil {
		return summary
	}

	summary.TotalSteps = len(mt.Steps)
	for _, s := range mt.Steps {
		summary.StepsPerUnit[s.UnitID]++
		switch s.Action {
		case ActionConsume:
			summary.Consumptions++
		case ActionDescendScaled, ActionDescendFactors:
			summary.Descents++
		}
		if d := depth(s.Path); d > summary.MaxDepth {
			summary.MaxDepth = d
		}
	}

	summary.Candidates = len(mt.Outcomes)
	for _, o := range mt.Outcomes {
		if o.Complete {
			summary.CompleteCount++
		}
		if o.Matched {
			summary.MatchedCount++
		}
	}
	return summary
}

// depth counts the edges in a positional path: one per "/" or "~".
func depth(path string) int {
	n := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' || path[i] == '~' {
			n++
		}
	}
	return n
}
