package search

import "github.com/dimkit/dimkit/units"

func init() {
	units.NewLabelIndexFunc = func(caseInsensitive bool) units.LabelIndex {
		return New[string](caseInsensitive)
	}
}
