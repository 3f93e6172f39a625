package rules

import "github.com/synheart/synheart-bpsim/internal/models"

// BaseName is the registry name of the clinical range rule
const BaseName = "base"

// NewBase creates the clinical range rule. A measurement is accepted when
// both values fall within th. It needs no fitting.
func NewBase(th models.Thresholds) *Func[models.Thresholds] {
	return NewStatic(BaseName, th, applyBase)
}

func applyBase(th models.Thresholds, data []models.Measurement) []bool {
	out := make([]bool, len(data))
	for i, m := range data {
		out[i] = th.InRange(m)
	}
	return out
}
