package rules

import (
	"fmt"
	"sync"

	"github.com/synheart/synheart-bpsim/internal/models"
)

// Rule is a causal outlier detector. Apply returns one verdict per input
// measurement; true means the measurement is accepted. The verdict at index i
// depends only on the fitted parameters and data[:i+1].
type Rule interface {
	Name() string
	Fit(data []models.Measurement) error
	Apply(data []models.Measurement) ([]bool, error)
	Fitted() bool
}

// FitFunc derives rule parameters from training data
type FitFunc[P any] func(data []models.Measurement) (P, error)

// ApplyFunc produces verdicts from fitted parameters
type ApplyFunc[P any] func(params P, data []models.Measurement) []bool

// Func is a Rule built from a fit and an apply function bound together at
// construction. Parameters are replaced only by a successful fit.
type Func[P any] struct {
	name  string
	fit   FitFunc[P]
	apply ApplyFunc[P]

	mu     sync.RWMutex
	params P
	fitted bool
}

// NewFunc creates a rule that must be fitted before it is applied
func NewFunc[P any](name string, fit FitFunc[P], apply ApplyFunc[P]) *Func[P] {
	return &Func[P]{name: name, fit: fit, apply: apply}
}

// NewStatic creates a rule with fixed parameters. Fit is a no-op and the rule
// can be applied immediately.
func NewStatic[P any](name string, params P, apply ApplyFunc[P]) *Func[P] {
	return &Func[P]{name: name, apply: apply, params: params, fitted: true}
}

func (r *Func[P]) Name() string {
	return r.name
}

// Fit computes new parameters from data. On error the previous parameters,
// fitted or not, are kept.
func (r *Func[P]) Fit(data []models.Measurement) error {
	if r.fit == nil {
		return nil
	}
	params, err := r.fit(data)
	if err != nil {
		return fmt.Errorf("fit %s rule: %w", r.name, err)
	}

	r.mu.Lock()
	r.params = params
	r.fitted = true
	r.mu.Unlock()
	return nil
}

func (r *Func[P]) Apply(data []models.Measurement) ([]bool, error) {
	params, ok := r.Params()
	if !ok {
		return nil, &models.NotFittedError{Rule: r.name}
	}
	return r.apply(params, data), nil
}

func (r *Func[P]) Fitted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fitted
}

// Params returns the fitted parameters and whether the rule has been fitted
func (r *Func[P]) Params() (P, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.params, r.fitted
}

// split extracts the systolic and diastolic series with their validity masks
func split(data []models.Measurement) (sbp, dbp []float64, sbpOK, dbpOK []bool) {
	sbp = make([]float64, len(data))
	dbp = make([]float64, len(data))
	sbpOK = make([]bool, len(data))
	dbpOK = make([]bool, len(data))
	for i, m := range data {
		sbp[i], sbpOK[i] = float64(m.SBP), m.HasSBP()
		dbp[i], dbpOK[i] = float64(m.DBP), m.HasDBP()
	}
	return sbp, dbp, sbpOK, dbpOK
}

func present(values []float64, ok []bool) []float64 {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if ok[i] {
			out = append(out, v)
		}
	}
	return out
}
