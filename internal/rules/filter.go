package rules

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/synheart/synheart-bpsim/internal/models"
)

// Filter runs a fixed set of rules over the same data. Rules share no state,
// so each one is fitted and applied on its own goroutine.
type Filter struct {
	rules  []Rule
	logger *zap.Logger
}

// New creates a filter. Verdict rows follow the order of rules.
func New(rules ...Rule) *Filter {
	return &Filter{
		rules:  rules,
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger and returns the filter
func (f *Filter) WithLogger(logger *zap.Logger) *Filter {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// Rules returns the configured rules in order
func (f *Filter) Rules() []Rule {
	return append([]Rule(nil), f.rules...)
}

// Fit fits every rule on data. The first failure is returned. A rule that
// failed keeps its previous parameters.
func (f *Filter) Fit(ctx context.Context, data []models.Measurement) error {
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for _, rule := range f.rules {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return rule.Fit(data)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.logger.Debug("filter fitted",
		zap.Int("rules", len(f.rules)),
		zap.Int("samples", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Apply returns the rules by samples verdict matrix. It fails with a
// NotFittedError when any rule has not been fitted.
func (f *Filter) Apply(ctx context.Context, data []models.Measurement) (*Verdicts, error) {
	for _, rule := range f.rules {
		if !rule.Fitted() {
			return nil, &models.NotFittedError{Rule: rule.Name()}
		}
	}

	v := &Verdicts{
		Rules:  make([]string, len(f.rules)),
		Matrix: make([][]bool, len(f.rules)),
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, rule := range f.rules {
		v.Rules[i] = rule.Name()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := rule.Apply(data)
			if err != nil {
				return err
			}
			if len(row) != len(data) {
				return fmt.Errorf("rule %s returned %d verdicts for %d samples", rule.Name(), len(row), len(data))
			}
			v.Matrix[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, name := range v.Rules {
		f.logger.Debug("rule applied",
			zap.String("rule", name),
			zap.Int("samples", len(data)),
			zap.Int("rejected", v.rejected(i)),
		)
	}
	return v, nil
}

// Verdicts is the output of a filter: one row per rule, one column per sample
type Verdicts struct {
	Rules  []string `json:"rules"`
	Matrix [][]bool `json:"matrix"`
}

// Row returns the verdicts of the named rule
func (v *Verdicts) Row(rule string) ([]bool, bool) {
	for i, name := range v.Rules {
		if name == rule {
			return v.Matrix[i], true
		}
	}
	return nil, false
}

// Rejected returns how many samples the named rule rejected
func (v *Verdicts) Rejected(rule string) int {
	for i, name := range v.Rules {
		if name == rule {
			return v.rejected(i)
		}
	}
	return 0
}

func (v *Verdicts) rejected(i int) int {
	n := 0
	for _, ok := range v.Matrix[i] {
		if !ok {
			n++
		}
	}
	return n
}

// Samples returns the number of samples judged
func (v *Verdicts) Samples() int {
	if len(v.Matrix) == 0 {
		return 0
	}
	return len(v.Matrix[0])
}

// Accepted reports whether every rule accepted sample i
func (v *Verdicts) Accepted(i int) bool {
	for _, row := range v.Matrix {
		if !row[i] {
			return false
		}
	}
	return true
}
