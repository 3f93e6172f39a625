package patient

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/synheart/synheart-bpsim/internal/history"
	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/stats"
)

// Profile is a virtual patient derived from a historical diary. Statistics
// are computed once at construction; only the current state changes.
type Profile struct {
	sbp     history.Series
	dbp     history.Series
	meanSBP float64
	meanDBP float64
	probs   Probabilities
	counts  map[models.State]int

	initial models.State
	current models.State
	policy  TransitionPolicy
}

// Option configures a Profile
type Option func(*options)

type options struct {
	policy     TransitionPolicy
	thresholds models.Thresholds
}

// WithPolicy sets the state transition policy (default TwoSided)
func WithPolicy(p TransitionPolicy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithThresholds overrides the clinical bounds used to classify readings
func WithThresholds(th models.Thresholds) Option {
	return func(o *options) {
		o.thresholds = th
	}
}

// NewProfile loads the diary through provider and derives the patient statistics.
// Provider errors are returned unchanged.
func NewProfile(provider history.Provider, cols history.Columns, opts ...Option) (*Profile, error) {
	sbp, err := provider.LoadSeries(cols.SBP)
	if err != nil {
		return nil, err
	}
	dbp, err := provider.LoadSeries(cols.DBP)
	if err != nil {
		return nil, err
	}
	dated, err := provider.LoadDated(cols.SBP, cols.DBP, cols.Date)
	if err != nil {
		return nil, err
	}
	return NewProfileFromData(sbp, dbp, dated, opts...)
}

// NewProfileFromData builds a profile from already loaded series
func NewProfileFromData(sbp, dbp history.Series, dated []history.DatedReading, opts ...Option) (*Profile, error) {
	o := options{
		policy:     TwoSided{},
		thresholds: models.DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	sbpValues := sbp.Present()
	if len(sbpValues) == 0 {
		return nil, &models.InsufficientDataError{Series: "historical sbp", Have: 0, Need: 1}
	}
	dbpValues := dbp.Present()
	if len(dbpValues) == 0 {
		return nil, &models.InsufficientDataError{Series: "historical dbp", Have: 0, Need: 1}
	}

	probs, counts, err := Classify(dated, o.thresholds)
	if err != nil {
		return nil, fmt.Errorf("failed to compute state probabilities: %w", err)
	}

	p := &Profile{
		sbp:     append(history.Series(nil), sbp...),
		dbp:     append(history.Series(nil), dbp...),
		meanSBP: stats.Mean(sbpValues),
		meanDBP: stats.Mean(dbpValues),
		probs:   probs,
		counts:  counts,
		initial: probs.MostLikely(),
		policy:  o.policy,
	}
	p.current = p.initial
	return p, nil
}

// MeanSBP returns the mean of the non-null historical systolic values
func (p *Profile) MeanSBP() float64 { return p.meanSBP }

// MeanDBP returns the mean of the non-null historical diastolic values
func (p *Profile) MeanDBP() float64 { return p.meanDBP }

// Probabilities returns the historical state distribution
func (p *Profile) Probabilities() Probabilities { return p.probs }

// Counts returns how many classified readings fell into each state
func (p *Profile) Counts() map[models.State]int {
	out := make(map[models.State]int, len(p.counts))
	for k, v := range p.counts {
		out[k] = v
	}
	return out
}

// SBP returns a copy of the historical systolic series
func (p *Profile) SBP() history.Series { return append(history.Series(nil), p.sbp...) }

// DBP returns a copy of the historical diastolic series
func (p *Profile) DBP() history.Series { return append(history.Series(nil), p.dbp...) }

// InitialState returns the most likely historical state
func (p *Profile) InitialState() models.State { return p.initial }

// CurrentState returns the latent state the patient is in now
func (p *Profile) CurrentState() models.State { return p.current }

// Policy returns the configured transition policy
func (p *Profile) Policy() TransitionPolicy { return p.policy }

// Reset puts the patient back into the initial state
func (p *Profile) Reset() {
	p.current = p.initial
}

// Transition moves the patient to its next state using the historical probabilities
func (p *Profile) Transition(rng stats.Rand) models.State {
	return p.TransitionWith(rng, p.probs)
}

// TransitionWith moves the patient to its next state using probs in place of
// the historical distribution
func (p *Profile) TransitionWith(rng stats.Rand, probs Probabilities) models.State {
	p.current = p.policy.Next(rng, p.current, probs)
	return p.current
}

// Summary returns the profile statistics as structured log fields
func (p *Profile) Summary() []zap.Field {
	return []zap.Field{
		zap.Float64("mean_sbp", p.meanSBP),
		zap.Float64("mean_dbp", p.meanDBP),
		zap.Float64("p_normal", p.probs.Normal),
		zap.Float64("p_bad", p.probs.Bad),
		zap.Float64("p_missing", p.probs.Missing),
		zap.String("initial_state", string(p.initial)),
		zap.String("policy", p.policy.Name()),
	}
}
