package patient

import (
	"fmt"

	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/stats"
)

// TransitionPolicy picks the next state from the current one
type TransitionPolicy interface {
	Name() string
	Next(rng stats.Rand, current models.State, probs Probabilities) models.State
}

// TwoSided is the legacy policy used to build the historical synthetic
// datasets. A fair coin restricts the draw to [0, 0.5) or [0.5, 1); the new
// state is the first state, in ascending order of probability, whose
// probability is at least the draw. With no such state the current state is kept.
type TwoSided struct{}

func (TwoSided) Name() string { return "two-sided" }

func (TwoSided) Next(rng stats.Rand, current models.State, probs Probabilities) models.State {
	var toss float64
	if rng.Float64() < 0.5 {
		toss = rng.Float64() * 0.5
	} else {
		toss = 0.5 + rng.Float64()*0.5
	}

	for _, s := range probs.Ascending() {
		if probs.Of(s) >= toss {
			return s
		}
	}
	return current
}

// Categorical draws the next state independently from probs using a single
// uniform draw against the cumulative distribution in canonical order.
type Categorical struct{}

func (Categorical) Name() string { return "categorical" }

func (Categorical) Next(rng stats.Rand, current models.State, probs Probabilities) models.State {
	u := rng.Float64()
	cumulative := 0.0
	for _, s := range models.States {
		cumulative += probs.Of(s)
		if u < cumulative {
			return s
		}
	}
	// rounding left u above the total mass
	return probs.MostLikely()
}

// PolicyByName resolves a policy from its configuration name
func PolicyByName(name string) (TransitionPolicy, error) {
	switch name {
	case "", TwoSided{}.Name():
		return TwoSided{}, nil
	case Categorical{}.Name():
		return Categorical{}, nil
	}
	return nil, fmt.Errorf("unknown transition policy %q", name)
}
