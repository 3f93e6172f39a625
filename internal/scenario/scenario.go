package scenario

import (
	"fmt"

	"github.com/synheart/synheart-bpsim/internal/patient"
)

// Scenario defines a simulation run with optional phases that override the
// patient's historical state probabilities
type Scenario struct {
	Name              string  `yaml:"name"`
	Description       string  `yaml:"description"`
	Days              int     `yaml:"days"`
	Seed              *int64  `yaml:"seed,omitempty"`
	Transition        string  `yaml:"transition,omitempty"` // two-sided | categorical
	LegacyDiffHalving *bool   `yaml:"legacy_diff_halving,omitempty"`
	Phases            []Phase `yaml:"phases"`
}

// Phase is a span of simulated days. Days == 0 means the phase never ends.
type Phase struct {
	Name          string                 `yaml:"name"`
	Days          int                    `yaml:"days"`
	Probabilities *patient.Probabilities `yaml:"probabilities,omitempty"`
}

// Validate checks the scenario is runnable
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.Days < 0 {
		return fmt.Errorf("scenario %s: days must not be negative", s.Name)
	}
	if _, err := patient.PolicyByName(s.Transition); err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	for i, ph := range s.Phases {
		if ph.Days < 0 {
			return fmt.Errorf("scenario %s: phase %d: days must not be negative", s.Name, i+1)
		}
		if ph.Probabilities != nil {
			if err := ph.Probabilities.Validate(); err != nil {
				return fmt.Errorf("scenario %s: phase %s: %w", s.Name, ph.Name, err)
			}
		}
	}
	return nil
}

// TotalDays returns the length of the run, falling back to the sum of the
// phase lengths when Days is unset
func (s *Scenario) TotalDays() int {
	if s.Days > 0 {
		return s.Days
	}
	total := 0
	for _, ph := range s.Phases {
		total += ph.Days
	}
	return total
}

// PhaseAt returns the phase active on the given simulated day
func (s *Scenario) PhaseAt(day int) *Phase {
	if len(s.Phases) == 0 {
		return nil
	}

	start := 0
	for i := range s.Phases {
		if s.Phases[i].Days == 0 {
			return &s.Phases[i]
		}
		if day < start+s.Phases[i].Days {
			return &s.Phases[i]
		}
		start += s.Phases[i].Days
	}

	// past the end the last phase persists
	return &s.Phases[len(s.Phases)-1]
}
