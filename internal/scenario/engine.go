package scenario

import "github.com/synheart/synheart-bpsim/internal/patient"

// Engine resolves scenario phases against the simulation clock
type Engine struct {
	scenario *Scenario
}

// NewEngine creates a new scenario engine
func NewEngine(scenario *Scenario) *Engine {
	return &Engine{scenario: scenario}
}

// PhaseAt returns the phase active the given number of hours into a run
func (e *Engine) PhaseAt(hour float64) *Phase {
	if e == nil || e.scenario == nil {
		return nil
	}
	return e.scenario.PhaseAt(int(hour / 24))
}

// ProbabilitiesAt returns the state probabilities override active the given
// number of hours into a run, or nil when the patient's own distribution applies
func (e *Engine) ProbabilitiesAt(hour float64) *patient.Probabilities {
	phase := e.PhaseAt(hour)
	if phase == nil {
		return nil
	}
	return phase.Probabilities
}
