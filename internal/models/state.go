package models

import "fmt"

// State is the latent health state of a simulated patient
type State string

const (
	StateNormal  State = "normal"
	StateBad     State = "bad"
	StateMissing State = "missing"
)

// States lists every state in canonical order. Ties between equally likely
// states are always broken by this order.
var States = []State{StateNormal, StateBad, StateMissing}

// ParseState converts a name into a State
func ParseState(s string) (State, error) {
	for _, state := range States {
		if string(state) == s {
			return state, nil
		}
	}
	return "", fmt.Errorf("unknown state %q", s)
}

// Anomalous reports whether readings taken in this state are injected anomalies
func (s State) Anomalous() bool {
	return s != StateNormal
}
