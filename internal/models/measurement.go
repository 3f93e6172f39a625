package models

import "fmt"

// Missing is the sentinel stored in a Measurement field that was not measured.
const Missing = -1

// Measurement is a single blood-pressure reading in mmHg
type Measurement struct {
	SBP int `json:"sbp"`
	DBP int `json:"dbp"`
}

// MissingMeasurement is the record of a measurement attempt that produced nothing
var MissingMeasurement = Measurement{SBP: Missing, DBP: Missing}

// HasSBP reports whether the systolic value was measured
func (m Measurement) HasSBP() bool {
	return m.SBP != Missing
}

// HasDBP reports whether the diastolic value was measured
func (m Measurement) HasDBP() bool {
	return m.DBP != Missing
}

// IsMissing reports whether the measurement is the full (-1, -1) sentinel
func (m Measurement) IsMissing() bool {
	return m == MissingMeasurement
}

func (m Measurement) String() string {
	return fmt.Sprintf("%d/%d", m.SBP, m.DBP)
}

// Thresholds are the clinical bounds a plausible reading falls within.
// Lower bounds are inclusive, upper bounds exclusive.
type Thresholds struct {
	MinSBP float64
	MaxSBP float64
	MinDBP float64
	MaxDBP float64
}

// DefaultThresholds returns the bounds used for state classification and the base rule
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSBP: 80,
		MaxSBP: 180,
		MinDBP: 50,
		MaxDBP: 120,
	}
}

// Contains reports whether both values fall inside the bounds
func (t Thresholds) Contains(sbp, dbp float64) bool {
	return sbp >= t.MinSBP && sbp < t.MaxSBP &&
		dbp >= t.MinDBP && dbp < t.MaxDBP
}

// InRange applies Contains to a measurement
func (t Thresholds) InRange(m Measurement) bool {
	return t.Contains(float64(m.SBP), float64(m.DBP))
}

// Classify maps a historical reading onto a patient state. ok is false when
// either value was null.
func (t Thresholds) Classify(sbp, dbp float64, ok bool) State {
	if !ok {
		return StateMissing
	}
	if t.Contains(sbp, dbp) {
		return StateNormal
	}
	return StateBad
}
