package models

// SchemaVersion identifies the Reading envelope layout
const SchemaVersion = "bpsim.reading.v1"

// Reading is one completed measurement event produced by the simulator
type Reading struct {
	SchemaVersion string      `json:"schema_version"`
	RunID         string      `json:"run_id"`
	Sequence      int64       `json:"sequence"`
	Hour          float64     `json:"hour"` // simulated time
	Day           int         `json:"day"`
	State         State       `json:"state"`
	Measurement   Measurement `json:"measurement"`
}

// NewReading creates a Reading for a measurement taken at the given simulated hour
func NewReading(runID string, sequence int64, hour float64, state State, m Measurement) Reading {
	return Reading{
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		Sequence:      sequence,
		Hour:          hour,
		Day:           int(hour / 24),
		State:         state,
		Measurement:   m,
	}
}

// Measurements extracts the measurement stream from a reading log
func Measurements(readings []Reading) []Measurement {
	out := make([]Measurement, len(readings))
	for i, r := range readings {
		out[i] = r.Measurement
	}
	return out
}

// GroundTruth marks which readings were taken in an anomalous state
func GroundTruth(readings []Reading) []bool {
	out := make([]bool, len(readings))
	for i, r := range readings {
		out[i] = r.State.Anomalous()
	}
	return out
}
