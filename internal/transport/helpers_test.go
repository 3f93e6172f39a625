package transport

import (
	"testing"
	"time"

	"github.com/synheart/synheart-bpsim/internal/models"
)

func testReading(seq int64) models.Reading {
	return models.NewReading("run-test", seq, float64(11+24*(seq-1)), models.StateNormal, models.Measurement{SBP: 120, DBP: 75})
}

// waitFor polls cond until it holds or the timeout expires
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
