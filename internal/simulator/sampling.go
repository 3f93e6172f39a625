package simulator

import "github.com/synheart/synheart-bpsim/internal/models"

// sample draws a measurement conditioned on state
func (s *Simulator) sample(state models.State) models.Measurement {
	switch state {
	case models.StateNormal:
		sbp := s.sbpDist.Sample(s.rng)
		dbp := sbp - s.diffDist.Sample(s.rng)
		return truncate(sbp, dbp)

	case models.StateBad:
		sigma := float64(s.rng.Intn(3) + 1)
		sign := 1.0
		if s.rng.Intn(2) == 0 {
			sign = -1.0
		}
		sbp := s.sbpDist.Sample(s.rng) + sign*sigma*s.sbpStd

		diff := s.diffDist.Sample(s.rng)
		if s.config.LegacyDiffHalving || sign < 0 {
			diff /= 2
		}
		return truncate(sbp, sbp-diff)
	}

	return models.MissingMeasurement
}

// truncate converts sampled values to whole mmHg. Values are floored at zero
// so a sampled reading can never collide with the missing sentinel.
func truncate(sbp, dbp float64) models.Measurement {
	m := models.Measurement{SBP: int(sbp), DBP: int(dbp)}
	if m.SBP < 0 {
		m.SBP = 0
	}
	if m.DBP < 0 {
		m.DBP = 0
	}
	return m
}
