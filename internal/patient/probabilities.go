package patient

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/synheart/synheart-bpsim/internal/history"
	"github.com/synheart/synheart-bpsim/internal/models"
)

// Probabilities is a categorical distribution over patient states
type Probabilities struct {
	Normal  float64 `json:"normal" yaml:"normal"`
	Bad     float64 `json:"bad" yaml:"bad"`
	Missing float64 `json:"missing" yaml:"missing"`
}

// Of returns the probability of state s
func (p Probabilities) Of(s models.State) float64 {
	switch s {
	case models.StateNormal:
		return p.Normal
	case models.StateBad:
		return p.Bad
	case models.StateMissing:
		return p.Missing
	}
	return 0
}

// Sum returns the total probability mass
func (p Probabilities) Sum() float64 {
	return p.Normal + p.Bad + p.Missing
}

// Validate checks every entry lies in [0,1] and the entries sum to 1
func (p Probabilities) Validate() error {
	for _, s := range models.States {
		if v := p.Of(s); v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("probability of %s out of range: %v", s, v)
		}
	}
	if math.Abs(p.Sum()-1) > 1e-9 {
		return fmt.Errorf("probabilities sum to %v, want 1", p.Sum())
	}
	return nil
}

// MostLikely returns the state with the highest probability, ties going to
// the earliest state in canonical order
func (p Probabilities) MostLikely() models.State {
	best := models.States[0]
	for _, s := range models.States[1:] {
		if p.Of(s) > p.Of(best) {
			best = s
		}
	}
	return best
}

// Ascending returns the states ordered by increasing probability. Equal
// probabilities keep canonical order.
func (p Probabilities) Ascending() []models.State {
	states := make([]models.State, len(models.States))
	copy(states, models.States)
	sort.SliceStable(states, func(i, j int) bool {
		return p.Of(states[i]) < p.Of(states[j])
	})
	return states
}

// Classify counts state occurrences over every calendar day spanned by
// readings. A day with no reading counts once as missing; a day with several
// readings contributes one classification per reading.
func Classify(readings []history.DatedReading, th models.Thresholds) (Probabilities, map[models.State]int, error) {
	if len(readings) == 0 {
		return Probabilities{}, nil, &models.InsufficientDataError{Series: "dated readings", Have: 0, Need: 1}
	}

	byDay := make(map[time.Time][]history.DatedReading, len(readings))
	first, last := readings[0].Date, readings[0].Date
	for _, r := range readings {
		byDay[r.Date] = append(byDay[r.Date], r)
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}

	counts := make(map[models.State]int, len(models.States))
	total := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		entries, ok := byDay[day]
		if !ok {
			counts[models.StateMissing]++
			total++
			continue
		}
		for _, r := range entries {
			counts[th.Classify(r.SBP.Float, r.DBP.Float, r.Complete())]++
			total++
		}
	}

	probs := Probabilities{
		Normal:  float64(counts[models.StateNormal]) / float64(total),
		Bad:     float64(counts[models.StateBad]) / float64(total),
		Missing: float64(counts[models.StateMissing]) / float64(total),
	}
	return probs, counts, nil
}
