package output

import (
	"fmt"
	"strconv"

	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/patient"
	"github.com/synheart/synheart-bpsim/internal/rules"
)

// Readings is a simulated reading log
type Readings []models.Reading

func (r Readings) Header() []string {
	return []string{"SEQ", "DAY", "HOUR", "STATE", "SBP", "DBP"}
}

func (r Readings) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, x := range r {
		rows[i] = []string{
			strconv.FormatInt(x.Sequence, 10),
			strconv.Itoa(x.Day),
			strconv.FormatFloat(x.Hour, 'f', -1, 64),
			string(x.State),
			strconv.Itoa(x.Measurement.SBP),
			strconv.Itoa(x.Measurement.DBP),
		}
	}
	return rows
}

func (r Readings) Records() []any {
	out := make([]any, len(r))
	for i, x := range r {
		out[i] = x
	}
	return out
}

// ProfileReport summarizes a patient profile
type ProfileReport struct {
	Source        string                `json:"source"`
	MeanSBP       float64               `json:"mean_sbp"`
	MeanDBP       float64               `json:"mean_dbp"`
	Probabilities patient.Probabilities `json:"probabilities"`
	Counts        map[models.State]int  `json:"counts"`
	InitialState  models.State          `json:"initial_state"`
	Policy        string                `json:"transition_policy"`
}

// NewProfileReport builds a report from p
func NewProfileReport(source string, p *patient.Profile) ProfileReport {
	return ProfileReport{
		Source:        source,
		MeanSBP:       p.MeanSBP(),
		MeanDBP:       p.MeanDBP(),
		Probabilities: p.Probabilities(),
		Counts:        p.Counts(),
		InitialState:  p.InitialState(),
		Policy:        p.Policy().Name(),
	}
}

func (r ProfileReport) Header() []string {
	return []string{"STAT", "VALUE", ""}
}

func (r ProfileReport) Rows() [][]string {
	rows := [][]string{
		{"source", r.Source, ""},
		{"mean sbp", fmt.Sprintf("%.1f", r.MeanSBP), ""},
		{"mean dbp", fmt.Sprintf("%.1f", r.MeanDBP), ""},
	}
	for _, s := range models.States {
		p := r.Probabilities.Of(s)
		rows = append(rows, []string{
			"p(" + string(s) + ")",
			fmt.Sprintf("%.3f (%d days)", p, r.Counts[s]),
			renderBar(p, 20),
		})
	}
	rows = append(rows,
		[]string{"initial state", string(r.InitialState), ""},
		[]string{"transition", r.Policy, ""},
	)
	return rows
}

// RuleSummary is the outcome of one rule over a run
type RuleSummary struct {
	Rule      string           `json:"rule"`
	Rejected  int              `json:"rejected"`
	Accepted  int              `json:"accepted"`
	Confusion *rules.Confusion `json:"confusion,omitempty"`
}

// FilterReport is the outcome of a filter over a run
type FilterReport struct {
	RunID    string        `json:"run_id,omitempty"`
	Samples  int           `json:"samples"`
	Rules    []RuleSummary `json:"rules"`
	Verdicts [][]bool      `json:"verdicts,omitempty"`
}

// NewFilterReport summarizes v. When anomalous is non-nil every rule is
// scored against it.
func NewFilterReport(runID string, v *rules.Verdicts, anomalous []bool) (FilterReport, error) {
	report := FilterReport{
		RunID:    runID,
		Samples:  v.Samples(),
		Rules:    make([]RuleSummary, len(v.Rules)),
		Verdicts: v.Matrix,
	}
	for i, name := range v.Rules {
		rejected := v.Rejected(name)
		report.Rules[i] = RuleSummary{
			Rule:     name,
			Rejected: rejected,
			Accepted: len(v.Matrix[i]) - rejected,
		}
		if anomalous != nil {
			c, err := rules.Score(v.Matrix[i], anomalous)
			if err != nil {
				return FilterReport{}, err
			}
			report.Rules[i].Confusion = &c
		}
	}
	return report, nil
}

func (r FilterReport) Header() []string {
	return []string{"RULE", "ACCEPTED", "REJECTED", "TP", "FP", "TN", "FN", "PRECISION", "RECALL"}
}

func (r FilterReport) Rows() [][]string {
	rows := make([][]string, len(r.Rules))
	for i, s := range r.Rules {
		row := []string{s.Rule, strconv.Itoa(s.Accepted), strconv.Itoa(s.Rejected)}
		if c := s.Confusion; c != nil {
			row = append(row,
				strconv.Itoa(c.TP), strconv.Itoa(c.FP), strconv.Itoa(c.TN), strconv.Itoa(c.FN),
				fmt.Sprintf("%.2f", c.Precision()), fmt.Sprintf("%.2f", c.Recall()),
			)
		} else {
			row = append(row, "-", "-", "-", "-", "-", "-")
		}
		rows[i] = row
	}
	return rows
}

// Records emits one line per rule
func (r FilterReport) Records() []any {
	out := make([]any, len(r.Rules))
	for i, s := range r.Rules {
		out[i] = s
	}
	return out
}
