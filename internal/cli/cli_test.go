package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synheart/synheart-bpsim/internal/history"
	"github.com/synheart/synheart-bpsim/internal/metrics"
	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/output"
	"github.com/synheart/synheart-bpsim/internal/patient"
	"github.com/synheart/synheart-bpsim/internal/rules"
)

const diary = `Datetime	SBP	DBP
2021-03-01 08:00:00	120	80
2021-03-02 08:00:00	130	85
2021-03-03 08:00:00	110	70
2021-03-04 08:00:00
2021-03-05 08:00:00	140	90
`

func writeDiary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diary.tsv")
	require.NoError(t, os.WriteFile(path, []byte(diary), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	path := writeDiary(t)

	out, err := execute(t, "simulate", "--data", path, "--days", "5", "--seed", "3", "--format", "ndjson")
	require.NoError(t, err)

	readings, err := output.ReadReadings(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, readings, 5)
	for i, r := range readings {
		assert.Equal(t, float64(i*24+11), r.Hour)
		assert.Equal(t, readings[0].RunID, r.RunID)
	}

	again, err := execute(t, "simulate", "--data", path, "--days", "5", "--seed", "3", "--format", "ndjson")
	require.NoError(t, err)
	replay, err := output.ReadReadings(strings.NewReader(again))
	require.NoError(t, err)
	assert.Equal(t, models.Measurements(readings), models.Measurements(replay))
}

func TestFilterCommand_SelfFit(t *testing.T) {
	path := writeDiary(t)
	promFile := filepath.Join(t.TempDir(), "filter.prom")

	out, err := execute(t, "filter",
		"--data", path, "--days", "10", "--seed", "11",
		"--rules", "base,sd,arv", "--fit-on", "self", "--verdicts",
		"--metrics-file", promFile,
		"--format", "json",
	)
	require.NoError(t, err)

	var report output.FilterReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 10, report.Samples)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Rules, 3)
	require.Len(t, report.Verdicts, 3)

	for i, name := range []string{"base", "sd", "arv"} {
		s := report.Rules[i]
		assert.Equal(t, name, s.Rule)
		assert.Equal(t, 10, s.Accepted+s.Rejected)
		require.NotNil(t, s.Confusion)
		assert.Equal(t, 10, s.Confusion.TP+s.Confusion.FP+s.Confusion.TN+s.Confusion.FN)
	}

	prom, err := os.ReadFile(promFile)
	require.NoError(t, err)
	text := string(prom)
	for _, s := range report.Rules {
		assert.Contains(t, text, fmt.Sprintf(`bpsim_rule_verdicts_total{rule=%q,verdict="accepted"} %d`, s.Rule, s.Accepted))
	}
}

func TestStreamObserver_StopsWhenCancelled(t *testing.T) {
	filter := rules.New(rules.NewBase(models.DefaultThresholds()))
	readings := make(chan models.Reading) // nobody receives

	ctx, cancel := context.WithCancel(context.Background())
	observe := streamObserver(ctx, metrics.New(), filter, readings)
	cancel()

	done := make(chan struct{})
	go func() {
		observe(models.NewReading("run", 1, 11, models.StateNormal, models.Measurement{SBP: 120, DBP: 80}))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("observer blocked on a full channel after cancellation")
	}
}

func TestStreamObserver_HandsOffReading(t *testing.T) {
	filter := rules.New(rules.NewBase(models.DefaultThresholds()))
	readings := make(chan models.Reading, 1)

	observe := streamObserver(context.Background(), metrics.New(), filter, readings)
	r := models.NewReading("run", 1, 11, models.StateNormal, models.Measurement{SBP: 120, DBP: 80})
	observe(r)

	require.Len(t, readings, 1)
	assert.Equal(t, r, <-readings)
}

func TestFilterCommand_UnknownRule(t *testing.T) {
	_, err := execute(t, "filter", "--rules", "median", "--format", "json")
	assert.Error(t, err)
}

func TestProfileCommand(t *testing.T) {
	path := writeDiary(t)

	out, err := execute(t, "profile", "--data", path, "--format", "json")
	require.NoError(t, err)

	var report output.ProfileReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, path, report.Source)
	assert.InDelta(t, 125, report.MeanSBP, 1e-9)
	assert.InDelta(t, 81.25, report.MeanDBP, 1e-9)
}

func TestScenariosCommands(t *testing.T) {
	out, err := execute(t, "scenarios", "list", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "baseline")

	out, err = execute(t, "scenarios", "describe", "baseline", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario: baseline")

	_, err = execute(t, "scenarios", "describe", "nope", "--format", "table")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "bpsim v"+Version)
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"base,sd,arv", []string{"base", "sd", "arv"}},
		{" base , arv ", []string{"base", "arv"}},
		{"sd,,", []string{"sd"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitList(tt.in), tt.in)
	}
}

func TestHistoryMeasurements(t *testing.T) {
	provider := history.NewMemoryProvider(
		[]string{"Datetime", "SBP", "DBP"},
		[][]string{
			{"2021-03-01 08:00:00", "120", "80"},
			{"2021-03-02 08:00:00", "", ""},
			{"2021-03-03 08:00:00", "130", ""},
			{"2021-03-04 08:00:00", "110", "70"},
		},
	)
	p, err := patient.NewProfile(provider, history.DefaultColumns())
	require.NoError(t, err)

	assert.Equal(t, []models.Measurement{
		{SBP: 120, DBP: 80},
		models.MissingMeasurement,
		{SBP: 130, DBP: models.Missing},
		{SBP: 110, DBP: 70},
	}, historyMeasurements(p))
}
