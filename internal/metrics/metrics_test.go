package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/rules"
)

func TestObserveReading(t *testing.T) {
	m := New()

	m.ObserveReading(models.NewReading("run", 1, 11, models.StateNormal, models.Measurement{SBP: 121, DBP: 75}))
	m.ObserveReading(models.NewReading("run", 2, 35, models.StateMissing, models.MissingMeasurement))
	m.ObserveReading(models.NewReading("run", 3, 59, models.StateNormal, models.Measurement{SBP: 118, DBP: 70}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.measurements.WithLabelValues("normal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.measurements.WithLabelValues("missing")))
	assert.Equal(t, 118.0, testutil.ToFloat64(m.lastSBP))
	assert.Equal(t, 59.0, testutil.ToFloat64(m.simHour))
}

func TestObserveVerdicts(t *testing.T) {
	m := New()
	m.ObserveVerdicts(&rules.Verdicts{
		Rules:  []string{"base", "sd"},
		Matrix: [][]bool{{true, false, false}, {true, true, true}},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.verdicts.WithLabelValues("base", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.verdicts.WithLabelValues("base", "rejected")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.verdicts.WithLabelValues("sd", "accepted")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.AddDropped(4)
	m.SetClients("websocket", 2)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, "bpsim_dispatcher_dropped_total 4"))
	assert.True(t, strings.Contains(text, `bpsim_stream_clients{transport="websocket"} 2`))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveVerdicts(&rules.Verdicts{
		Rules:  []string{"arv"},
		Matrix: [][]bool{{true, true, false}},
	})

	path := filepath.Join(t.TempDir(), "bpsim.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `bpsim_rule_verdicts_total{rule="arv",verdict="accepted"} 2`)
	assert.Contains(t, text, `bpsim_rule_verdicts_total{rule="arv",verdict="rejected"} 1`)
}
