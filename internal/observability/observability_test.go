package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.StepsInterpolated.Add(3)
	assert.InDelta(t, 3, testutil.ToFloat64(a.StepsInterpolated), 1e-9)
	assert.Zero(t, testutil.ToFloat64(b.StepsInterpolated))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.PhysioRuns.WithLabelValues("ok").Inc()
	m.PeakRiskLevel.Set(2)

	path := filepath.Join(t.TempDir(), "heat_risk.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `heat_risk_physio_runs_total{outcome="ok"} 1`)
	assert.Contains(t, string(data), "heat_risk_peak_risk_level 2")
}

func TestNewLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "step", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.InDelta(t, 4, entry["step"], 1e-9)
}

func TestNewLoggerTo_TextAndFallbackLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "nonsense", "text")

	logger.Debug("hidden")
	logger.Info("visible")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.NotContains(t, buf.String(), "hidden")
}
