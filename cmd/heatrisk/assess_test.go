package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/heat-risk-engine/internal/adapter/forecastfile"
	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	start := time.Date(2026, time.June, 21, 0, 0, 0, 0, time.UTC)
	fc := forecastfile.Forecast{City: "London", Lat: 51.5, Lon: -0.12, TZ: time.UTC}
	for i := 0; i < 8; i++ {
		fc.Slots = append(fc.Slots, domain.ForecastSlot{
			Time: start.Add(time.Duration(i) * 3 * time.Hour), AirTemp: 30, RelativeHumidity: 40, WindSpeed: 2, CloudCover: 20,
		})
	}
	var buf bytes.Buffer
	require.NoError(t, forecastfile.Write(&buf, fc))
	path := filepath.Join(t.TempDir(), "forecast.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAssess_WithMonteCarloAndPlots(t *testing.T) {
	plotDir := filepath.Join(t.TempDir(), "plots")
	metricsFile := filepath.Join(t.TempDir(), "heat_risk.prom")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PLOT_DIR", plotDir)
	t.Setenv("METRICS_TEXTFILE", metricsFile)

	out, err := execute(t, "assess",
		"--forecast", writeFixture(t),
		"--hour", "9",
		"--mc", "--mc-samples", "10",
		"--plots",
	)
	require.NoError(t, err)

	var rep struct {
		RunID      string `json:"run_id"`
		City       string `json:"city"`
		Physiology struct {
			TimeMinutes []float64 `json:"time_minutes"`
		} `json:"physiology"`
		Risk       []int `json:"risk"`
		MonteCarlo struct {
			Seed       uint64 `json:"seed"`
			Succeeded  int    `json:"succeeded"`
			Physiology struct {
				RectalTemp []json.RawMessage `json:"rectal_temp"`
			} `json:"physiology"`
			UTCI *struct {
				N int `json:"n"`
			} `json:"utci"`
		} `json:"monte_carlo"`
		Plots []string `json:"plots"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "London", rep.City)
	assert.Len(t, rep.Physiology.TimeMinutes, 13)
	assert.Len(t, rep.Risk, 13)
	assert.Equal(t, uint64(42), rep.MonteCarlo.Seed)
	assert.Equal(t, 10, rep.MonteCarlo.Succeeded)
	assert.Len(t, rep.MonteCarlo.Physiology.RectalTemp, 13)
	require.NotNil(t, rep.MonteCarlo.UTCI)
	assert.Equal(t, 10, rep.MonteCarlo.UTCI.N)

	require.Len(t, rep.Plots, 4)
	for _, p := range rep.Plots {
		assert.FileExists(t, p)
	}
	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `heat_risk_physio_runs_total{outcome="ok"} 11`)
}

func TestAssess_ReportToFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	outPath := filepath.Join(t.TempDir(), "report.json")

	stdout, err := execute(t, "assess", "--forecast", writeFixture(t), "--hour", "3",
		"--duration", "30", "--interval", "10", "--globe", "35", "--aqi", "2", "--out", outPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var rep struct {
		Initial struct {
			MRTSource string   `json:"mrt_source"`
			WBGT      *float64 `json:"wbgt"`
		} `json:"initial"`
		Physiology struct {
			TimeMinutes []float64 `json:"time_minutes"`
		} `json:"physiology"`
	}
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, "globe", rep.Initial.MRTSource)
	assert.NotNil(t, rep.Initial.WBGT)
	assert.Equal(t, []float64{0, 10, 20, 30}, rep.Physiology.TimeMinutes)
}

func TestAssess_Errors(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	fixture := writeFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing forecast flag", []string{"assess"}},
		{"missing file", []string{"assess", "--forecast", filepath.Join(t.TempDir(), "none.json")}},
		{"bad sex", []string{"assess", "--forecast", fixture, "--sex", "other"}},
		{"uneven interval", []string{"assess", "--forecast", fixture, "--duration", "60", "--interval", "7"}},
		{"slot out of range", []string{"assess", "--forecast", fixture, "--day", "3"}},
		{"bad mc param", []string{"assess", "--forecast", fixture, "--mc", "--mc-param", "clo:0.5"}},
		{"bad tz", []string{"assess", "--forecast", fixture, "--tz", "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
