package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
	"github.com/couchcryptid/heat-risk-engine/internal/montecarlo"
	"github.com/couchcryptid/heat-risk-engine/internal/physio"
)

func cloSpec() []montecarlo.Spec {
	return []montecarlo.Spec{{Name: "clo", Mean: 0.5, Std: 0.1, Min: 0.1, Max: 1.5}}
}

func TestMonteCarloPhysiology_Bands(t *testing.T) {
	runner, metrics, _ := realRunner()
	req := scenarioRequest(t)
	initial, err := runner.Initial(req)
	require.NoError(t, err)

	engine := montecarlo.NewEngine(7, slog.Default(), metrics)
	bands, err := runner.MonteCarloPhysiology(context.Background(), engine, req, initial, cloSpec(),
		montecarlo.Options[domain.PhysioTimeSeries]{Samples: 8, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 8, bands.Ensemble.Succeeded())
	require.Len(t, bands.RectalTemp, 13)
	require.Len(t, bands.WaterLoss, 13)
	for i, b := range bands.RectalTemp {
		assert.LessOrEqual(t, b.P5, b.P95, "index %d", i)
		assert.Equal(t, 8, b.N)
	}
	assert.InDelta(t, 8, testutil.ToFloat64(metrics.PhysioRuns.WithLabelValues("ok")), 1e-9)
}

func TestMonteCarloPhysiology_WrongLengthIsNoValidSamples(t *testing.T) {
	sim := fixedSimulator{series: domain.PhysioTimeSeries{
		TimeMinutes: []float64{0, 5},
		RectalTemp:  []float64{37, 37.1},
		WaterLossML: []float64{0, 10},
	}}
	runner, metrics, _ := newRunner(nightSolar{}, sim)
	req := scenarioRequest(t)
	initial, err := runner.Initial(req)
	require.NoError(t, err)

	engine := montecarlo.NewEngine(7, slog.Default(), metrics)
	_, err = runner.MonteCarloPhysiology(context.Background(), engine, req, initial, cloSpec(),
		montecarlo.Options[domain.PhysioTimeSeries]{Samples: 4})
	assert.ErrorIs(t, err, domain.ErrNoValidSamples)
}

func TestMonteCarloPhysiology_InvalidSamplesDropped(t *testing.T) {
	runner, metrics, _ := newRunner(nightSolar{}, physio.NewSimulator())
	req := scenarioRequest(t)
	initial, err := runner.Initial(req)
	require.NoError(t, err)

	// Invalid heights fail validation inside the simulator for every sample.
	specs := []montecarlo.Spec{{Name: "height", Mean: -1, Std: 0, Min: -1, Max: -1}}
	engine := montecarlo.NewEngine(7, slog.Default(), metrics)
	_, err = runner.MonteCarloPhysiology(context.Background(), engine, req, initial, specs,
		montecarlo.Options[domain.PhysioTimeSeries]{Samples: 3})
	assert.ErrorIs(t, err, domain.ErrNoValidSamples)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.PhysioRuns.WithLabelValues("invalid")), 1e-9)
}

type countingSimulator struct {
	calls atomic.Int64
}

func (c *countingSimulator) Simulate(_ context.Context, _ physio.Input) (domain.PhysioTimeSeries, error) {
	c.calls.Add(1)
	return domain.PhysioTimeSeries{}, nil
}

func TestMonteCarloPhysiology_UnevenIntervalRejectedUpFront(t *testing.T) {
	sim := &countingSimulator{}
	runner, metrics, _ := newRunner(nightSolar{}, sim)
	req := scenarioRequest(t)
	initial, err := runner.Initial(req)
	require.NoError(t, err)
	req.IntervalMinutes = 7

	engine := montecarlo.NewEngine(7, slog.Default(), metrics)
	_, err = runner.MonteCarloPhysiology(context.Background(), engine, req, initial, cloSpec(),
		montecarlo.Options[domain.PhysioTimeSeries]{Samples: 5})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, errors.Is(err, domain.ErrNoValidSamples))
	assert.Zero(t, sim.calls.Load())
	assert.Zero(t, testutil.CollectAndCount(metrics.MonteCarloSamples))
}

func TestMonteCarloUTCI(t *testing.T) {
	runner, metrics, _ := realRunner()
	req := scenarioRequest(t)
	initial, err := runner.Initial(req)
	require.NoError(t, err)

	engine := montecarlo.NewEngine(11, slog.Default(), metrics)
	ens, sum, err := runner.MonteCarloUTCI(context.Background(), engine, req, initial, cloSpec(),
		montecarlo.Options[float64]{Samples: 50, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 50, ens.Succeeded())
	assert.Equal(t, 50, sum.N)
	assert.LessOrEqual(t, sum.P5, sum.P50)
	assert.LessOrEqual(t, sum.P50, sum.P95)
}

func TestMonteCarloUTCI_AllOutOfRange(t *testing.T) {
	runner, metrics, _ := realRunner()
	req := scenarioRequest(t)
	req.Slot.WindSpeed = 0.2
	initial, err := runner.Initial(req)
	require.NoError(t, err)
	require.Nil(t, initial.UTCI)

	engine := montecarlo.NewEngine(11, slog.Default(), metrics)
	_, _, err = runner.MonteCarloUTCI(context.Background(), engine, req, initial, cloSpec(),
		montecarlo.Options[float64]{Samples: 10})
	assert.ErrorIs(t, err, domain.ErrNoValidSamples)
	assert.InDelta(t, 10, testutil.ToFloat64(metrics.MonteCarloSamples.WithLabelValues("failed")), 1e-9)
}
