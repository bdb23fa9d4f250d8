package montecarlo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

func TestSummarize(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	s, err := Summarize(values)
	require.NoError(t, err)

	assert.Equal(t, 5, s.N)
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.InDelta(t, 3.0, s.P50, 1e-9)
	assert.InDelta(t, 1.0, s.P5, 1e-9)
	assert.InDelta(t, 5.0, s.P95, 1e-9)
	assert.LessOrEqual(t, s.P25, s.P50)
	assert.LessOrEqual(t, s.P50, s.P75)
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values, "input untouched")

	_, err = Summarize(nil)
	assert.ErrorIs(t, err, domain.ErrNoValidSamples)
}

func TestBands(t *testing.T) {
	series := [][]float64{
		{36.8, 37.0, 37.2},
		{36.8, 37.2, 37.6},
		{36.8, 37.4, 38.0},
	}
	bands, err := Bands(series)
	require.NoError(t, err)
	require.Len(t, bands, 3)

	assert.InDelta(t, 36.8, bands[0].Mean, 1e-9)
	assert.InDelta(t, 37.2, bands[1].P50, 1e-9)
	assert.InDelta(t, 37.6, bands[2].Mean, 1e-9)
	assert.InDeltaSlice(t, []float64{36.8, 37.2, 37.6}, Means(bands), 1e-9)

	_, err = Bands([][]float64{{1, 2}, {1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = Bands(nil)
	assert.ErrorIs(t, err, domain.ErrNoValidSamples)
}
