package physio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

func warmState() domain.ThermalState {
	return domain.ThermalState{
		AirTemp:          30,
		MeanRadiant:      45,
		WindSpeed:        2,
		RelativeHumidity: 40,
		MET:              1.2,
		CLO:              0.5,
		Posture:          domain.PostureStanding,
	}
}

func adult() domain.Human {
	return domain.Human{Age: 35, Weight: 70, Height: 1.75, Sex: domain.SexMale}
}

func TestSimulate_SixtyMinutesFiveMinuteInterval(t *testing.T) {
	sim := NewSimulator()
	series, err := sim.Simulate(context.Background(), Input{
		State: warmState(), Human: adult(), DurationMinutes: 60, IntervalMinutes: 5,
	})
	require.NoError(t, err)
	require.NoError(t, series.Check())

	require.Equal(t, 13, series.Len())
	assert.Len(t, series.RectalTemp, 13)
	assert.Len(t, series.WaterLossML, 13)
	for i, m := range series.TimeMinutes {
		assert.Equal(t, float64(5*i), m)
	}
	assert.Equal(t, 36.8, series.RectalTemp[0])
	assert.Zero(t, series.WaterLossML[0])
	for i := 1; i < series.Len(); i++ {
		assert.GreaterOrEqual(t, series.WaterLossML[i], series.WaterLossML[i-1])
	}
	assert.Positive(t, series.WaterLossML[12])
}

func TestSimulate_WaterLossNonDecreasing(t *testing.T) {
	sim := NewSimulator()
	states := map[string]domain.ThermalState{
		"cool":  {AirTemp: 10, MeanRadiant: 10, WindSpeed: 3, RelativeHumidity: 80, MET: 1, CLO: 1, Posture: domain.PostureSeated},
		"humid": {AirTemp: 33, MeanRadiant: 40, WindSpeed: 0.3, RelativeHumidity: 95, MET: 2, CLO: 0.6, Posture: domain.PostureStanding},
		"dry":   {AirTemp: 38, MeanRadiant: 60, WindSpeed: 1, RelativeHumidity: 10, MET: 3, CLO: 0.3, Posture: domain.PostureStanding},
	}
	for name, st := range states {
		t.Run(name, func(t *testing.T) {
			series, err := sim.Simulate(context.Background(), Input{
				State: st, Human: adult(), DurationMinutes: 120, IntervalMinutes: 10,
			})
			require.NoError(t, err)
			for i := 1; i < series.Len(); i++ {
				assert.GreaterOrEqual(t, series.WaterLossML[i], series.WaterLossML[i-1])
			}
		})
	}
}

func TestSimulate_HarderWorkRaisesCore(t *testing.T) {
	sim := NewSimulator()
	rest, err := sim.Simulate(context.Background(), Input{
		State: warmState(), Human: adult(), DurationMinutes: 60, IntervalMinutes: 60,
	})
	require.NoError(t, err)

	work := warmState()
	work.MET = 4
	hard, err := sim.Simulate(context.Background(), Input{
		State: work, Human: adult(), DurationMinutes: 60, IntervalMinutes: 60,
	})
	require.NoError(t, err)

	assert.Greater(t, hard.RectalTemp[1], rest.RectalTemp[1])
	assert.Greater(t, hard.WaterLossML[1], rest.WaterLossML[1])
}

func TestSimulate_Divergence(t *testing.T) {
	sim := NewSimulator()
	oven := domain.ThermalState{
		AirTemp: 60, MeanRadiant: 120, WindSpeed: 0.5, RelativeHumidity: 100,
		MET: 8, CLO: 3, Posture: domain.PostureStanding,
	}
	series, err := sim.Simulate(context.Background(), Input{
		State: oven, Human: adult(), DurationMinutes: 240, IntervalMinutes: 5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPhysiologyDivergence)
	assert.Zero(t, series.Len(), "no partial series on divergence")
}

func TestSimulate_Validation(t *testing.T) {
	sim := NewSimulator()

	tests := []struct {
		name string
		in   Input
	}{
		{"zero interval", Input{State: warmState(), Human: adult(), DurationMinutes: 60, IntervalMinutes: 0}},
		{"negative duration", Input{State: warmState(), Human: adult(), DurationMinutes: -5, IntervalMinutes: 5}},
		{"uneven interval", Input{State: warmState(), Human: adult(), DurationMinutes: 60, IntervalMinutes: 7}},
		{"bad posture", Input{State: domain.ThermalState{MET: 1, CLO: 1, Posture: "lying"}, Human: adult(), DurationMinutes: 60, IntervalMinutes: 5}},
		{"bad human", Input{State: warmState(), Human: domain.Human{Age: 30, Weight: 0, Height: 1.7, Sex: domain.SexMale}, DurationMinutes: 60, IntervalMinutes: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Simulate(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSimulate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulator().Simulate(ctx, Input{
		State: warmState(), Human: adult(), DurationMinutes: 60, IntervalMinutes: 5,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweatCapacity(t *testing.T) {
	young := adult()
	old := young
	old.Age = 80
	female := young
	female.Sex = domain.SexFemale

	assert.Equal(t, sweatGain, sweatCapacity(young))
	assert.Less(t, sweatCapacity(old), sweatCapacity(young))
	assert.Less(t, sweatCapacity(female), sweatCapacity(young))
}
