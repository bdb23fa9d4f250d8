package thermal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

func sunny() SolarInput {
	return SolarInput{
		AirTemp:   30,
		WindSpeed: 1,
		CLO:       0.5,
		Posture:   domain.PostureStanding,
		GHI:       900,
		DNI:       800,
		DHI:       150,
		Zenith:    30,
		Azimuth:   180,
	}
}

func TestMRTFromSolar(t *testing.T) {
	tr, ok := MRTFromSolar(sunny())
	require.True(t, ok)
	assert.Greater(t, tr, 40.0)
	assert.Less(t, tr, 80.0)
}

func TestMRTFromSolar_MoreSunHotter(t *testing.T) {
	weak := sunny()
	weak.GHI, weak.DNI, weak.DHI = 300, 200, 100

	trStrong, ok := MRTFromSolar(sunny())
	require.True(t, ok)
	trWeak, ok := MRTFromSolar(weak)
	require.True(t, ok)
	assert.Greater(t, trStrong, trWeak)
}

func TestMRTFromSolar_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SolarInput)
	}{
		{"sun below horizon", func(in *SolarInput) { in.Zenith = 95 }},
		{"sun on horizon", func(in *SolarInput) { in.Zenith = 90 }},
		{"negative ghi", func(in *SolarInput) { in.GHI = -1 }},
		{"unknown posture", func(in *SolarInput) { in.Posture = "lying" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sunny()
			tt.mutate(&in)
			_, ok := MRTFromSolar(in)
			assert.False(t, ok)
		})
	}
}

func TestMeanRadiant_FallsBackToDryBulb(t *testing.T) {
	in := sunny()
	in.Zenith = 100

	tr, fromSolar := MeanRadiant(in)
	assert.False(t, fromSolar)
	assert.Equal(t, in.AirTemp, tr)

	// Irradiance reported with the sun on the horizon is not fed to SolarCal.
	horizon := sunny()
	horizon.Zenith = 90
	tr, fromSolar = MeanRadiant(horizon)
	assert.False(t, fromSolar)
	assert.Equal(t, horizon.AirTemp, tr)

	_, fromSolar = MeanRadiant(sunny())
	assert.True(t, fromSolar)
}

func TestMRTFromGlobe(t *testing.T) {
	tr, ok := MRTFromGlobe(30, 30, 1)
	require.True(t, ok)
	assert.InDelta(t, 30, tr, 1e-9)

	tr, ok = MRTFromGlobe(40, 30, 1)
	require.True(t, ok)
	assert.Greater(t, tr, 40.0)

	_, ok = MRTFromGlobe(40, 30, -1)
	assert.False(t, ok)
}

func TestUTCI(t *testing.T) {
	in := UTCIInput{AirTemp: 30, MeanRadiant: 30, WindSpeed: 2, RelativeHumidity: 40, MET: 1.2, CLO: 0.5}
	v, ok := UTCI(in)
	require.True(t, ok)
	assert.InDelta(t, 28.4, v, 1.0)

	hot := in
	hot.MeanRadiant = 60
	vHot, ok := UTCI(hot)
	require.True(t, ok)
	assert.Greater(t, vHot, v)

	windy := in
	windy.WindSpeed = 8
	vWindy, ok := UTCI(windy)
	require.True(t, ok)
	assert.Less(t, vWindy, v)
}

func TestUTCI_OutOfRange(t *testing.T) {
	valid := UTCIInput{AirTemp: 20, MeanRadiant: 20, WindSpeed: 1, RelativeHumidity: 50, MET: 1, CLO: 1}

	tests := []struct {
		name   string
		mutate func(*UTCIInput)
	}{
		{"too hot", func(in *UTCIInput) { in.AirTemp = 51; in.MeanRadiant = 51 }},
		{"too cold", func(in *UTCIInput) { in.AirTemp = -51; in.MeanRadiant = -51 }},
		{"radiant delta", func(in *UTCIInput) { in.MeanRadiant = 91 }},
		{"calm", func(in *UTCIInput) { in.WindSpeed = 0.4 }},
		{"gale", func(in *UTCIInput) { in.WindSpeed = 18 }},
		{"humidity", func(in *UTCIInput) { in.RelativeHumidity = 101 }},
		{"nan", func(in *UTCIInput) { in.AirTemp = math.NaN() }},
		{"met", func(in *UTCIInput) { in.MET = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, ok := UTCI(in)
			assert.False(t, ok)
		})
	}
}

func TestWBGT(t *testing.T) {
	_, ok := WBGT(30, nil, 50, 1)
	assert.False(t, ok, "no globe temperature")

	tg := 40.0
	v, ok := WBGT(30, &tg, 50, 1)
	require.True(t, ok)
	tw, _ := WetBulb(30, 50)
	assert.InDelta(t, 0.7*tw+0.2*tg+0.1*30, v, 1e-9)
	assert.Greater(t, v, 25.0)
	assert.Less(t, v, 35.0)
}

func TestWetBulb(t *testing.T) {
	// Stull's published check value.
	tw, ok := WetBulb(20, 50)
	require.True(t, ok)
	assert.InDelta(t, 13.7, tw, 0.1)

	_, ok = WetBulb(20, 2)
	assert.False(t, ok)
}
