package thermal

import (
	"math"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

const (
	deg = math.Pi / 180

	absorptivitySW   = 0.67
	absorptivityLW   = 0.95
	radiativeCoeff   = 6.0 // W/m²K
	floorReflectance = 0.2
	skyVaultFraction = 1.0
	bodyExposure     = 1.0

	globeDiameter   = 0.15 // m
	globeEmissivity = 0.95
)

// SolarInput is the argument set for MRTFromSolar. Azimuth, wind speed and
// clothing are carried for callers that log the full state; the projected area
// factor is azimuth-averaged because the person's orientation is unknown.
type SolarInput struct {
	AirTemp   float64
	WindSpeed float64
	CLO       float64
	Posture   domain.Posture
	GHI       float64
	DNI       float64
	DHI       float64
	Zenith    float64
	Azimuth   float64
}

// MRTFromSolar returns the mean radiant temperature seen by a person exposed
// to the given irradiance. Unavailable when the sun is not above the horizon
// or the inputs are non-physical.
func MRTFromSolar(in SolarInput) (float64, bool) {
	elevation := 90 - in.Zenith
	if elevation <= 0 || in.GHI < 0 || in.DNI < 0 || in.WindSpeed < 0 || in.CLO < 0 {
		return 0, false
	}
	fEff, ok := effectiveRadiationArea(in.Posture)
	if !ok {
		return 0, false
	}
	diffuse := in.DHI
	if diffuse <= 0 {
		diffuse = math.Max(0, in.GHI-in.DNI*math.Cos(in.Zenith*deg))
	}

	fp := projectedAreaFactor(in.Posture, elevation)
	erf := (0.5*fEff*skyVaultFraction*(diffuse+in.GHI*floorReflectance) +
		fEff*fp*bodyExposure*in.DNI) * (absorptivitySW / absorptivityLW)

	tr := in.AirTemp + erf/(fEff*radiativeCoeff)
	if !finite(tr) {
		return 0, false
	}
	return tr, true
}

// MRTFromGlobe converts a globe temperature to mean radiant temperature.
func MRTFromGlobe(tg, ta, v float64) (float64, bool) {
	if v < 0 || !finite(tg) || !finite(ta) {
		return 0, false
	}
	k := 1.1e8 * math.Pow(v, 0.6) / (globeEmissivity * math.Pow(globeDiameter, 0.4))
	inner := math.Pow(tg+273.15, 4) + k*(tg-ta)
	if inner <= 0 {
		return 0, false
	}
	return math.Pow(inner, 0.25) - 273.15, true
}

// MeanRadiant applies the documented MRT fallback: SolarCal when the sun is up
// and the model is available, otherwise the dry-bulb temperature. fromSolar
// reports which branch was taken.
func MeanRadiant(in SolarInput) (tr float64, fromSolar bool) {
	if 90-in.Zenith <= 0 {
		return in.AirTemp, false
	}
	if tr, ok := MRTFromSolar(in); ok {
		return tr, true
	}
	return in.AirTemp, false
}

func effectiveRadiationArea(p domain.Posture) (float64, bool) {
	switch p {
	case domain.PostureStanding:
		return 0.725, true
	case domain.PostureSeated:
		return 0.696, true
	default:
		return 0, false
	}
}

// projectedAreaFactor approximates the azimuth-averaged fraction of body area
// projected toward the sun at the given elevation (degrees).
func projectedAreaFactor(p domain.Posture, elevation float64) float64 {
	c := math.Cos(elevation * (0.998 - elevation*elevation/50000) * deg)
	if p == domain.PostureSeated {
		return 0.12 + 0.14*c
	}
	return 0.308 * c
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
