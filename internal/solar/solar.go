// Package solar computes solar geometry and cloud/turbidity-attenuated
// irradiance for a location and instant.
package solar

import (
	"math"
	"time"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

// DefaultAQI is the neutral air-quality index (1–5 scale) callers substitute
// when no air-quality data is available.
const DefaultAQI = 3

const (
	solarConstant = 1361.0 // W/m²
	deg           = math.Pi / 180
)

// Calculator is a stateless solar-position and clear-sky model. The zero
// value is not usable; construct it with NewCalculator.
type Calculator struct {
	// turbidity maps AQI 1..5 to a Linke turbidity factor.
	turbidity [5]float64
}

// NewCalculator returns a Calculator with the default AQI–turbidity mapping.
func NewCalculator() *Calculator {
	return &Calculator{turbidity: [5]float64{2.5, 3.25, 4.0, 4.75, 5.5}}
}

// Irradiance returns the solar result for the given point and local time.
// cloudCover is a percentage; aqi is on the 1–5 scale.
func (c *Calculator) Irradiance(lat, lon float64, local time.Time, cloudCover float64, aqi int) (domain.SolarResult, error) {
	const op = "solar.irradiance"
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.SolarResult{}, domain.NewError(domain.KindInvalidInput, op, "coordinates out of range: %.4f,%.4f", lat, lon)
	}
	if aqi < 1 || aqi > 5 {
		return domain.SolarResult{}, domain.NewError(domain.KindInvalidInput, op, "aqi %d outside 1..5", aqi)
	}
	if math.IsNaN(cloudCover) || cloudCover < 0 || cloudCover > 100 {
		return domain.SolarResult{}, domain.NewError(domain.KindInvalidInput, op, "cloud cover %.1f outside 0..100", cloudCover)
	}

	zenith, azimuth := Position(lat, lon, local)
	res := domain.SolarResult{
		Zenith:    zenith,
		Azimuth:   azimuth,
		Elevation: 90 - zenith,
	}
	if !res.SunUp() {
		return res, nil
	}

	cosZ := math.Cos(zenith * deg)
	doy := float64(local.UTC().YearDay())
	extra := solarConstant * (1 + 0.033*math.Cos(2*math.Pi*doy/365))
	tl := c.turbidity[aqi-1]

	am := airMass(zenith)
	dniClear := extra * math.Exp(-0.8662*tl*am*rayleighDepth(am))
	dhiClear := extra * cosZ * (0.05 + 0.03*(tl-2))
	ghiClear := dniClear*cosZ + dhiClear

	cf := cloudCover / 100
	res.GHI = ghiClear * (1 - 0.75*math.Pow(cf, 3.4))
	diffuseFrac := dhiClear / ghiClear
	diffuseFrac += (1 - diffuseFrac) * cf
	res.DHI = res.GHI * diffuseFrac
	res.DNI = res.GHI * (1 - diffuseFrac) / cosZ
	return res, nil
}

// Position returns the solar zenith and azimuth (clockwise from north) in
// degrees using the NOAA general solar position equations.
func Position(lat, lon float64, t time.Time) (zenith, azimuth float64) {
	u := t.UTC()
	hour := float64(u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600
	g := 2 * math.Pi / 365 * (float64(u.YearDay()-1) + (hour-12)/24)

	eqTime := 229.18 * (0.000075 + 0.001868*math.Cos(g) - 0.032077*math.Sin(g) -
		0.014615*math.Cos(2*g) - 0.040849*math.Sin(2*g))
	decl := 0.006918 - 0.399912*math.Cos(g) + 0.070257*math.Sin(g) -
		0.006758*math.Cos(2*g) + 0.000907*math.Sin(2*g) -
		0.002697*math.Cos(3*g) + 0.00148*math.Sin(3*g)

	trueSolarMin := hour*60 + eqTime + 4*lon
	ha := (trueSolarMin/4 - 180) * deg
	phi := lat * deg

	cosZ := math.Sin(phi)*math.Sin(decl) + math.Cos(phi)*math.Cos(decl)*math.Cos(ha)
	zenith = math.Acos(math.Max(-1, math.Min(1, cosZ))) / deg

	azimuth = math.Atan2(math.Sin(ha), math.Cos(ha)*math.Sin(phi)-math.Tan(decl)*math.Cos(phi))/deg + 180
	azimuth = math.Mod(azimuth, 360)
	return zenith, azimuth
}

// airMass is the Kasten–Young relative optical air mass.
func airMass(zenithDeg float64) float64 {
	return 1 / (math.Cos(zenithDeg*deg) + 0.50572*math.Pow(96.07995-zenithDeg, -1.6364))
}

// rayleighDepth is the Kasten integral Rayleigh optical thickness.
func rayleighDepth(am float64) float64 {
	if am > 20 {
		return 1 / (10.4 + 0.718*am)
	}
	return 1 / (6.6296 + 1.7513*am - 0.1202*am*am + 0.0065*am*am*am - 0.00013*am*am*am*am)
}
