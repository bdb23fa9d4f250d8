package thermal

import "math"

// UTCIInput is the argument set for UTCI. MET and CLO are validated but the
// index itself assumes its reference walking person.
type UTCIInput struct {
	AirTemp          float64
	MeanRadiant      float64
	WindSpeed        float64
	RelativeHumidity float64
	MET              float64
	CLO              float64
}

// UTCI returns the Universal Thermal Climate Index in °C, or false outside
// the validated input ranges.
func UTCI(in UTCIInput) (float64, bool) {
	dTr := in.MeanRadiant - in.AirTemp
	switch {
	case !finite(in.AirTemp) || !finite(in.MeanRadiant):
		return 0, false
	case in.AirTemp < -50 || in.AirTemp > 50:
		return 0, false
	case dTr < -30 || dTr > 70:
		return 0, false
	case in.WindSpeed < 0.5 || in.WindSpeed > 17:
		return 0, false
	case in.RelativeHumidity < 0 || in.RelativeHumidity > 100:
		return 0, false
	case in.MET <= 0 || in.CLO < 0:
		return 0, false
	}

	radiant := 0.28*dTr - 0.0008*dTr*math.Abs(dTr)

	windCoeff := math.Max(0.5, math.Min(4.5, 2.5-0.05*(in.AirTemp-10)))
	wind := -windCoeff * math.Log(in.WindSpeed/0.5)

	var humid float64
	if in.AirTemp > 20 {
		pa := in.RelativeHumidity / 100 * saturationVaporPressure(in.AirTemp)
		humid = (in.AirTemp - 20) / 10 * 0.25 * (pa - 15)
	}

	return in.AirTemp + radiant + wind + humid, true
}

// WBGT returns the outdoor wet-bulb globe temperature in °C. It is
// unavailable when no globe temperature is supplied.
func WBGT(tdb float64, tg *float64, rh, v float64) (float64, bool) {
	if tg == nil || !finite(*tg) || v < 0 {
		return 0, false
	}
	tw, ok := WetBulb(tdb, rh)
	if !ok {
		return 0, false
	}
	return 0.7*tw + 0.2*(*tg) + 0.1*tdb, true
}

// WetBulb is the Stull (2011) psychrometric wet-bulb temperature.
func WetBulb(tdb, rh float64) (float64, bool) {
	if rh < 5 || rh > 99 || tdb < -20 || tdb > 50 {
		return 0, false
	}
	tw := tdb*math.Atan(0.151977*math.Sqrt(rh+8.313659)) +
		math.Atan(tdb+rh) - math.Atan(rh-1.676331) +
		0.00391838*math.Pow(rh, 1.5)*math.Atan(0.023101*rh) - 4.686035
	return tw, true
}

// saturationVaporPressure returns hPa over water (Magnus, WMO coefficients).
func saturationVaporPressure(t float64) float64 {
	return 6.112 * math.Exp(17.62*t/(243.12+t))
}
