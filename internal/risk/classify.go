package risk

import "math"

// Classification thresholds. Each level starts at its bound (inclusive);
// values below the first bound are NoneLow.
//
//	UTCI (°C):   26 moderate | 32 high | 38 very high | 46 extreme  (heat-stress categories)
//	WBGT (°C):   21 moderate | 25 high | 28 very high | 31 extreme
//	Rectal (°C): 38 moderate | 38.5 high | 39 very high | 40 extreme
var (
	utciBounds   = [4]float64{26, 32, 38, 46}
	wbgtBounds   = [4]float64{21, 25, 28, 31}
	rectalBounds = [4]float64{38, 38.5, 39, 40}
)

// FromUTCI classifies a UTCI value. ok=false (unavailable) yields NotAssessed.
func FromUTCI(v float64, ok bool) Level { return classify(v, ok, utciBounds) }

// FromWBGT classifies a WBGT value.
func FromWBGT(v float64, ok bool) Level { return classify(v, ok, wbgtBounds) }

// FromRectal classifies a rectal temperature.
func FromRectal(v float64) Level { return classify(v, true, rectalBounds) }

// FromAQI maps the 1–5 air-quality scale directly. Any other value,
// including 0 for "not fetched", is NotAssessed.
func FromAQI(aqi int) Level {
	if aqi < 1 || aqi > 5 {
		return NotAssessed
	}
	return Level(aqi - 1)
}

func classify(v float64, ok bool, bounds [4]float64) Level {
	if !ok || math.IsNaN(v) {
		return NotAssessed
	}
	level := NoneLow
	for i, b := range bounds {
		if v >= b {
			level = Level(i + 1)
		}
	}
	return level
}
