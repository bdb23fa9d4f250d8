package risk

import "time"

// Factors are per-factor levels at one instant.
type Factors struct {
	UTCI   Level `json:"utci"`
	WBGT   Level `json:"wbgt"`
	Rectal Level `json:"rectal"`
	AQI    Level `json:"aqi"`
}

// Unassessed returns Factors with every factor NotAssessed.
func Unassessed() Factors {
	return Factors{UTCI: NotAssessed, WBGT: NotAssessed, Rectal: NotAssessed, AQI: NotAssessed}
}

// Overall folds the factors into one level.
func (f Factors) Overall() Level { return Overall(f.UTCI, f.WBGT, f.Rectal, f.AQI) }

// OverTime builds the overall-risk series for a physiological run.
// Environmental factors in static are evaluated once at slot selection and
// held constant. Only the rectal factor changes per timestep; static.Rectal
// is ignored.
func OverTime(static Factors, rectal []float64) []Level {
	out := make([]Level, len(rectal))
	for i, tcr := range rectal {
		f := static
		f.Rectal = FromRectal(tcr)
		out[i] = f.Overall()
	}
	return out
}

// Summary describes a level series.
type Summary struct {
	Counts    map[Level]int `json:"counts"`
	Peak      Level         `json:"peak"`
	PeakIndex int           `json:"peak_index"` // first index at Peak, -1 if nothing assessed
}

// Summarize counts levels and finds the first occurrence of the peak.
func Summarize(levels []Level) Summary {
	s := Summary{Counts: make(map[Level]int), Peak: NotAssessed, PeakIndex: -1}
	for i, l := range levels {
		s.Counts[l]++
		if l.Assessed() && l > s.Peak {
			s.Peak = l
			s.PeakIndex = i
		}
	}
	return s
}

// PeakTime returns the time at which the peak level was first reached, given
// the series' time axis.
func (s Summary) PeakTime(axis []time.Time) (time.Time, bool) {
	if s.PeakIndex < 0 || s.PeakIndex >= len(axis) {
		return time.Time{}, false
	}
	return axis[s.PeakIndex], true
}
