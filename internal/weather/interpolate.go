// Package weather turns a coarse forecast series into a fine, evenly spaced
// time series by linear interpolation between bracketing slots.
package weather

import (
	"sort"
	"time"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

const op = "weather.interpolate"

// Series is the result of an interpolation request. Requested is the number of
// output instants inside [start, end); len(Steps) is what was produced.
type Series struct {
	Steps     []domain.InterpolatedStep
	Gaps      []time.Time
	Requested int
}

// Interpolate samples slots every step across [start, end). Instants before
// the first slot are recorded as gaps. Interpolation stops at the first
// instant at or after the last slot; that instant and the rest of the window
// are recorded as gaps. Fails with domain.ErrInsufficientData when no step
// can be produced.
func Interpolate(slots []domain.ForecastSlot, start, end time.Time, step time.Duration) (Series, error) {
	if step <= 0 {
		return Series{}, domain.NewError(domain.KindInvalidInput, op, "step must be positive, got %s", step)
	}
	if !end.After(start) {
		return Series{}, domain.NewError(domain.KindInvalidInput, op, "end %s is not after start %s", end, start)
	}
	if len(slots) < 2 {
		return Series{}, domain.NewError(domain.KindInsufficientData, op, "need at least 2 forecast slots, have %d", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i].Time.After(slots[i-1].Time) {
			return Series{}, domain.NewError(domain.KindInvalidInput, op, "slots not strictly ordered at index %d", i)
		}
	}

	first, last := slots[0].Time, slots[len(slots)-1].Time
	if !end.After(first) || !start.Before(last) {
		return Series{}, domain.NewError(domain.KindInsufficientData, op,
			"window [%s, %s) does not overlap forecast [%s, %s)", start, end, first, last)
	}

	loc := start.Location()
	var out Series
	for t := start; t.Before(end); t = t.Add(step) {
		out.Requested++
		if t.Before(first) || !t.Before(last) {
			out.Gaps = append(out.Gaps, t)
			continue
		}
		out.Steps = append(out.Steps, at(slots, t, loc))
	}

	if len(out.Steps) == 0 {
		return out, domain.NewError(domain.KindInsufficientData, op, "no step inside forecast coverage")
	}
	return out, nil
}

// at interpolates the slot pair bracketing t. Callers guarantee first <= t < last.
func at(slots []domain.ForecastSlot, t time.Time, loc *time.Location) domain.InterpolatedStep {
	// Index of the first slot strictly after t.
	j := sort.Search(len(slots), func(i int) bool { return slots[i].Time.After(t) })
	a, b := slots[j-1], slots[j]

	frac := float64(t.Sub(a.Time)) / float64(b.Time.Sub(a.Time))
	return domain.InterpolatedStep{
		Time:             t.In(loc),
		AirTemp:          lerp(a.AirTemp, b.AirTemp, frac),
		RelativeHumidity: lerp(a.RelativeHumidity, b.RelativeHumidity, frac),
		WindSpeed:        lerp(a.WindSpeed, b.WindSpeed, frac),
		CloudCover:       lerp(a.CloudCover, b.CloudCover, frac),
	}
}

func lerp(a, b, frac float64) float64 {
	if frac == 0 {
		return a
	}
	return a + (b-a)*frac
}
