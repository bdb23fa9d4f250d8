package pipeline

import (
	"time"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

// maxSlotDistance is how far the nearest slot may be from the requested
// instant; slots are 3-hourly.
const maxSlotDistance = 90 * time.Minute

// SelectSlot picks the forecast slot nearest to hour:00 local time on the
// day dayOffset days after the first slot's local date.
func SelectSlot(slots []domain.ForecastSlot, tz *time.Location, dayOffset, hour int) (domain.ForecastSlot, error) {
	const op = "pipeline.select_slot"
	if len(slots) == 0 {
		return domain.ForecastSlot{}, domain.NewError(domain.KindInsufficientData, op, "no forecast slots")
	}
	if hour < 0 || hour > 23 || dayOffset < 0 {
		return domain.ForecastSlot{}, domain.NewError(domain.KindInvalidInput, op, "invalid day offset %d or hour %d", dayOffset, hour)
	}
	if tz == nil {
		tz = time.UTC
	}

	first := slots[0].Time.In(tz)
	target := time.Date(first.Year(), first.Month(), first.Day()+dayOffset, hour, 0, 0, 0, tz)

	best, bestDist := -1, time.Duration(0)
	for i, s := range slots {
		d := s.Time.Sub(target)
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if bestDist > maxSlotDistance {
		return domain.ForecastSlot{}, domain.NewError(domain.KindInsufficientData, op,
			"no slot within %s of %s", maxSlotDistance, target.Format(time.RFC3339))
	}
	return slots[best], nil
}
