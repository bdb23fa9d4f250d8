// Package forecastfile reads and writes 5 day / 3 hour forecasts in the
// OpenWeather JSON layout (units=metric).
package forecastfile

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

// Forecast is a decoded forecast file.
type Forecast struct {
	City  string
	Lat   float64
	Lon   float64
	TZ    *time.Location
	Slots []domain.ForecastSlot
	// Skipped counts entries rejected by Read.
	Skipped int
}

// Read decodes a forecast. Entries that fail slot validation are logged and
// skipped; the remaining slots are returned in time order.
func Read(r io.Reader, logger *slog.Logger) (Forecast, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Forecast{}, fmt.Errorf("decode forecast: %w", err)
	}

	fc := Forecast{
		City: doc.City.Name,
		Lat:  doc.City.Coord.Lat,
		Lon:  doc.City.Coord.Lon,
		TZ:   time.FixedZone(zoneName(doc.City.Timezone), doc.City.Timezone),
	}
	for i, e := range doc.List {
		slot, err := domain.NewForecastSlot(e.slot())
		if err != nil {
			logger.Warn("skipping forecast entry", "index", i, "dt", e.Dt, "error", err)
			fc.Skipped++
			continue
		}
		fc.Slots = append(fc.Slots, slot)
	}
	slices.SortFunc(fc.Slots, func(a, b domain.ForecastSlot) int { return a.Time.Compare(b.Time) })
	fc.Slots = slices.CompactFunc(fc.Slots, func(a, b domain.ForecastSlot) bool { return a.Time.Equal(b.Time) })

	if len(fc.Slots) == 0 {
		return Forecast{}, domain.NewError(domain.KindInsufficientData, "forecastfile.read", "no valid forecast entries")
	}
	return fc, nil
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string, logger *slog.Logger) (Forecast, error) {
	f, err := os.Open(path)
	if err != nil {
		return Forecast{}, fmt.Errorf("open forecast: %w", err)
	}
	defer f.Close()
	return Read(f, logger)
}

// Write encodes fc in the same layout Read accepts.
func Write(w io.Writer, fc Forecast) error {
	ref := time.Unix(0, 0)
	if len(fc.Slots) > 0 {
		ref = fc.Slots[0].Time
	}
	_, offset := ref.In(tzOrUTC(fc.TZ)).Zone()
	doc := document{
		City: city{Name: fc.City, Coord: coord{Lat: fc.Lat, Lon: fc.Lon}, Timezone: offset},
		List: make([]entry, 0, len(fc.Slots)),
	}
	for _, s := range fc.Slots {
		e := entry{Dt: s.Time.Unix(), Pop: s.PrecipProb}
		e.Main.Temp = s.AirTemp
		e.Main.Humidity = s.RelativeHumidity
		e.Main.Pressure = s.PressureHPa
		e.Wind.Speed = s.WindSpeed
		e.Clouds.All = s.CloudCover
		if s.Description != "" {
			e.Weather = []weather{{Description: s.Description}}
		}
		doc.List = append(doc.List, e)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	return nil
}

func zoneName(offset int) string {
	if offset == 0 {
		return "UTC"
	}
	return fmt.Sprintf("UTC%+03d:%02d", offset/3600, abs(offset%3600)/60)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func tzOrUTC(tz *time.Location) *time.Location {
	if tz == nil {
		return time.UTC
	}
	return tz
}

// OpenWeather forecast document.

type document struct {
	List []entry `json:"list"`
	City city    `json:"city"`
}

type entry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64  `json:"temp"`
		Humidity float64  `json:"humidity"`
		Pressure *float64 `json:"pressure,omitempty"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Pop     *float64  `json:"pop,omitempty"`
	Weather []weather `json:"weather,omitempty"`
}

type weather struct {
	Description string `json:"description"`
}

type city struct {
	Name     string `json:"name"`
	Coord    coord  `json:"coord"`
	Timezone int    `json:"timezone"` // seconds east of UTC
}

type coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (e entry) slot() domain.ForecastSlot {
	s := domain.ForecastSlot{
		Time:             time.Unix(e.Dt, 0).UTC(),
		AirTemp:          e.Main.Temp,
		RelativeHumidity: e.Main.Humidity,
		WindSpeed:        e.Wind.Speed,
		CloudCover:       e.Clouds.All,
		PressureHPa:      e.Main.Pressure,
		PrecipProb:       e.Pop,
	}
	if e.Dt == 0 {
		s.Time = time.Time{}
	}
	if len(e.Weather) > 0 {
		s.Description = e.Weather[0].Description
	}
	return s
}
