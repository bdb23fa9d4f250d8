// Command genforecast writes a synthetic 5 day / 3 hour forecast fixture in
// the OpenWeather layout read by heatrisk. Output is deterministic for a given
// set of flags.
//
// Usage:
//
//	go run ./cmd/genforecast -out data/mock/forecast.json -peak 34 -lat 40.42 -lon -3.70 -tz-offset 2
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/heat-risk-engine/internal/adapter/forecastfile"
	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

const (
	slotCount = 40
	slotStep  = 3 * time.Hour
)

var baseDate = time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)

type profile struct {
	peak      float64 // daily max air temperature, °C
	swing     float64 // max minus min
	humidity  float64 // mean relative humidity, %
	wind      float64 // mean wind speed, m/s
	peakHour  float64 // local hour of the temperature maximum
	tzOffsetH int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the forecast fixture")
	city := flag.String("city", "Madrid", "city name")
	lat := flag.Float64("lat", 40.4168, "latitude")
	lon := flag.Float64("lon", -3.7038, "longitude")
	p := profile{peakHour: 15}
	flag.Float64Var(&p.peak, "peak", 34, "daily maximum temperature (°C)")
	flag.Float64Var(&p.swing, "swing", 12, "daily temperature range (°C)")
	flag.Float64Var(&p.humidity, "humidity", 40, "mean relative humidity (%)")
	flag.Float64Var(&p.wind, "wind", 2.5, "mean wind speed (m/s)")
	flag.IntVar(&p.tzOffsetH, "tz-offset", 2, "UTC offset in hours")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// A fixed clock keeps the fixture reproducible.
	clock := clockwork.NewFakeClockAt(baseDate)
	fc := generate(clock, *city, *lat, *lon, p)

	var buf bytes.Buffer
	if err := forecastfile.Write(&buf, fc); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o600); err != nil {
		return err
	}
	log.Printf("wrote %d slots from %s: %s", len(fc.Slots), fc.Slots[0].Time.Format(time.RFC3339), *out)
	return nil
}

func generate(clock clockwork.Clock, city string, lat, lon float64, p profile) forecastfile.Forecast {
	tz := time.FixedZone(fmt.Sprintf("UTC%+03d:00", p.tzOffsetH), p.tzOffsetH*3600)
	start := clock.Now().UTC().Truncate(slotStep)

	fc := forecastfile.Forecast{City: city, Lat: lat, Lon: lon, TZ: tz}
	for i := 0; i < slotCount; i++ {
		t := start.Add(time.Duration(i) * slotStep)
		local := t.In(tz)
		hour := float64(local.Hour()) + float64(local.Minute())/60
		phase := math.Cos(2 * math.Pi * (hour - p.peakHour) / 24) // 1 at the peak hour
		day := float64(i) * slotStep.Hours() / 24

		pressure := 1013 - 2*math.Sin(2*math.Pi*day/5)
		pop := clamp(0.05+0.1*math.Max(0, -phase), 0, 1)
		slot := domain.ForecastSlot{
			Time:             t,
			AirTemp:          round1(p.peak - p.swing/2 + p.swing/2*phase),
			RelativeHumidity: round1(clamp(p.humidity-15*phase, 5, 100)),
			WindSpeed:        round1(math.Max(0, p.wind+0.8*phase)),
			CloudCover:       round1(clamp(30+25*math.Sin(2*math.Pi*day/3), 0, 100)),
			PressureHPa:      &pressure,
			PrecipProb:       &pop,
			Description:      describe(phase),
		}
		fc.Slots = append(fc.Slots, slot)
	}
	return fc
}

func describe(phase float64) string {
	switch {
	case phase > 0.5:
		return "clear sky"
	case phase > -0.5:
		return "few clouds"
	default:
		return "scattered clouds"
	}
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
