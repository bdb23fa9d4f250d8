// Package chart renders assessment series to PNG files with go-chart.
package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
	"github.com/couchcryptid/heat-risk-engine/internal/montecarlo"
	"github.com/couchcryptid/heat-risk-engine/internal/risk"
)

const (
	width  = 900
	height = 400
)

var (
	colorRisk   = drawing.Color{R: 204, G: 51, B: 51, A: 255}
	colorRectal = drawing.Color{R: 51, G: 102, B: 204, A: 255}
	colorWater  = drawing.Color{R: 0, G: 153, B: 136, A: 255}
	colorBand   = drawing.Color{R: 51, G: 102, B: 204, A: 110}
)

// Sink writes charts into a directory.
type Sink struct {
	dir string
}

// NewSink creates dir if needed.
func NewSink(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}
	return &Sink{dir: dir}, nil
}

// RiskOverTime plots an overall-risk series. NotAssessed instants are drawn
// on their own row below None/Low.
func (s *Sink) RiskOverTime(name, title string, times []time.Time, levels []risk.Level) (string, error) {
	if err := checkAxis(times, len(levels)); err != nil {
		return "", err
	}
	ys := make([]float64, len(levels))
	for i, l := range levels {
		ys[i] = float64(l)
	}

	ticks := []chart.Tick{{Value: float64(risk.NotAssessed), Label: risk.NotAssessed.String()}}
	for _, ll := range risk.Labels {
		ticks = append(ticks, chart.Tick{Value: float64(ll.Level), Label: ll.Label})
	}

	graph := s.base(title, times)
	graph.YAxis = chart.YAxis{
		Name:  "Overall risk",
		Range: &chart.ContinuousRange{Min: float64(risk.NotAssessed), Max: float64(risk.Extreme)},
		Ticks: ticks,
	}
	graph.Series = []chart.Series{chart.TimeSeries{
		Name:    "Overall risk",
		Style:   chart.Style{StrokeColor: colorRisk, StrokeWidth: 2, DotColor: colorRisk, DotWidth: 3},
		XValues: times,
		YValues: ys,
	}}
	return s.render(name, &graph)
}

// Physiology plots rectal temperature against the selected slot's time axis,
// with the Monte Carlo P5-P95 envelope when bands is non-empty.
func (s *Sink) Physiology(name, title string, times []time.Time, series domain.PhysioTimeSeries, bands []montecarlo.Summary) (string, error) {
	if err := checkAxis(times, series.Len()); err != nil {
		return "", err
	}
	if err := series.Check(); err != nil {
		return "", domain.NewError(domain.KindInvalidInput, "chart.physiology", "%v", err)
	}
	if len(bands) > 0 && len(bands) != len(times) {
		return "", domain.NewError(domain.KindInvalidInput, "chart.physiology", "%d bands for %d instants", len(bands), len(times))
	}

	lo, hi := bounds(series.RectalTemp)
	graph := s.base(title, times)
	graph.Series = []chart.Series{chart.TimeSeries{
		Name:    "Rectal temperature (°C)",
		Style:   chart.Style{StrokeColor: colorRectal, StrokeWidth: 2},
		XValues: times,
		YValues: series.RectalTemp,
	}}
	if len(bands) > 0 {
		p5 := make([]float64, len(bands))
		p95 := make([]float64, len(bands))
		for i, b := range bands {
			p5[i], p95[i] = b.P5, b.P95
		}
		l, _ := bounds(p5)
		_, h := bounds(p95)
		lo, hi = math.Min(lo, l), math.Max(hi, h)
		dashed := chart.Style{StrokeColor: colorBand, StrokeWidth: 1, StrokeDashArray: []float64{5, 5}}
		graph.Series = append(graph.Series,
			chart.TimeSeries{Name: "P5", Style: dashed, XValues: times, YValues: p5},
			chart.TimeSeries{Name: "P95", Style: dashed, XValues: times, YValues: p95},
		)
	}
	graph.YAxis = chart.YAxis{
		Name:  "Rectal temperature (°C)",
		Range: &chart.ContinuousRange{Min: lo - 0.1, Max: hi + 0.1},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return s.render(name, &graph)
}

// WaterLoss plots cumulative water loss.
func (s *Sink) WaterLoss(name, title string, times []time.Time, series domain.PhysioTimeSeries) (string, error) {
	if err := checkAxis(times, len(series.WaterLossML)); err != nil {
		return "", err
	}
	_, hi := bounds(series.WaterLossML)
	graph := s.base(title, times)
	graph.YAxis = chart.YAxis{
		Name:  "Water loss (mL)",
		Range: &chart.ContinuousRange{Min: 0, Max: math.Max(hi*1.1, 1)},
	}
	graph.Series = []chart.Series{chart.TimeSeries{
		Name:    "Cumulative water loss",
		Style:   chart.Style{StrokeColor: colorWater, StrokeWidth: 2},
		XValues: times,
		YValues: series.WaterLossML,
	}}
	return s.render(name, &graph)
}

func (s *Sink) base(title string, times []time.Time) chart.Chart {
	return chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 14, FontColor: drawing.ColorBlack},
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 110, Right: 20, Bottom: 40}},
		Width:      width,
		Height:     height,
		XAxis: chart.XAxis{
			Name: "Local time",
			ValueFormatter: func(v interface{}) string {
				loc := times[0].Location()
				switch t := v.(type) {
				case time.Time:
					return t.In(loc).Format("Jan 2 15:04")
				case float64:
					return chart.TimeFromFloat64(t).In(loc).Format("Jan 2 15:04")
				}
				return ""
			},
		},
	}
}

func (s *Sink) render(name string, graph *chart.Chart) (string, error) {
	path := filepath.Join(s.dir, name+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return path, nil
}

func checkAxis(times []time.Time, n int) error {
	if len(times) < 2 {
		return domain.NewError(domain.KindInsufficientData, "chart.render", "need at least 2 points, have %d", len(times))
	}
	if len(times) != n {
		return domain.NewError(domain.KindInvalidInput, "chart.render", "%d instants for %d values", len(times), n)
	}
	return nil
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return lo, hi
}
