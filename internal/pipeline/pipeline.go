// Package pipeline orchestrates one assessment: initial state at the selected
// forecast slot, the environmental risk series, the physiological run and the
// overall risk over time. Monte Carlo helpers re-run the same stages over
// perturbed personal parameters.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
	"github.com/couchcryptid/heat-risk-engine/internal/observability"
	"github.com/couchcryptid/heat-risk-engine/internal/physio"
	"github.com/couchcryptid/heat-risk-engine/internal/risk"
	"github.com/couchcryptid/heat-risk-engine/internal/solar"
	"github.com/couchcryptid/heat-risk-engine/internal/thermal"
	"github.com/couchcryptid/heat-risk-engine/internal/weather"
)

// Stage labels for observability.Metrics.StageDuration.
const (
	StageEnvironment = "environment"
	StagePhysiology  = "physiology"
	StageMonteCarlo  = "monte_carlo"
)

// MRT sources reported in InitialState.
const (
	MRTGlobe   = "globe"
	MRTSolar   = "solar"
	MRTDryBulb = "dry_bulb"
)

// SolarModel computes irradiance for a location and local time.
type SolarModel interface {
	Irradiance(lat, lon float64, local time.Time, cloudCover float64, aqi int) (domain.SolarResult, error)
}

// Simulator runs the physiological model.
type Simulator interface {
	Simulate(ctx context.Context, in physio.Input) (domain.PhysioTimeSeries, error)
}

// Request describes one assessment.
type Request struct {
	Location domain.Location
	Slots    []domain.ForecastSlot
	// Slot is the selected forecast slot; its conditions drive the
	// physiological run.
	Slot   domain.ForecastSlot
	Params Params
	// GlobeTemp is an optional measured globe temperature (°C). WBGT is only
	// assessed when it is present.
	GlobeTemp *float64
	// AQI is the air quality index 1..5; 0 means it was not fetched.
	AQI int

	DurationMinutes int
	IntervalMinutes int

	// Environmental series window, interpolated every StepMinutes. A zero
	// window skips the series.
	WindowStart time.Time
	WindowEnd   time.Time
	StepMinutes int
}

// InitialState is the environment at the selected slot.
type InitialState struct {
	Time      time.Time           `json:"time"`
	Solar     domain.SolarResult  `json:"solar"`
	State     domain.ThermalState `json:"state"`
	MRTSource string              `json:"mrt_source"`
	UTCI      *float64            `json:"utci,omitempty"`
	WBGT      *float64            `json:"wbgt,omitempty"`
	Factors   risk.Factors        `json:"factors"`
}

// EnvironmentStep is one entry of the environmental risk series.
type EnvironmentStep struct {
	Step    domain.InterpolatedStep `json:"step"`
	Solar   domain.SolarResult      `json:"solar"`
	MRT     float64                 `json:"mrt"`
	UTCI    *float64                `json:"utci,omitempty"`
	Level   risk.Level              `json:"level"`
	Overall risk.Level              `json:"overall"`
}

// EnvironmentSeries is the environmental risk series over the window.
type EnvironmentSeries struct {
	Steps     []EnvironmentStep `json:"steps"`
	Gaps      []time.Time       `json:"gaps,omitempty"`
	Requested int               `json:"requested"`
}

// Report is the result of Runner.Assess.
type Report struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Initial     InitialState       `json:"initial"`
	Environment *EnvironmentSeries `json:"environment,omitempty"`
	// EnvironmentError explains why Environment is absent when a window was
	// requested but could not be built.
	EnvironmentError string                  `json:"environment_error,omitempty"`
	Physiology       domain.PhysioTimeSeries `json:"physiology"`
	Risk             []risk.Level            `json:"risk"`
	Summary          risk.Summary            `json:"summary"`
}

// Runner executes assessments. It holds no per-run state and is safe for
// concurrent use.
type Runner struct {
	solar      SolarModel
	simulator  Simulator
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	defaultAQI int
}

// New creates a Runner. defaultAQI feeds the turbidity model when a request
// carries no AQI.
func New(s SolarModel, sim Simulator, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, defaultAQI int) *Runner {
	if defaultAQI < 1 || defaultAQI > 5 {
		defaultAQI = solar.DefaultAQI
	}
	return &Runner{
		solar:      s,
		simulator:  sim,
		logger:     logger,
		metrics:    metrics,
		clock:      clock,
		defaultAQI: defaultAQI,
	}
}

// Assess runs the full deterministic assessment for req.
func (r *Runner) Assess(ctx context.Context, req Request) (Report, error) {
	id := uuid.NewString()
	logger := r.logger.With("run_id", id)
	report := Report{RunID: id, GeneratedAt: r.clock.Now().UTC()}

	start := r.clock.Now()
	initial, err := r.Initial(req)
	if err != nil {
		return Report{}, err
	}
	report.Initial = initial

	if !req.WindowStart.IsZero() {
		env, err := r.Environment(req)
		switch {
		case err != nil:
			// The environmental series is independent of the physiological run.
			logger.Warn("environmental risk series unavailable", "error", err)
			report.EnvironmentError = err.Error()
		default:
			if len(env.Gaps) > 0 {
				logger.Warn("forecast does not cover window",
					"requested", env.Requested,
					"produced", len(env.Steps),
					"first_gap", env.Gaps[0],
				)
			}
			report.Environment = &env
		}
	}
	r.observe(StageEnvironment, start)

	start = r.clock.Now()
	series, levels, err := r.Physiology(ctx, req, initial)
	r.observe(StagePhysiology, start)
	if err != nil {
		return Report{}, err
	}
	report.Physiology = series
	report.Risk = levels
	report.Summary = risk.Summarize(levels)
	r.metrics.PeakRiskLevel.Set(float64(report.Summary.Peak))

	axis := report.TimeAxis()
	attrs := []any{
		"slot", initial.Time,
		"mrt_source", initial.MRTSource,
		"factors_unassessed", unassessed(initial.Factors),
		"peak_risk", report.Summary.Peak.String(),
		"final_rectal", series.RectalTemp[len(series.RectalTemp)-1],
		"water_loss_ml", series.WaterLossML[len(series.WaterLossML)-1],
	}
	if at, ok := report.Summary.PeakTime(axis); ok {
		attrs = append(attrs, "peak_at", at)
	}
	logger.Info("assessment complete", attrs...)
	return report, nil
}

// TimeAxis maps the physiological minutes onto wall-clock instants from the
// selected slot.
func (rep Report) TimeAxis() []time.Time {
	out := make([]time.Time, len(rep.Physiology.TimeMinutes))
	for i, m := range rep.Physiology.TimeMinutes {
		out[i] = rep.Initial.Time.Add(time.Duration(m * float64(time.Minute)))
	}
	return out
}

// Initial computes the environment and static risk factors at req.Slot.
func (r *Runner) Initial(req Request) (InitialState, error) {
	slot := req.Slot
	local := slot.Time.In(req.Location.TZ)

	sr, err := r.solar.Irradiance(req.Location.Lat, req.Location.Lon, local, slot.CloudCover, r.turbidityAQI(req.AQI))
	if err != nil {
		return InitialState{}, err
	}

	in := r.solarInput(req.Params, slot.AirTemp, slot.WindSpeed, sr)
	tr, source := r.meanRadiant(in, req.GlobeTemp, sr.SunUp())
	state := domain.ThermalState{
		AirTemp:          slot.AirTemp,
		MeanRadiant:      tr,
		WindSpeed:        slot.WindSpeed,
		RelativeHumidity: slot.RelativeHumidity,
		MET:              req.Params.MET,
		CLO:              req.Params.CLO,
		Posture:          req.Params.Posture,
	}
	if err := state.Validate(); err != nil {
		return InitialState{}, err
	}

	out := InitialState{Time: local, Solar: sr, State: state, MRTSource: source}
	utci, utciOK := thermal.UTCI(utciInput(state))
	if utciOK {
		out.UTCI = &utci
	} else {
		r.metrics.UTCIUnavailable.Inc()
	}
	wbgt, wbgtOK := thermal.WBGT(slot.AirTemp, req.GlobeTemp, slot.RelativeHumidity, slot.WindSpeed)
	if wbgtOK {
		out.WBGT = &wbgt
	}

	out.Factors = risk.Factors{
		UTCI:   risk.FromUTCI(utci, utciOK),
		WBGT:   risk.FromWBGT(wbgt, wbgtOK),
		Rectal: risk.NotAssessed,
		AQI:    risk.FromAQI(req.AQI),
	}
	return out, nil
}

// Environment builds the per-step environmental risk series over the request
// window. A step whose UTCI is unavailable is kept with a NotAssessed level.
func (r *Runner) Environment(req Request) (EnvironmentSeries, error) {
	series, err := weather.Interpolate(req.Slots, req.WindowStart.In(req.Location.TZ), req.WindowEnd,
		time.Duration(req.StepMinutes)*time.Minute)
	if err != nil {
		return EnvironmentSeries{}, err
	}
	r.metrics.StepsInterpolated.Add(float64(len(series.Steps)))
	r.metrics.StepGaps.Add(float64(len(series.Gaps)))

	aqi := risk.FromAQI(req.AQI)
	out := EnvironmentSeries{
		Steps:     make([]EnvironmentStep, 0, len(series.Steps)),
		Gaps:      series.Gaps,
		Requested: series.Requested,
	}
	for _, st := range series.Steps {
		sr, err := r.solar.Irradiance(req.Location.Lat, req.Location.Lon, st.Time, st.CloudCover, r.turbidityAQI(req.AQI))
		if err != nil {
			return EnvironmentSeries{}, err
		}
		tr, _ := r.meanRadiant(r.solarInput(req.Params, st.AirTemp, st.WindSpeed, sr), nil, sr.SunUp())

		es := EnvironmentStep{Step: st, Solar: sr, MRT: tr}
		v, ok := thermal.UTCI(thermal.UTCIInput{
			AirTemp:          st.AirTemp,
			MeanRadiant:      tr,
			WindSpeed:        st.WindSpeed,
			RelativeHumidity: st.RelativeHumidity,
			MET:              req.Params.MET,
			CLO:              req.Params.CLO,
		})
		if ok {
			es.UTCI = &v
		} else {
			r.metrics.UTCIUnavailable.Inc()
		}
		es.Level = risk.FromUTCI(v, ok)
		es.Overall = risk.Overall(es.Level, aqi)
		out.Steps = append(out.Steps, es)
	}
	return out, nil
}

// Physiology runs the simulator at the initial state with req.Params and
// derives the overall risk per timestep.
func (r *Runner) Physiology(ctx context.Context, req Request, initial InitialState) (domain.PhysioTimeSeries, []risk.Level, error) {
	series, err := r.simulate(ctx, req, req.Params, initial.State)
	if err != nil {
		return domain.PhysioTimeSeries{}, nil, err
	}
	return series, risk.OverTime(initial.Factors, series.RectalTemp), nil
}

func (r *Runner) simulate(ctx context.Context, req Request, p Params, base domain.ThermalState) (domain.PhysioTimeSeries, error) {
	state := base
	state.MET = p.MET
	state.CLO = p.CLO
	state.Posture = p.Posture

	series, err := r.simulator.Simulate(ctx, physio.Input{
		State:           state,
		Human:           p.Human,
		DurationMinutes: req.DurationMinutes,
		IntervalMinutes: req.IntervalMinutes,
	})
	switch kind, _ := domain.KindOf(err); {
	case err == nil:
		r.metrics.PhysioRuns.WithLabelValues("ok").Inc()
	case kind == domain.KindPhysiologyDivergence:
		r.metrics.PhysioRuns.WithLabelValues("diverged").Inc()
	case kind == domain.KindInvalidInput:
		r.metrics.PhysioRuns.WithLabelValues("invalid").Inc()
	}
	return series, err
}

func (r *Runner) solarInput(p Params, ta, v float64, sr domain.SolarResult) thermal.SolarInput {
	return thermal.SolarInput{
		AirTemp:   ta,
		WindSpeed: v,
		CLO:       p.CLO,
		Posture:   p.Posture,
		GHI:       sr.GHI,
		DNI:       sr.DNI,
		DHI:       sr.DHI,
		Zenith:    sr.Zenith,
		Azimuth:   sr.Azimuth,
	}
}

// meanRadiant prefers a measured globe temperature, then SolarCal while the
// sun is up, then the dry-bulb fallback. SolarCal is not evaluated at night.
func (r *Runner) meanRadiant(in thermal.SolarInput, tg *float64, sunUp bool) (float64, string) {
	if tg != nil {
		if tr, ok := thermal.MRTFromGlobe(*tg, in.AirTemp, in.WindSpeed); ok {
			return tr, MRTGlobe
		}
	}
	if !sunUp {
		return in.AirTemp, MRTDryBulb
	}
	if tr, fromSolar := thermal.MeanRadiant(in); fromSolar {
		return tr, MRTSolar
	}
	return in.AirTemp, MRTDryBulb
}

func (r *Runner) turbidityAQI(aqi int) int {
	if aqi >= 1 && aqi <= 5 {
		return aqi
	}
	return r.defaultAQI
}

func (r *Runner) observe(stage string, start time.Time) {
	r.metrics.StageDuration.WithLabelValues(stage).Observe(r.clock.Since(start).Seconds())
}

func utciInput(s domain.ThermalState) thermal.UTCIInput {
	return thermal.UTCIInput{
		AirTemp:          s.AirTemp,
		MeanRadiant:      s.MeanRadiant,
		WindSpeed:        s.WindSpeed,
		RelativeHumidity: s.RelativeHumidity,
		MET:              s.MET,
		CLO:              s.CLO,
	}
}

// unassessed names the environmental factors that could not be assessed.
func unassessed(f risk.Factors) []string {
	var out []string
	for _, c := range []struct {
		name  string
		level risk.Level
	}{{"utci", f.UTCI}, {"wbgt", f.WBGT}, {"aqi", f.AQI}} {
		if !c.level.Assessed() {
			out = append(out, c.name)
		}
	}
	return out
}
