package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/heat-risk-engine/internal/adapter/chart"
	"github.com/couchcryptid/heat-risk-engine/internal/adapter/forecastfile"
	"github.com/couchcryptid/heat-risk-engine/internal/config"
	"github.com/couchcryptid/heat-risk-engine/internal/domain"
	"github.com/couchcryptid/heat-risk-engine/internal/montecarlo"
	"github.com/couchcryptid/heat-risk-engine/internal/observability"
	"github.com/couchcryptid/heat-risk-engine/internal/physio"
	"github.com/couchcryptid/heat-risk-engine/internal/pipeline"
	"github.com/couchcryptid/heat-risk-engine/internal/risk"
	"github.com/couchcryptid/heat-risk-engine/internal/solar"
)

type assessOptions struct {
	forecast string
	out      string
	tz       string
	lat, lon float64

	day, hour int

	age, weight, height float64
	sex                 string
	met, clo            float64
	posture             string
	globe               float64
	aqi                 int

	duration, interval int
	windowHours        int
	stepMinutes        int

	monteCarlo bool
	mcParams   []string
	mcSamples  int
	plots      bool
}

func newAssessCmd() *cobra.Command {
	o := &assessOptions{}
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run one assessment",
		Long: `Select a forecast slot, compute the thermal environment and static risk
factors, run the physiological simulation and print the report as JSON.
With --mc the physiology and UTCI are re-run over perturbed personal
parameters.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg)
			return runAssess(cmd.Context(), cmd, o, cfg, logger, clockwork.NewRealClock())
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.forecast, "forecast", "", "forecast JSON file (OpenWeather 5 day / 3 hour layout)")
	f.StringVar(&o.out, "out", "-", "report output path, - for stdout")
	f.StringVar(&o.tz, "tz", "", "IANA time zone (default: the forecast file's UTC offset)")
	f.Float64Var(&o.lat, "lat", 0, "latitude override")
	f.Float64Var(&o.lon, "lon", 0, "longitude override")
	f.IntVar(&o.day, "day", 0, "forecast day offset from the first slot's local date")
	f.IntVar(&o.hour, "hour", 12, "local hour of the assessed slot")
	f.Float64Var(&o.age, "age", 35, "age in years")
	f.Float64Var(&o.weight, "weight", 70, "body mass in kg")
	f.Float64Var(&o.height, "height", 1.75, "height in m")
	f.StringVar(&o.sex, "sex", string(domain.SexMale), "male or female")
	f.Float64Var(&o.met, "met", 1.2, "metabolic rate in met")
	f.Float64Var(&o.clo, "clo", 0.5, "clothing insulation in clo")
	f.StringVar(&o.posture, "posture", string(domain.PostureStanding), "standing or seated")
	f.Float64Var(&o.globe, "globe", 0, "measured globe temperature in °C (enables WBGT)")
	f.IntVar(&o.aqi, "aqi", 0, "air quality index 1-5 (0: not available)")
	f.IntVar(&o.duration, "duration", 0, "simulation duration in minutes (default DURATION_MINUTES)")
	f.IntVar(&o.interval, "interval", 0, "output interval in minutes (default OUTPUT_INTERVAL)")
	f.IntVar(&o.windowHours, "window-hours", 24, "environmental risk window from the selected slot, 0 to skip")
	f.IntVar(&o.stepMinutes, "step-minutes", 30, "environmental risk step")
	f.BoolVar(&o.monteCarlo, "mc", false, "run Monte Carlo over personal parameters")
	f.StringArrayVar(&o.mcParams, "mc-param", nil, "perturbation spec name:mean:std:min:max (repeatable)")
	f.IntVar(&o.mcSamples, "mc-samples", 0, "Monte Carlo samples (default MC_SAMPLES)")
	f.BoolVar(&o.plots, "plots", false, "write PNG charts to PLOT_DIR")
	_ = cmd.MarkFlagRequired("forecast")

	return cmd
}

type report struct {
	pipeline.Report
	City       string          `json:"city,omitempty"`
	MonteCarlo *monteCarloPart `json:"monte_carlo,omitempty"`
	Plots      []string        `json:"plots,omitempty"`
}

type monteCarloPart struct {
	Seed       uint64                    `json:"seed"`
	Specs      []montecarlo.Spec         `json:"specs"`
	Requested  int                       `json:"requested"`
	Succeeded  int                       `json:"succeeded"`
	Failed     int                       `json:"failed"`
	UTCI       *montecarlo.Summary       `json:"utci,omitempty"`
	Physiology *pipeline.PhysiologyBands `json:"physiology"`
}

func runAssess(ctx context.Context, cmd *cobra.Command, o *assessOptions, cfg *config.Config, logger *slog.Logger, clock clockwork.Clock) error {
	metrics := observability.NewMetrics()
	defer func() {
		if cfg.MetricsTextfile == "" {
			return
		}
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("write metrics textfile", "error", err)
		}
	}()

	fc, err := forecastfile.ReadFile(o.forecast, logger)
	if err != nil {
		return err
	}
	req, err := o.request(cmd, cfg, fc)
	if err != nil {
		return err
	}

	runner := pipeline.New(solar.NewCalculator(), physio.NewSimulator(), logger, metrics, clock, cfg.DefaultAQI)
	rep, err := runner.Assess(ctx, req)
	if err != nil {
		return fmt.Errorf("assess: %w", err)
	}
	out := report{Report: rep, City: fc.City}

	if o.monteCarlo {
		mc, err := runMonteCarlo(ctx, runner, req, rep.Initial, o, cfg, logger, metrics)
		if err != nil {
			return fmt.Errorf("monte carlo: %w", err)
		}
		out.MonteCarlo = mc
	}

	if o.plots {
		if out.Plots, err = writePlots(cfg.PlotDir, out); err != nil {
			return err
		}
		logger.Info("plots written", "dir", cfg.PlotDir, "count", len(out.Plots))
	}

	return writeReport(cmd.OutOrStdout(), o.out, out)
}

func (o *assessOptions) request(cmd *cobra.Command, cfg *config.Config, fc forecastfile.Forecast) (pipeline.Request, error) {
	tz := fc.TZ
	if o.tz != "" {
		l, err := time.LoadLocation(o.tz)
		if err != nil {
			return pipeline.Request{}, domain.NewError(domain.KindInvalidInput, "heatrisk.tz", "%v", err)
		}
		tz = l
	}
	lat, lon := fc.Lat, fc.Lon
	if cmd.Flags().Changed("lat") {
		lat = o.lat
	}
	if cmd.Flags().Changed("lon") {
		lon = o.lon
	}
	loc, err := domain.NewLocation(lat, lon, tz)
	if err != nil {
		return pipeline.Request{}, err
	}
	human, err := domain.NewHuman(domain.Human{Age: o.age, Weight: o.weight, Height: o.height, Sex: domain.Sex(o.sex)})
	if err != nil {
		return pipeline.Request{}, err
	}
	slot, err := pipeline.SelectSlot(fc.Slots, tz, o.day, o.hour)
	if err != nil {
		return pipeline.Request{}, err
	}

	req := pipeline.Request{
		Location: loc,
		Slots:    fc.Slots,
		Slot:     slot,
		Params: pipeline.Params{
			Human:   human,
			MET:     o.met,
			CLO:     o.clo,
			Posture: domain.Posture(o.posture),
		},
		AQI:             o.aqi,
		DurationMinutes: cfg.DurationMinutes,
		IntervalMinutes: cfg.OutputInterval,
		StepMinutes:     o.stepMinutes,
	}
	if cmd.Flags().Changed("globe") {
		tg := o.globe
		req.GlobeTemp = &tg
	}
	if o.duration > 0 {
		req.DurationMinutes = o.duration
	}
	if o.interval > 0 {
		req.IntervalMinutes = o.interval
	}
	if o.windowHours > 0 {
		req.WindowStart = slot.Time
		req.WindowEnd = slot.Time.Add(time.Duration(o.windowHours) * time.Hour)
	}
	return req, nil
}

func runMonteCarlo(ctx context.Context, runner *pipeline.Runner, req pipeline.Request, initial pipeline.InitialState,
	o *assessOptions, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*monteCarloPart, error) {
	specs, err := o.specs()
	if err != nil {
		return nil, err
	}
	samples := cfg.MCSamples
	if o.mcSamples > 0 {
		samples = o.mcSamples
	}

	part := &monteCarloPart{Seed: cfg.MCSeed, Specs: specs}
	bands, err := runner.MonteCarloPhysiology(ctx, montecarlo.NewEngine(cfg.MCSeed, logger, metrics), req, initial, specs,
		montecarlo.Options[domain.PhysioTimeSeries]{Samples: samples, Workers: cfg.MCWorkers})
	if err != nil {
		return nil, err
	}
	part.Physiology = &bands
	part.Requested = bands.Ensemble.Requested
	part.Succeeded = bands.Ensemble.Succeeded()
	part.Failed = bands.Ensemble.Failed

	if initial.UTCI == nil {
		logger.Info("UTCI unavailable at the selected slot, skipping UTCI ensemble")
		return part, nil
	}
	_, sum, err := runner.MonteCarloUTCI(ctx, montecarlo.NewEngine(cfg.MCSeed, logger, metrics), req, initial, specs,
		montecarlo.Options[float64]{Samples: samples, Workers: cfg.MCWorkers})
	if err != nil {
		return nil, err
	}
	part.UTCI = &sum
	return part, nil
}

// specs parses --mc-param, defaulting to CLO and MET spread around the
// requested values.
func (o *assessOptions) specs() ([]montecarlo.Spec, error) {
	if len(o.mcParams) == 0 {
		return []montecarlo.Spec{
			{Name: pipeline.ParamCLO, Mean: o.clo, Std: 0.1, Min: 0.1, Max: 1.5},
			{Name: pipeline.ParamMET, Mean: o.met, Std: 0.1 * o.met, Min: 0.8, Max: 6},
		}, nil
	}
	specs := make([]montecarlo.Spec, 0, len(o.mcParams))
	for _, raw := range o.mcParams {
		s, err := montecarlo.ParseSpec(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func writePlots(dir string, rep report) ([]string, error) {
	sink, err := chart.NewSink(dir)
	if err != nil {
		return nil, err
	}
	axis := rep.TimeAxis()
	var bands []montecarlo.Summary
	if rep.MonteCarlo != nil {
		bands = rep.MonteCarlo.Physiology.RectalTemp
	}

	var paths []string
	add := func(path string, err error) error {
		if err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	}
	if err := add(sink.RiskOverTime("risk_over_time", "Overall risk during activity", axis, rep.Risk)); err != nil {
		return nil, err
	}
	if err := add(sink.Physiology("rectal_temperature", "Rectal temperature", axis, rep.Physiology, bands)); err != nil {
		return nil, err
	}
	if err := add(sink.WaterLoss("water_loss", "Cumulative water loss", axis, rep.Physiology)); err != nil {
		return nil, err
	}

	if env := rep.Environment; env != nil && len(env.Steps) >= 2 {
		times := make([]time.Time, len(env.Steps))
		levels := make([]risk.Level, len(env.Steps))
		for i, st := range env.Steps {
			times[i], levels[i] = st.Step.Time, st.Overall
		}
		if err := add(sink.RiskOverTime("environment_risk", "Environmental risk", times, levels)); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func writeReport(stdout io.Writer, path string, rep report) error {
	w := stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
