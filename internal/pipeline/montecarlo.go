package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
	"github.com/couchcryptid/heat-risk-engine/internal/montecarlo"
	"github.com/couchcryptid/heat-risk-engine/internal/thermal"
)

// PhysiologyBands is the per-timestep envelope of a physiological ensemble.
type PhysiologyBands struct {
	Ensemble   montecarlo.Ensemble[Params, domain.PhysioTimeSeries] `json:"-"`
	RectalTemp []montecarlo.Summary                                 `json:"rectal_temp"`
	WaterLoss  []montecarlo.Summary                                 `json:"water_loss_ml"`
}

// MonteCarloPhysiology re-runs the physiological simulation at the initial
// state over perturbed personal parameters. Members whose series length does
// not match the configured duration and interval are rejected.
func (r *Runner) MonteCarloPhysiology(ctx context.Context, engine *montecarlo.Engine, req Request, initial InitialState,
	specs []montecarlo.Spec, opts montecarlo.Options[domain.PhysioTimeSeries]) (PhysiologyBands, error) {
	start := r.clock.Now()
	defer r.observe(StageMonteCarlo, start)

	if req.IntervalMinutes <= 0 || req.DurationMinutes <= 0 {
		return PhysiologyBands{}, domain.NewError(domain.KindInvalidInput, "pipeline.monte_carlo",
			"duration %d and interval %d must be positive", req.DurationMinutes, req.IntervalMinutes)
	}
	if req.DurationMinutes%req.IntervalMinutes != 0 {
		return PhysiologyBands{}, domain.NewError(domain.KindInvalidInput, "pipeline.monte_carlo",
			"interval %d does not divide duration %d", req.IntervalMinutes, req.DurationMinutes)
	}
	want := req.DurationMinutes/req.IntervalMinutes + 1
	opts.Validate = lengthCheck(want, opts.Validate)

	target := func(ctx context.Context, p Params) (domain.PhysioTimeSeries, error) {
		return r.simulate(ctx, req, p, initial.State)
	}
	ens, err := montecarlo.Run(ctx, engine, req.Params, specs, target, opts)
	if err != nil {
		return PhysiologyBands{}, err
	}

	rectal := make([][]float64, 0, ens.Succeeded())
	water := make([][]float64, 0, ens.Succeeded())
	for _, s := range ens.Outputs() {
		rectal = append(rectal, s.RectalTemp)
		water = append(water, s.WaterLossML)
	}
	out := PhysiologyBands{Ensemble: ens}
	if out.RectalTemp, err = montecarlo.Bands(rectal); err != nil {
		return PhysiologyBands{}, err
	}
	if out.WaterLoss, err = montecarlo.Bands(water); err != nil {
		return PhysiologyBands{}, err
	}
	return out, nil
}

// MonteCarloUTCI evaluates UTCI at the initial state over perturbed MET and
// CLO. Samples outside the UTCI validity range fail with
// domain.ErrModelOutOfRange and are dropped.
func (r *Runner) MonteCarloUTCI(ctx context.Context, engine *montecarlo.Engine, req Request, initial InitialState,
	specs []montecarlo.Spec, opts montecarlo.Options[float64]) (montecarlo.Ensemble[Params, float64], montecarlo.Summary, error) {
	start := r.clock.Now()
	defer r.observe(StageMonteCarlo, start)

	target := func(_ context.Context, p Params) (float64, error) {
		in := utciInput(initial.State)
		in.MET = p.MET
		in.CLO = p.CLO
		v, ok := thermal.UTCI(in)
		if !ok {
			return 0, domain.NewError(domain.KindModelOutOfRange, "pipeline.utci", "inputs outside validity range")
		}
		return v, nil
	}
	ens, err := montecarlo.Run(ctx, engine, req.Params, specs, target, opts)
	if err != nil {
		return montecarlo.Ensemble[Params, float64]{}, montecarlo.Summary{}, err
	}
	sum, err := montecarlo.Summarize(ens.Outputs())
	if err != nil {
		return montecarlo.Ensemble[Params, float64]{}, montecarlo.Summary{}, err
	}
	return ens, sum, nil
}

func lengthCheck(want int, next func(domain.PhysioTimeSeries) error) func(domain.PhysioTimeSeries) error {
	return func(s domain.PhysioTimeSeries) error {
		if s.Len() != want {
			return fmt.Errorf("series length %d, want %d", s.Len(), want)
		}
		if err := s.Check(); err != nil {
			return err
		}
		if next != nil {
			return next(s)
		}
		return nil
	}
}
