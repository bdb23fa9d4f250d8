// Package physio runs a fixed-step human thermoregulation simulation and
// samples core (rectal) temperature and cumulative water loss.
package physio

import (
	"context"
	"fmt"
	"math"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

const op = "physio.simulate"

// Plausible rectal temperature band. Anything outside means the integration
// diverged.
const (
	MinRectalTemp = 30.0
	MaxRectalTemp = 45.0
)

// Input is the argument set for one run. State is held constant for the
// whole duration.
type Input struct {
	State           domain.ThermalState
	Human           domain.Human
	DurationMinutes int
	IntervalMinutes int
}

// Validate checks the run configuration.
func (in Input) Validate() error {
	if in.IntervalMinutes <= 0 {
		return domain.NewError(domain.KindInvalidInput, op, "interval must be positive, got %d", in.IntervalMinutes)
	}
	if in.DurationMinutes <= 0 {
		return domain.NewError(domain.KindInvalidInput, op, "duration must be positive, got %d", in.DurationMinutes)
	}
	if in.DurationMinutes%in.IntervalMinutes != 0 {
		return domain.NewError(domain.KindInvalidInput, op,
			"interval %d does not divide duration %d", in.IntervalMinutes, in.DurationMinutes)
	}
	if err := in.State.Validate(); err != nil {
		return err
	}
	if _, err := domain.NewHuman(in.Human); err != nil {
		return err
	}
	return nil
}

// Samples is the output length for the configured run, including t=0.
func (in Input) Samples() int {
	if in.IntervalMinutes <= 0 {
		return 0
	}
	return in.DurationMinutes/in.IntervalMinutes + 1
}

// Simulator integrates the two-node model. It holds no state between runs and
// is safe for concurrent use.
type Simulator struct {
	stepsPerMinute int
}

// NewSimulator returns a Simulator integrating at half-minute steps.
func NewSimulator() *Simulator {
	return &Simulator{stepsPerMinute: 2}
}

// Simulate runs the model over [0, duration]. It returns
// domain.ErrPhysiologyDivergence, never a partial series, when the integration
// leaves the physiological band.
func (s *Simulator) Simulate(ctx context.Context, in Input) (domain.PhysioTimeSeries, error) {
	if err := in.Validate(); err != nil {
		return domain.PhysioTimeSeries{}, err
	}

	n := in.Samples()
	out := domain.PhysioTimeSeries{
		TimeMinutes: make([]float64, 0, n),
		RectalTemp:  make([]float64, 0, n),
		WaterLossML: make([]float64, 0, n),
	}

	b := newBody(in.State, in.Human)
	dt := 1.0 / float64(s.stepsPerMinute)
	record := func(minute int) {
		out.TimeMinutes = append(out.TimeMinutes, float64(minute))
		out.RectalTemp = append(out.RectalTemp, b.tcr)
		out.WaterLossML = append(out.WaterLossML, b.waterLoss)
	}
	record(0)

	for minute := 1; minute <= in.DurationMinutes; minute++ {
		for i := 0; i < s.stepsPerMinute; i++ {
			b.step(dt)
		}
		if err := b.check(); err != nil {
			return domain.PhysioTimeSeries{}, &domain.Error{
				Kind: domain.KindPhysiologyDivergence,
				Op:   op,
				Err:  fmt.Errorf("minute %d: %w", minute, err),
			}
		}
		if minute%in.IntervalMinutes == 0 {
			record(minute)
			if err := ctx.Err(); err != nil {
				return domain.PhysioTimeSeries{}, err
			}
		}
	}
	return out, nil
}

func (b *body) check() error {
	for _, v := range []float64{b.tcr, b.tsk, b.waterLoss} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite state (core=%v skin=%v water=%v)", b.tcr, b.tsk, b.waterLoss)
		}
	}
	if b.tcr < MinRectalTemp || b.tcr > MaxRectalTemp {
		return fmt.Errorf("rectal temperature %.2f outside [%.0f, %.0f]", b.tcr, MinRectalTemp, MaxRectalTemp)
	}
	return nil
}
