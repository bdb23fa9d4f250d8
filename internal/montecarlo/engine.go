// Package montecarlo re-runs a computation over randomly perturbed parameter
// sets and collects the successful results into an ensemble.
package montecarlo

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
	"github.com/couchcryptid/heat-risk-engine/internal/observability"
)

const op = "montecarlo.run"

// Perturbable is a parameter set that can return a copy with one named
// parameter overridden.
type Perturbable[P any] interface {
	WithParam(name string, value float64) (P, error)
}

// Target is the computation re-run per sample.
type Target[P, T any] func(ctx context.Context, params P) (T, error)

// Member is one retained sample.
type Member[P, T any] struct {
	Index  int                `json:"index"`
	Draw   map[string]float64 `json:"draw"`
	Params P                  `json:"-"`
	Output T                  `json:"output"`
}

// Ensemble holds the retained samples in draw order.
type Ensemble[P, T any] struct {
	Members   []Member[P, T]
	Requested int
	Failed    int
}

// Succeeded is the number of retained samples.
func (e Ensemble[P, T]) Succeeded() int { return len(e.Members) }

// Outputs returns the retained outputs in draw order.
func (e Ensemble[P, T]) Outputs() []T {
	out := make([]T, len(e.Members))
	for i, m := range e.Members {
		out[i] = m.Output
	}
	return out
}

// Options configures a run.
type Options[T any] struct {
	Samples int
	// Workers bounds parallel evaluation. Values < 1 mean serial.
	Workers int
	// Validate rejects an otherwise successful output, e.g. a time series of
	// the wrong length. Rejected outputs count as failed samples.
	Validate func(T) error
}

// Engine owns the random generator. It is not safe for concurrent Run calls;
// parallelism happens inside a single Run.
type Engine struct {
	rng     *rand.Rand
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEngine creates an Engine whose draws are fully determined by seed.
func NewEngine(seed uint64, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{rng: newRNG(seed), logger: logger, metrics: metrics}
}

// Run draws opts.Samples parameter sets, evaluates target on each and returns
// the samples that succeeded. Draws are taken sequentially before evaluation,
// so the ensemble is identical for any worker count. An empty ensemble is
// domain.ErrNoValidSamples.
func Run[P Perturbable[P], T any](ctx context.Context, e *Engine, baseline P, specs []Spec, target Target[P, T], opts Options[T]) (Ensemble[P, T], error) {
	if opts.Samples <= 0 {
		return Ensemble[P, T]{}, domain.NewError(domain.KindInvalidInput, op, "samples must be positive, got %d", opts.Samples)
	}
	if len(specs) == 0 {
		return Ensemble[P, T]{}, domain.NewError(domain.KindInvalidInput, op, "no parameter specs")
	}
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return Ensemble[P, T]{}, err
		}
	}

	type slot struct {
		draw   map[string]float64
		params P
		output T
		err    error
	}
	slots := make([]slot, opts.Samples)
	for i := range slots {
		draw := make(map[string]float64, len(specs))
		params := baseline
		var err error
		for _, s := range specs {
			v := s.draw(e.rng)
			draw[s.Name] = v
			if err == nil {
				params, err = params.WithParam(s.Name, v)
			}
		}
		slots[i] = slot{draw: draw, params: params, err: err}
	}

	g, gCtx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i := range slots {
		if slots[i].err != nil {
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			out, err := target(gCtx, slots[i].params)
			if err == nil && opts.Validate != nil {
				err = opts.Validate(out)
			}
			// Each goroutine owns slots[i]; failures stay local to the sample.
			slots[i].output, slots[i].err = out, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Ensemble[P, T]{}, err
	}
	if err := ctx.Err(); err != nil {
		return Ensemble[P, T]{}, err
	}

	ens := Ensemble[P, T]{Requested: opts.Samples}
	for i, s := range slots {
		if s.err != nil {
			ens.Failed++
			e.metrics.MonteCarloSamples.WithLabelValues("failed").Inc()
			e.logger.Debug("monte carlo sample dropped", "index", i, "error", s.err)
			continue
		}
		e.metrics.MonteCarloSamples.WithLabelValues("succeeded").Inc()
		ens.Members = append(ens.Members, Member[P, T]{Index: i, Draw: s.draw, Params: s.params, Output: s.output})
	}

	if len(ens.Members) == 0 {
		return ens, domain.NewError(domain.KindNoValidSamples, op, "all %d samples failed", opts.Samples)
	}
	if ens.Failed > 0 {
		e.logger.Warn("monte carlo samples dropped", "failed", ens.Failed, "requested", ens.Requested)
	}
	return ens, nil
}
