package pipeline

import (
	"fmt"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

// Params are the personal parameters of a run. They are constant across a
// single run and are the fields the Monte Carlo engine may perturb.
type Params struct {
	Human   domain.Human
	MET     float64
	CLO     float64
	Posture domain.Posture
}

// Perturbable parameter names.
const (
	ParamMET    = "met"
	ParamCLO    = "clo"
	ParamAge    = "age"
	ParamWeight = "weight"
	ParamHeight = "height"
)

// WithParam returns a copy of p with the named parameter set to v.
func (p Params) WithParam(name string, v float64) (Params, error) {
	switch name {
	case ParamMET:
		p.MET = v
	case ParamCLO:
		p.CLO = v
	case ParamAge:
		p.Human.Age = v
	case ParamWeight:
		p.Human.Weight = v
	case ParamHeight:
		p.Human.Height = v
	default:
		return p, &domain.Error{Kind: domain.KindInvalidInput, Op: "pipeline.with_param", Err: fmt.Errorf("unknown parameter %q", name)}
	}
	return p, nil
}
