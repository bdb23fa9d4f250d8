package montecarlo

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

// Spec describes one perturbed parameter: a normal draw clamped to [Min, Max].
// Draws outside the bounds are clamped, not redrawn, so mass piles up at the
// bounds.
type Spec struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Validate checks the distribution parameters.
func (s Spec) Validate() error {
	switch {
	case s.Name == "":
		return domain.NewError(domain.KindInvalidInput, "montecarlo.spec", "parameter name is empty")
	case !finite(s.Mean) || !finite(s.Min) || !finite(s.Max):
		return domain.NewError(domain.KindInvalidInput, "montecarlo.spec", "%s: mean %v, min %v and max %v must be finite", s.Name, s.Mean, s.Min, s.Max)
	case s.Std < 0 || math.IsNaN(s.Std) || math.IsInf(s.Std, 0):
		return domain.NewError(domain.KindInvalidInput, "montecarlo.spec", "%s: std %v must be non-negative", s.Name, s.Std)
	case s.Min > s.Max:
		return domain.NewError(domain.KindInvalidInput, "montecarlo.spec", "%s: min %v above max %v", s.Name, s.Min, s.Max)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (s Spec) draw(r *rand.Rand) float64 {
	v := s.Mean + s.Std*r.NormFloat64()
	return math.Max(s.Min, math.Min(s.Max, v))
}

// ParseSpec parses "name:mean:std:min:max", e.g. "clo:0.5:0.1:0.1:1.5".
func ParseSpec(s string) (Spec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 5 {
		return Spec{}, domain.NewError(domain.KindInvalidInput, "montecarlo.parse_spec",
			"%q: want name:mean:std:min:max", s)
	}
	var nums [4]float64
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Spec{}, &domain.Error{Kind: domain.KindInvalidInput, Op: "montecarlo.parse_spec", Err: fmt.Errorf("%q: %w", s, err)}
		}
		nums[i] = v
	}
	spec := Spec{Name: strings.TrimSpace(parts[0]), Mean: nums[0], Std: nums[1], Min: nums[2], Max: nums[3]}
	return spec, spec.Validate()
}

// newRNG returns a locally owned PCG generator derived from seed.
func newRNG(seed uint64) *rand.Rand {
	// Non-cryptographic PRNG is intentional for reproducible sampling.
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

func seedWord(seed uint64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%d:%s", seed, salt)
	return h.Sum64()
}
