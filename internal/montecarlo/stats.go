package montecarlo

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

// Summary is the mean and percentile envelope of a sample.
type Summary struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	P5   float64 `json:"p5"`
	P25  float64 `json:"p25"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P95  float64 `json:"p95"`
}

// Summarize reduces values to a Summary. values is not modified.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, domain.NewError(domain.KindNoValidSamples, "montecarlo.summarize", "no values")
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	q := func(p float64) float64 { return stat.Quantile(p, stat.Empirical, sorted, nil) }
	return Summary{
		N:    len(sorted),
		Mean: stat.Mean(sorted, nil),
		P5:   q(0.05),
		P25:  q(0.25),
		P50:  q(0.50),
		P75:  q(0.75),
		P95:  q(0.95),
	}, nil
}

// Bands reduces equal-length series to one Summary per time index.
func Bands(series [][]float64) ([]Summary, error) {
	const op = "montecarlo.bands"
	if len(series) == 0 {
		return nil, domain.NewError(domain.KindNoValidSamples, op, "no series")
	}
	n := len(series[0])
	for i, s := range series {
		if len(s) != n {
			return nil, domain.NewError(domain.KindInvalidInput, op, "series %d has length %d, want %d", i, len(s), n)
		}
	}

	out := make([]Summary, n)
	column := make([]float64, len(series))
	for j := 0; j < n; j++ {
		for i, s := range series {
			column[i] = s[j]
		}
		sum, err := Summarize(column)
		if err != nil {
			return nil, err
		}
		out[j] = sum
	}
	return out, nil
}

// Means extracts the mean line from bands.
func Means(bands []Summary) []float64 {
	out := make([]float64, len(bands))
	for i, b := range bands {
		out[i] = b.Mean
	}
	return out
}
