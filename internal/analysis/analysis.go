// Package analysis summarises the economic outcomes of simulated episodes.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarises a sample of values.
type Distribution struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdEst float64 `json:"std_est"`
	Median float64 `json:"median"`
	PctPos float64 `json:"pct_pos"`
	PctNeg float64 `json:"pct_neg"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

// Summarize computes a Distribution. StdEst is the population deviation and
// percentiles are empirical quantiles, so they are always observed values.
// An empty sample yields the zero Distribution.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	data := make([]float64, len(values))
	copy(data, values)
	sort.Float64s(data)

	mean, variance := stat.PopMeanVariance(data, nil)

	pos, neg := 0, 0
	for _, v := range data {
		switch {
		case v > 0:
			pos++
		case v < 0:
			neg++
		}
	}
	n := float64(len(data))

	return Distribution{
		Count:  len(data),
		Mean:   mean,
		StdEst: math.Sqrt(variance),
		Median: stat.Quantile(0.5, stat.Empirical, data, nil),
		PctPos: float64(pos) / n,
		PctNeg: float64(neg) / n,
		P10:    stat.Quantile(0.10, stat.Empirical, data, nil),
		P25:    stat.Quantile(0.25, stat.Empirical, data, nil),
		P50:    stat.Quantile(0.50, stat.Empirical, data, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, data, nil),
		P90:    stat.Quantile(0.90, stat.Empirical, data, nil),
	}
}
