package graph

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes a graph's degree distribution. Rendering
// decisions (reduction targets, LOD thresholds) are usually made by
// eyeballing these numbers first.
type Distribution struct {
	Nodes    int     `json:"nodes"`
	Edges    int     `json:"edges"`
	Isolated int     `json:"isolated"`
	MinDeg   int     `json:"min_degree"`
	MaxDeg   int     `json:"max_degree"`
	Mean     float64 `json:"mean_degree"`
	StdDev   float64 `json:"stddev_degree"`
	Median   float64 `json:"median_degree"`
	P90      float64 `json:"p90_degree"`
}

// DegreeDistribution computes summary statistics over a degree map.
// The edge count is recovered from the degree sum (sum == 2*|edges|).
func DegreeDistribution(degrees DegreeMap) Distribution {
	dist := Distribution{Nodes: len(degrees)}
	if len(degrees) == 0 {
		return dist
	}

	vals := make([]float64, 0, len(degrees))
	dist.MinDeg = -1
	for _, d := range degrees {
		vals = append(vals, float64(d))
		if d == 0 {
			dist.Isolated++
		}
		if d > dist.MaxDeg {
			dist.MaxDeg = d
		}
		if dist.MinDeg < 0 || d < dist.MinDeg {
			dist.MinDeg = d
		}
	}
	sort.Float64s(vals)

	dist.Edges = degrees.Sum() / 2
	dist.Mean = stat.Mean(vals, nil)
	dist.StdDev = stat.StdDev(vals, nil)
	dist.Median = stat.Quantile(0.5, stat.Empirical, vals, nil)
	dist.P90 = stat.Quantile(0.9, stat.Empirical, vals, nil)
	return dist
}
