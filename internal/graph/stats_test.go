package graph

import (
	"math"
	"testing"
)

func TestDegreeDistribution(t *testing.T) {
	degrees := DegreeMap{"a": 4, "b": 2, "c": 2, "d": 0}

	dist := DegreeDistribution(degrees)

	if dist.Nodes != 4 {
		t.Errorf("Nodes = %d, want 4", dist.Nodes)
	}
	if dist.Edges != 4 {
		t.Errorf("Edges = %d, want 4 (degree sum 8)", dist.Edges)
	}
	if dist.Isolated != 1 {
		t.Errorf("Isolated = %d, want 1", dist.Isolated)
	}
	if dist.MaxDeg != 4 || dist.MinDeg != 0 {
		t.Errorf("degree range = [%d,%d], want [0,4]", dist.MinDeg, dist.MaxDeg)
	}
	if math.Abs(dist.Mean-2.0) > 1e-9 {
		t.Errorf("Mean = %g, want 2.0", dist.Mean)
	}
}

func TestDegreeDistributionEmpty(t *testing.T) {
	dist := DegreeDistribution(DegreeMap{})
	if dist.Nodes != 0 || dist.Edges != 0 {
		t.Errorf("empty distribution = %+v, want zero counts", dist)
	}
}
