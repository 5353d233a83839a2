package reduce

import (
	"math"

	"github.com/matsen/hairball/internal/graph"
)

// searchThreshold binary-searches degree cutoffs in [floor, maxDeg]
// for one whose keep-count lands inside [bandLow, bandHigh]*maxNodes.
// Keep-count is non-increasing in the cutoff, so the search halves the
// range each probe: O(n log maxDeg) total, no sort of the degree
// values. When no cutoff reaches the band (near-regular graphs), the
// closest tested cutoff is returned, ties to the higher cutoff. The
// loop terminates when low > high.
func searchThreshold(degrees graph.DegreeMap, floor, maxDeg, maxNodes int) int {
	if floor < 0 {
		floor = 0
	}
	low, high := floor, maxDeg

	wantLow := bandLow * float64(maxNodes)
	wantHigh := bandHigh * float64(maxNodes)

	best := floor
	bestDist := math.Inf(1)

	for low <= high {
		mid := (low + high) / 2
		count := float64(countAtLeast(degrees, mid))

		if count >= wantLow && count <= wantHigh {
			return mid
		}

		var dist float64
		if count > wantHigh {
			dist = count - wantHigh
			low = mid + 1
		} else {
			dist = wantLow - count
			high = mid - 1
		}
		if dist < bestDist || (dist == bestDist && mid > best) {
			bestDist = dist
			best = mid
		}
	}

	return best
}

// countAtLeast counts ids whose degree is at least t.
func countAtLeast(degrees graph.DegreeMap, t int) int {
	count := 0
	for _, d := range degrees {
		if d >= t {
			count++
		}
	}
	return count
}
