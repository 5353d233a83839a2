package reduce

import (
	"math/rand"
	"time"

	"github.com/matsen/hairball/internal/graph"
)

// sampleDown trims keep to exactly maxNodes (or as close as the pool
// allows). Each candidate survives independently with probability
// maxNodes/|candidates|; the probabilistic pass rarely lands on the
// target, so the result is topped up in input order from the dropped
// pool or trimmed from the tail. This is the only randomized stage of
// the pipeline; seed 0 draws from the clock.
func sampleDown(keep map[string]bool, nodes []graph.Node, maxNodes int, seed int64) {
	if len(keep) <= maxNodes {
		return
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	p := float64(maxNodes) / float64(len(keep))

	// Candidates are visited in input order so a fixed seed consumes
	// the random stream identically across runs.
	survivors := make([]string, 0, maxNodes)
	dropped := make([]string, 0, len(keep)-maxNodes)
	for _, n := range nodes {
		if !keep[n.ID] {
			continue
		}
		if rng.Float64() < p {
			survivors = append(survivors, n.ID)
		} else {
			dropped = append(dropped, n.ID)
		}
	}

	for len(survivors) < maxNodes && len(dropped) > 0 {
		survivors = append(survivors, dropped[0])
		dropped = dropped[1:]
	}
	if len(survivors) > maxNodes {
		survivors = survivors[:maxNodes]
	}

	for id := range keep {
		delete(keep, id)
	}
	for _, id := range survivors {
		keep[id] = true
	}
}
