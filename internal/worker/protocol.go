// Package worker runs pure graph computations off the caller's
// goroutine behind a message-passing protocol with generation tokens.
package worker

import (
	"fmt"

	"github.com/matsen/hairball/internal/graph"
	"github.com/matsen/hairball/internal/reduce"
	"github.com/matsen/hairball/internal/style"
)

// TaskType names an operation the pool can run.
type TaskType string

const (
	TaskCalculateDegrees TaskType = "calculateDegrees"
	TaskOptimizeGraph    TaskType = "optimizeGraph"
	TaskGenerateColors   TaskType = "generateColors"
	TaskCalculateSizes   TaskType = "calculateSizes"
	TaskCleanData        TaskType = "cleanData"
)

// Payload carries the inputs for one request. The pool deep-copies it on
// submission, so workers never share memory with the caller.
type Payload struct {
	Nodes   []graph.Node
	Edges   []graph.Edge
	Degrees graph.DegreeMap
	Reduce  reduce.Options
	Style   style.Options
}

// Request is one unit of work. Generation tokens increase monotonically
// per pool; responses echo them so receivers can discard stale results.
type Request struct {
	Type       TaskType `json:"type"`
	Generation uint64   `json:"generation"`
	Payload    Payload  `json:"payload"`
}

// Result carries whichever outputs the task type produces.
type Result struct {
	Nodes     []graph.Node       `json:"nodes,omitempty"`
	Edges     []graph.Edge       `json:"edges,omitempty"`
	Degrees   graph.DegreeMap    `json:"degrees,omitempty"`
	Reduction *reduce.Result     `json:"reduction,omitempty"`
	Colors    map[string]string  `json:"colors,omitempty"`
	Sizes     map[string]float64 `json:"sizes,omitempty"`
	Dropped   int                `json:"dropped,omitempty"`
}

// Response mirrors the request identity and carries either a result or
// an error message.
type Response struct {
	Success    bool     `json:"success"`
	Type       TaskType `json:"type"`
	Generation uint64   `json:"generation"`
	Result     *Result  `json:"result,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Execute runs a request synchronously. It is the dispatch the pool
// workers use and is also callable inline when no pool is wanted.
func Execute(req Request) Response {
	resp := Response{Type: req.Type, Generation: req.Generation}
	switch req.Type {
	case TaskCalculateDegrees:
		resp.Success = true
		resp.Result = &Result{Degrees: graph.ComputeDegrees(req.Payload.Nodes, req.Payload.Edges)}
	case TaskOptimizeGraph:
		r := reduce.Reduce(req.Payload.Nodes, req.Payload.Edges, req.Payload.Reduce)
		resp.Success = true
		resp.Result = &Result{Nodes: r.Nodes, Edges: r.Edges, Reduction: &r}
	case TaskGenerateColors:
		colors, err := style.ColorsFor(req.Payload.Nodes, req.Payload.Style)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Success = true
		resp.Result = &Result{Colors: colors}
	case TaskCalculateSizes:
		resp.Success = true
		resp.Result = &Result{Sizes: style.SizesFor(req.Payload.Nodes, req.Payload.Degrees, req.Payload.Style)}
	case TaskCleanData:
		r := graph.Sanitize(req.Payload.Nodes, req.Payload.Edges)
		resp.Success = true
		resp.Result = &Result{Nodes: r.Nodes, Edges: r.Edges, Dropped: r.Dropped()}
	default:
		resp.Error = fmt.Sprintf("unknown task type %q", req.Type)
	}
	return resp
}
