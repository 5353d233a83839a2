// Package interaction tracks hover and selection state for a rendered view.
package interaction

import (
	"github.com/matsen/hairball/internal/graph"
)

// State is the interaction mode of a view.
type State int

const (
	// StateIdle means no node is hovered or selected.
	StateIdle State = iota
	// StateHovered means a node is hovered but none is selected.
	StateHovered
	// StateSelected means a node is selected; hover events are ignored.
	StateSelected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHovered:
		return "hovered"
	case StateSelected:
		return "selected"
	}
	return "unknown"
}

// Highlight is the emphasis set the renderer applies after a transition.
// When Active is false styling is uniform. The maps are valid until the
// next transition on the machine that produced them.
type Highlight struct {
	Active  bool
	FocusID string
	Nodes   map[string]struct{}
	Edges   map[graph.EdgeKey]struct{}
}

// Machine is the hover/selection state machine for one view. Hover only
// takes effect while idle; clicking selects from any state; clicking the
// background returns to idle. Each transition into a focused state
// recomputes the neighbor set with a single pass over the edges.
type Machine struct {
	state   State
	focus   string
	edges   []graph.Edge
	nodeSet map[string]struct{}
	edgeSet map[graph.EdgeKey]struct{}
}

// NewMachine returns an idle machine scanning the given edges for
// neighborhoods.
func NewMachine(edges []graph.Edge) *Machine {
	return &Machine{edges: edges}
}

// State reports the current interaction state.
func (m *Machine) State() State { return m.state }

// FocusID returns the hovered or selected node id, or "" while idle.
func (m *Machine) FocusID() string { return m.focus }

// HoverEnter moves idle to hovered. It is ignored in any other state and
// reports whether the highlight changed.
func (m *Machine) HoverEnter(id string) bool {
	if m.state != StateIdle || id == "" {
		return false
	}
	m.state = StateHovered
	m.setFocus(id)
	return true
}

// HoverLeave moves hovered back to idle. It is ignored in any other state.
func (m *Machine) HoverLeave() bool {
	if m.state != StateHovered {
		return false
	}
	m.state = StateIdle
	m.clearFocus()
	return true
}

// Click selects a node from any state and reports whether the highlight
// changed. Clicking the already selected node is a no-op.
func (m *Machine) Click(id string) bool {
	if id == "" {
		return false
	}
	if m.state == StateSelected && m.focus == id {
		return false
	}
	m.state = StateSelected
	m.setFocus(id)
	return true
}

// ClickBackground clears selection or hover and returns to idle.
func (m *Machine) ClickBackground() bool {
	if m.state == StateIdle {
		return false
	}
	m.state = StateIdle
	m.clearFocus()
	return true
}

// Reset returns the machine to idle over a new edge set. Call it whenever
// the underlying node or edge arrays change.
func (m *Machine) Reset(edges []graph.Edge) {
	m.state = StateIdle
	m.edges = edges
	m.clearFocus()
}

// Highlight returns the current emphasis set.
func (m *Machine) Highlight() Highlight {
	if m.state == StateIdle {
		return Highlight{}
	}
	return Highlight{
		Active:  true,
		FocusID: m.focus,
		Nodes:   m.nodeSet,
		Edges:   m.edgeSet,
	}
}

func (m *Machine) setFocus(id string) {
	m.focus = id
	m.nodeSet = make(map[string]struct{})
	m.edgeSet = make(map[graph.EdgeKey]struct{})
	m.nodeSet[id] = struct{}{}
	for _, e := range m.edges {
		switch id {
		case e.Source:
			m.nodeSet[e.Target] = struct{}{}
			m.edgeSet[e.Key()] = struct{}{}
		case e.Target:
			m.nodeSet[e.Source] = struct{}{}
			m.edgeSet[e.Key()] = struct{}{}
		}
	}
}

func (m *Machine) clearFocus() {
	m.focus = ""
	m.nodeSet = nil
	m.edgeSet = nil
}
