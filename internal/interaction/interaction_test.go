package interaction

import (
	"testing"

	"github.com/matsen/hairball/internal/graph"
)

func starEdges() []graph.Edge {
	return []graph.Edge{
		{Source: "hub", Target: "a"},
		{Source: "hub", Target: "b"},
		{Source: "c", Target: "hub"},
		{Source: "a", Target: "b"},
	}
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(m *Machine)
		event       func(m *Machine) bool
		wantChanged bool
		wantState   State
		wantFocus   string
	}{
		{
			name:        "hover from idle",
			setup:       func(m *Machine) {},
			event:       func(m *Machine) bool { return m.HoverEnter("hub") },
			wantChanged: true,
			wantState:   StateHovered,
			wantFocus:   "hub",
		},
		{
			name:        "hover leave",
			setup:       func(m *Machine) { m.HoverEnter("hub") },
			event:       func(m *Machine) bool { return m.HoverLeave() },
			wantChanged: true,
			wantState:   StateIdle,
		},
		{
			name:        "hover ignored while selected",
			setup:       func(m *Machine) { m.Click("a") },
			event:       func(m *Machine) bool { return m.HoverEnter("hub") },
			wantChanged: false,
			wantState:   StateSelected,
			wantFocus:   "a",
		},
		{
			name:        "hover ignored while hovered",
			setup:       func(m *Machine) { m.HoverEnter("a") },
			event:       func(m *Machine) bool { return m.HoverEnter("hub") },
			wantChanged: false,
			wantState:   StateHovered,
			wantFocus:   "a",
		},
		{
			name:        "click from idle",
			setup:       func(m *Machine) {},
			event:       func(m *Machine) bool { return m.Click("hub") },
			wantChanged: true,
			wantState:   StateSelected,
			wantFocus:   "hub",
		},
		{
			name:        "click replaces hover",
			setup:       func(m *Machine) { m.HoverEnter("a") },
			event:       func(m *Machine) bool { return m.Click("hub") },
			wantChanged: true,
			wantState:   StateSelected,
			wantFocus:   "hub",
		},
		{
			name:        "click replaces selection",
			setup:       func(m *Machine) { m.Click("a") },
			event:       func(m *Machine) bool { return m.Click("b") },
			wantChanged: true,
			wantState:   StateSelected,
			wantFocus:   "b",
		},
		{
			name:        "click same node again",
			setup:       func(m *Machine) { m.Click("a") },
			event:       func(m *Machine) bool { return m.Click("a") },
			wantChanged: false,
			wantState:   StateSelected,
			wantFocus:   "a",
		},
		{
			name:        "background clears selection",
			setup:       func(m *Machine) { m.Click("a") },
			event:       func(m *Machine) bool { return m.ClickBackground() },
			wantChanged: true,
			wantState:   StateIdle,
		},
		{
			name:        "background clears hover",
			setup:       func(m *Machine) { m.HoverEnter("a") },
			event:       func(m *Machine) bool { return m.ClickBackground() },
			wantChanged: true,
			wantState:   StateIdle,
		},
		{
			name:        "background while idle",
			setup:       func(m *Machine) {},
			event:       func(m *Machine) bool { return m.ClickBackground() },
			wantChanged: false,
			wantState:   StateIdle,
		},
		{
			name:        "hover leave while selected",
			setup:       func(m *Machine) { m.Click("a") },
			event:       func(m *Machine) bool { return m.HoverLeave() },
			wantChanged: false,
			wantState:   StateSelected,
			wantFocus:   "a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(starEdges())
			tt.setup(m)
			changed := tt.event(m)
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if m.State() != tt.wantState {
				t.Errorf("State() = %v, want %v", m.State(), tt.wantState)
			}
			if m.FocusID() != tt.wantFocus {
				t.Errorf("FocusID() = %q, want %q", m.FocusID(), tt.wantFocus)
			}
		})
	}
}

func TestHighlightNeighborhood(t *testing.T) {
	m := NewMachine(starEdges())
	m.Click("hub")

	h := m.Highlight()
	if !h.Active {
		t.Fatal("Highlight().Active = false, want true after selection")
	}
	if h.FocusID != "hub" {
		t.Errorf("FocusID = %q, want %q", h.FocusID, "hub")
	}
	wantNodes := []string{"hub", "a", "b", "c"}
	if len(h.Nodes) != len(wantNodes) {
		t.Errorf("len(Nodes) = %d, want %d", len(h.Nodes), len(wantNodes))
	}
	for _, id := range wantNodes {
		if _, ok := h.Nodes[id]; !ok {
			t.Errorf("Nodes missing %q", id)
		}
	}
	// Edge a--b is not incident to hub and stays dimmed.
	if _, ok := h.Edges[graph.Edge{Source: "a", Target: "b"}.Key()]; ok {
		t.Error("Edges contains a--b, want incident edges only")
	}
	if len(h.Edges) != 3 {
		t.Errorf("len(Edges) = %d, want 3", len(h.Edges))
	}
}

func TestHighlightLeafFocus(t *testing.T) {
	m := NewMachine(starEdges())
	m.HoverEnter("c")

	h := m.Highlight()
	if len(h.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, want 2 (c and hub)", len(h.Nodes))
	}
	if len(h.Edges) != 1 {
		t.Errorf("len(Edges) = %d, want 1", len(h.Edges))
	}
}

func TestHighlightIdle(t *testing.T) {
	m := NewMachine(starEdges())
	h := m.Highlight()
	if h.Active {
		t.Error("Highlight().Active = true for an idle machine, want false")
	}
	if h.Nodes != nil || h.Edges != nil {
		t.Error("idle highlight carries sets, want nil")
	}
}

func TestReset(t *testing.T) {
	m := NewMachine(starEdges())
	m.Click("hub")

	m.Reset([]graph.Edge{{Source: "x", Target: "y"}})
	if m.State() != StateIdle {
		t.Errorf("State() after Reset = %v, want %v", m.State(), StateIdle)
	}
	if m.FocusID() != "" {
		t.Errorf("FocusID() after Reset = %q, want empty", m.FocusID())
	}

	// The new edge set drives neighbor scans after the reset.
	m.Click("x")
	h := m.Highlight()
	if _, ok := h.Nodes["y"]; !ok {
		t.Error("Nodes missing y, want neighbors from the new edge set")
	}
	if _, ok := h.Nodes["hub"]; ok {
		t.Error("Nodes contains hub from the old edge set")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateHovered, "hovered"},
		{StateSelected, "selected"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
