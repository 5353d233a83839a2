// Package view connects pointer events, interaction state, and the
// render engine for one displayed graph.
package view

import (
	"github.com/matsen/hairball/internal/graph"
	"github.com/matsen/hairball/internal/interaction"
	"github.com/matsen/hairball/internal/layout"
	"github.com/matsen/hairball/internal/render"
)

// Renderer is the slice of the render engine the controller drives.
type Renderer interface {
	Render(nodes []graph.Node, edges []graph.Edge, st render.Styles) error
	UpdatePositions(pos []layout.Position) error
	Highlight(h interaction.Highlight) error
	Clear() error
}

// EventHandlers are caller callbacks fired after the controller has
// applied a transition. Nil handlers are skipped.
type EventHandlers struct {
	NodeClick   func(id string)
	NodeHover   func(id string)
	NodeUnhover func(id string)
}

// Controller owns the single interaction state for one view. Pointer
// events arrive here, drive the state machine, and push the resulting
// highlight into the renderer; nothing else mutates interaction state.
type Controller struct {
	renderer Renderer
	machine  *interaction.Machine
	handlers EventHandlers
}

// NewController wires a renderer and caller handlers into a controller
// with an idle interaction state.
func NewController(r Renderer, handlers EventHandlers) *Controller {
	return &Controller{
		renderer: r,
		machine:  interaction.NewMachine(nil),
		handlers: handlers,
	}
}

// SetGraph swaps the displayed arrays, resets interaction state, and
// renders the new scene.
func (c *Controller) SetGraph(nodes []graph.Node, edges []graph.Edge, st render.Styles) error {
	c.machine.Reset(edges)
	if err := c.renderer.Highlight(c.machine.Highlight()); err != nil {
		return err
	}
	return c.renderer.Render(nodes, edges, st)
}

// UpdatePositions forwards fresh layout coordinates to the renderer.
func (c *Controller) UpdatePositions(pos []layout.Position) error {
	return c.renderer.UpdatePositions(pos)
}

// PointerOver handles the pointer entering a node.
func (c *Controller) PointerOver(id string) error {
	if !c.machine.HoverEnter(id) {
		return nil
	}
	if h := c.handlers.NodeHover; h != nil {
		h(id)
	}
	return c.renderer.Highlight(c.machine.Highlight())
}

// PointerOut handles the pointer leaving the hovered node.
func (c *Controller) PointerOut() error {
	hovered := c.machine.FocusID()
	if !c.machine.HoverLeave() {
		return nil
	}
	if h := c.handlers.NodeUnhover; h != nil {
		h(hovered)
	}
	return c.renderer.Highlight(c.machine.Highlight())
}

// PointerDown handles a click. An empty id is the background.
func (c *Controller) PointerDown(id string) error {
	if id == "" {
		if !c.machine.ClickBackground() {
			return nil
		}
		return c.renderer.Highlight(c.machine.Highlight())
	}
	changed := c.machine.Click(id)
	if h := c.handlers.NodeClick; h != nil {
		h(id)
	}
	if !changed {
		return nil
	}
	return c.renderer.Highlight(c.machine.Highlight())
}

// State reports the current interaction state.
func (c *Controller) State() interaction.State { return c.machine.State() }

// FocusID reports the hovered or selected node, or "" while idle.
func (c *Controller) FocusID() string { return c.machine.FocusID() }

// Clear empties the renderer and resets interaction state.
func (c *Controller) Clear() error {
	c.machine.Reset(nil)
	return c.renderer.Clear()
}
