package layout

import "math"

// Barnes-Hut quadtree for the many-body force. A cell holds either one
// resident point or four children; every cell carries its subtree's
// total charge and charge-weighted centroid so distant subtrees
// collapse into a single interaction.

const (
	quadTheta2   = 0.81 * 0.81
	maxQuadDepth = 48
)

type quadCell struct {
	x0, y0, x1, y1 float64
	children       *[4]*quadCell

	// Occupied-leaf resident.
	point   int // node index, -1 when empty or internal
	px, py  float64
	pcharge float64

	// Subtree aggregates.
	charge float64
	weight float64 // sum of |charge|
	cx, cy float64 // |charge|-weighted centroid numerators
}

// buildQuadtree indexes current node positions with their per-node
// many-body strengths (negative for repulsion).
func buildQuadtree(nodes []simNode, charges []float64) *quadCell {
	if len(nodes) == 0 {
		return nil
	}
	x0, y0 := nodes[0].x, nodes[0].y
	x1, y1 := x0, y0
	for i := 1; i < len(nodes); i++ {
		n := &nodes[i]
		if n.x < x0 {
			x0 = n.x
		}
		if n.x > x1 {
			x1 = n.x
		}
		if n.y < y0 {
			y0 = n.y
		}
		if n.y > y1 {
			y1 = n.y
		}
	}
	// Square bounds keep subdivision uniform.
	side := x1 - x0
	if y1-y0 > side {
		side = y1 - y0
	}
	if side == 0 {
		side = 1
	}
	root := &quadCell{x0: x0, y0: y0, x1: x0 + side, y1: y0 + side, point: -1}
	for i := range nodes {
		root.insert(i, nodes[i].x, nodes[i].y, charges[i], 0)
	}
	return root
}

func (c *quadCell) insert(i int, x, y, charge float64, depth int) {
	c.charge += charge
	w := math.Abs(charge)
	c.weight += w
	c.cx += w * x
	c.cy += w * y

	if c.children == nil {
		if c.point < 0 {
			c.point, c.px, c.py, c.pcharge = i, x, y, charge
			return
		}
		if depth >= maxQuadDepth {
			// Coincident pile-up: keep the aggregate, drop the point.
			return
		}
		ri, rx, ry, rc := c.point, c.px, c.py, c.pcharge
		c.point = -1
		c.children = &[4]*quadCell{}
		c.childFor(rx, ry).insert(ri, rx, ry, rc, depth+1)
	}
	c.childFor(x, y).insert(i, x, y, charge, depth+1)
}

func (c *quadCell) childFor(x, y float64) *quadCell {
	mx := (c.x0 + c.x1) / 2
	my := (c.y0 + c.y1) / 2
	qi := 0
	cx0, cy0, cx1, cy1 := c.x0, c.y0, mx, my
	if x >= mx {
		qi |= 1
		cx0, cx1 = mx, c.x1
	}
	if y >= my {
		qi |= 2
		cy0, cy1 = my, c.y1
	}
	if c.children[qi] == nil {
		c.children[qi] = &quadCell{x0: cx0, y0: cy0, x1: cx1, y1: cy1, point: -1}
	}
	return c.children[qi]
}

// chargeForce walks the tree and returns the velocity delta the
// many-body force applies to node i at (x, y). Interactions beyond
// distMax2 are skipped; those under distMin2 are softened the way
// d3-force does it.
func chargeForce(c *quadCell, i int, x, y, alpha, distMin2, distMax2 float64, jiggle func() float64) (vx, vy float64) {
	if c == nil || c.weight == 0 {
		return 0, 0
	}

	dx := c.cx/c.weight - x
	dy := c.cy/c.weight - y
	width := c.x1 - c.x0
	d2 := dx*dx + dy*dy

	if width*width/quadTheta2 < d2 {
		if d2 >= distMax2 {
			return 0, 0
		}
		if dx == 0 {
			dx = jiggle()
			d2 += dx * dx
		}
		if dy == 0 {
			dy = jiggle()
			d2 += dy * dy
		}
		if d2 < distMin2 {
			d2 = math.Sqrt(distMin2 * d2)
		}
		w := c.charge * alpha / d2
		return dx * w, dy * w
	}

	if c.children == nil {
		if c.point < 0 || c.point == i {
			return 0, 0
		}
		dx = c.px - x
		dy = c.py - y
		d2 = dx*dx + dy*dy
		if d2 >= distMax2 {
			return 0, 0
		}
		if dx == 0 {
			dx = jiggle()
			d2 += dx * dx
		}
		if dy == 0 {
			dy = jiggle()
			d2 += dy * dy
		}
		if d2 < distMin2 {
			d2 = math.Sqrt(distMin2 * d2)
		}
		w := c.pcharge * alpha / d2
		return dx * w, dy * w
	}

	for _, child := range c.children {
		if child != nil {
			ax, ay := chargeForce(child, i, x, y, alpha, distMin2, distMax2, jiggle)
			vx += ax
			vy += ay
		}
	}
	return vx, vy
}
