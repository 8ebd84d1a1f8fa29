package engine

import (
	"sort"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// edge identifies one side of a cluster. Values are bits so a set of stale
// edges fits in one mask.
type edge uint8

const (
	edgeLeft edge = 1 << iota
	edgeTop
	edgeRight
	edgeBottom

	allEdges = edgeLeft | edgeTop | edgeRight | edgeBottom
)

func (e edge) String() string {
	switch e {
	case edgeLeft:
		return "left"
	case edgeTop:
		return "top"
	case edgeRight:
		return "right"
	case edgeBottom:
		return "bottom"
	default:
		return "mixed"
	}
}

// leadingEdge returns the edge that leads a push in dir.
func leadingEdge(dir model.Direction) edge {
	switch {
	case dir.X < 0:
		return edgeLeft
	case dir.X > 0:
		return edgeRight
	case dir.Y < 0:
		return edgeTop
	default:
		return edgeBottom
	}
}

// clusterState tracks a displacement attempt.
type clusterState int

const (
	clusterEmpty clusterState = iota
	clusterGrowing
	clusterShifted
	clusterSucceeded
	clusterFailed
)

func (s clusterState) String() string {
	switch s {
	case clusterGrowing:
		return "growing"
	case clusterShifted:
		return "shifted"
	case clusterSucceeded:
		return "succeeded"
	case clusterFailed:
		return "failed"
	default:
		return "empty"
	}
}

// cluster is a group of items pushed together. Its edge arrays describe, per
// row (left/right) or per column (top/bottom), the outermost cell boundary of
// the members. They are recomputed lazily: any membership change or shift marks
// all four stale, and an edge is rebuilt the next time it is queried.
type cluster struct {
	ids    []string
	member map[string]bool
	config *ItemConfiguration
	state  clusterState

	leftEdge   []int // per row: smallest CellX
	rightEdge  []int // per row: largest Right()
	topEdge    []int // per column: smallest CellY
	bottomEdge []int // per column: largest Bottom()
	dirty      edge
}

func newCluster(ids []string, config *ItemConfiguration, countX, countY int) *cluster {
	c := &cluster{
		ids:        append([]string(nil), ids...),
		member:     make(map[string]bool, len(ids)),
		config:     config,
		leftEdge:   make([]int, countY),
		rightEdge:  make([]int, countY),
		topEdge:    make([]int, countX),
		bottomEdge: make([]int, countX),
	}
	for _, id := range ids {
		c.member[id] = true
	}
	if len(ids) > 0 {
		c.state = clusterGrowing
	}
	c.resetEdges()
	return c
}

func (c *cluster) resetEdges() {
	for _, e := range [][]int{c.leftEdge, c.rightEdge, c.topEdge, c.bottomEdge} {
		for i := range e {
			e[i] = -1
		}
	}
	c.dirty = allEdges
}

func (c *cluster) contains(id string) bool { return c.member[id] }

func (c *cluster) add(id string) {
	c.ids = append(c.ids, id)
	c.member[id] = true
	c.state = clusterGrowing
	c.resetEdges()
}

// edgeValues returns the edge array for which, rebuilding it first if stale.
func (c *cluster) edgeValues(which edge) []int {
	if c.dirty&which == which {
		c.computeEdge(which)
		c.dirty &^= which
	}
	switch which {
	case edgeLeft:
		return c.leftEdge
	case edgeRight:
		return c.rightEdge
	case edgeTop:
		return c.topEdge
	default:
		return c.bottomEdge
	}
}

func (c *cluster) computeEdge(which edge) {
	for _, id := range c.ids {
		r, _ := c.config.Rect(id)
		switch which {
		case edgeLeft:
			for j := r.CellY; j < r.Bottom(); j++ {
				if inRange(c.leftEdge, j) && (r.CellX < c.leftEdge[j] || c.leftEdge[j] < 0) {
					c.leftEdge[j] = r.CellX
				}
			}
		case edgeRight:
			for j := r.CellY; j < r.Bottom(); j++ {
				if inRange(c.rightEdge, j) && r.Right() > c.rightEdge[j] {
					c.rightEdge[j] = r.Right()
				}
			}
		case edgeTop:
			for i := r.CellX; i < r.Right(); i++ {
				if inRange(c.topEdge, i) && (r.CellY < c.topEdge[i] || c.topEdge[i] < 0) {
					c.topEdge[i] = r.CellY
				}
			}
		case edgeBottom:
			for i := r.CellX; i < r.Right(); i++ {
				if inRange(c.bottomEdge, i) && r.Bottom() > c.bottomEdge[i] {
					c.bottomEdge[i] = r.Bottom()
				}
			}
		}
	}
}

// isTouchingEdge reports whether item id abuts the cluster's which edge from
// outside, i.e. the cluster would run into it when pushed that way.
func (c *cluster) isTouchingEdge(id string, which edge) bool {
	r, _ := c.config.Rect(id)
	values := c.edgeValues(which)

	switch which {
	case edgeLeft:
		for j := r.CellY; j < r.Bottom(); j++ {
			if inRange(values, j) && values[j] == r.Right() {
				return true
			}
		}
	case edgeRight:
		for j := r.CellY; j < r.Bottom(); j++ {
			if inRange(values, j) && values[j] == r.CellX {
				return true
			}
		}
	case edgeTop:
		for i := r.CellX; i < r.Right(); i++ {
			if inRange(values, i) && values[i] == r.Bottom() {
				return true
			}
		}
	case edgeBottom:
		for i := r.CellX; i < r.Right(); i++ {
			if inRange(values, i) && values[i] == r.CellY {
				return true
			}
		}
	}
	return false
}

// isHitByShift reports whether moving the cluster one cell toward which
// would put a member on top of item id. The edge arrays keep only the
// outermost member per row or column, so an item lying between two members
// is caught here rather than by isTouchingEdge.
func (c *cluster) isHitByShift(id string, which edge) bool {
	r, _ := c.config.Rect(id)
	for _, m := range c.ids {
		mr, _ := c.config.Rect(m)
		if offsetToward(mr, which, 1).Intersects(r) {
			return true
		}
	}
	return false
}

// overlapping returns an item outside the cluster, other than skip, that a
// member overlaps.
func (c *cluster) overlapping(skip string) (string, bool) {
	for _, id := range c.config.Order() {
		if id == skip || c.contains(id) {
			continue
		}
		r, _ := c.config.Rect(id)
		for _, m := range c.ids {
			if mr, _ := c.config.Rect(m); mr.Intersects(r) {
				return id, true
			}
		}
	}
	return "", false
}

// memberIn returns a member whose rectangle intersects r.
func (c *cluster) memberIn(r model.Rect) (string, bool) {
	for _, m := range c.ids {
		if mr, _ := c.config.Rect(m); mr.Intersects(r) {
			return m, true
		}
	}
	return "", false
}

// shift moves every member delta cells toward which.
func (c *cluster) shift(which edge, delta int) {
	for _, id := range c.ids {
		r, _ := c.config.Rect(id)
		c.config.SetRect(id, offsetToward(r, which, delta))
	}
	c.state = clusterShifted
	c.resetEdges()
}

func offsetToward(r model.Rect, which edge, delta int) model.Rect {
	switch which {
	case edgeLeft:
		return r.Offset(-delta, 0)
	case edgeRight:
		return r.Offset(delta, 0)
	case edgeTop:
		return r.Offset(0, -delta)
	default:
		return r.Offset(0, delta)
	}
}

func (c *cluster) boundingRect() model.Rect {
	return c.config.BoundingRect(c.ids)
}

// sortForEdgePush orders the configuration's items as the cluster would meet
// them when pushed toward which: nearest the leading edge first.
func (c *cluster) sortForEdgePush(which edge) {
	cfg := c.config
	sort.SliceStable(cfg.sorted, func(i, j int) bool {
		l, _ := cfg.Rect(cfg.sorted[i])
		r, _ := cfg.Rect(cfg.sorted[j])
		switch which {
		case edgeLeft:
			return l.Right() > r.Right()
		case edgeRight:
			return l.CellX < r.CellX
		case edgeTop:
			return l.Bottom() > r.Bottom()
		default:
			return l.CellY < r.CellY
		}
	})
}

func inRange(values []int, i int) bool {
	return i >= 0 && i < len(values)
}
