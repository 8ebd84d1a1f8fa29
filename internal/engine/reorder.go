package engine

import (
	"github.com/charmbracelet/log"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// solver holds the scratch state of one top-level placement call. A fresh
// solver is built for every request and never shared.
type solver struct {
	grid     model.GridSpec
	items    []model.Item
	ignore   string
	occupied *Occupancy // authoritative occupancy without the ignored item
	tmp      *Occupancy // scratch copy manipulated while searching
	logger   *log.Logger
}

func newSolver(grid model.GridSpec, items []model.Item, ignore string, occupied *Occupancy, logger *log.Logger) *solver {
	s := &solver{
		grid:     grid,
		items:    items,
		ignore:   ignore,
		occupied: occupied.Clone(),
		tmp:      NewOccupancy(grid.CountX, grid.CountY),
		logger:   logger,
	}
	for _, it := range items {
		if it.ID == ignore {
			s.occupied.MarkRect(it.Rect, false)
		}
	}
	return s
}

// snapshot copies the authoritative item rectangles into a new configuration.
func (s *solver) snapshot() *ItemConfiguration {
	cfg := NewItemConfiguration()
	for _, it := range s.items {
		cfg.Add(it.ID, it.Rect, it.Reorderable)
	}
	return cfg
}

// nearestTarget finds where an item of span centred on point would land if
// nothing were in the way.
func (s *solver) nearestTarget(point model.Point, span model.Span) (model.Rect, bool) {
	return findNearestArea(s.grid, s.occupied, anchorTopLeft(s.grid, point, span), span, span, false)
}

// shrinkSequence lists the spans tried by the reorder search: the requested
// span, then one cell smaller at a time, alternating x and y (x first) and
// never going below minSpan.
func shrinkSequence(minSpan, span model.Span) []model.Span {
	seq := []model.Span{span}
	decX := true
	for {
		switch {
		case span.X > minSpan.X && (minSpan.Y == span.Y || decX):
			span.X--
			decX = false
		case span.Y > minSpan.Y:
			span.Y--
			decX = true
		default:
			return seq
		}
		seq = append(seq, span)
	}
}

// findReorderSolution searches for a placement of the incoming item near point
// that may displace other items, shrinking the span toward minSpan until a
// rearrangement exists. The first span in the shrink sequence that succeeds wins.
func (s *solver) findReorderSolution(point model.Point, minSpan, span model.Span, dir model.Direction) *ItemConfiguration {
	blocked := false
	var cfg *ItemConfiguration

	for _, candidate := range shrinkSequence(minSpan, span) {
		cfg = s.snapshot()
		s.occupied.CopyTo(s.tmp)

		target, ok := s.nearestTarget(point, candidate)
		if ok && s.rearrangementExists(target, dir, cfg) {
			cfg.IsSolution = true
			cfg.Result = target
			if cfg.Has(s.ignore) {
				cfg.SetRect(s.ignore, target)
			}
			s.logger.Debug("reorder solution found", "rect", target, "span", candidate, "dir", dir)
			return cfg
		}
		blocked = blocked || cfg.blocked
		s.logger.Debug("no rearrangement", "span", candidate, "target", target, "blocked", cfg.blocked)
	}

	cfg.IsSolution = false
	cfg.blocked = blocked
	return cfg
}

// findConfigurationNoShuffle looks for a vacant area near point without moving
// anything, accepting any span between minSpan and span.
func (s *solver) findConfigurationNoShuffle(point model.Point, minSpan, span model.Span) *ItemConfiguration {
	cfg := s.snapshot()
	target, ok := findNearestArea(s.grid, s.occupied, anchorTopLeft(s.grid, point, span), minSpan, span, true)
	if !ok {
		return cfg
	}
	cfg.IsSolution = true
	cfg.Result = target
	if cfg.Has(s.ignore) {
		cfg.SetRect(s.ignore, target)
	}
	return cfg
}

// rearrangementExists reports whether target can be cleared by displacing the
// items that overlap it, updating cfg in place on success. Strategies are
// tried in order: push the overlapping items as a growing cluster, move them
// as one rigid block, then move each one on its own.
func (s *solver) rearrangementExists(target model.Rect, dir model.Direction, cfg *ItemConfiguration) bool {
	if target.CellX < 0 || target.CellY < 0 {
		return false
	}

	if cfg.Has(s.ignore) {
		r, _ := cfg.Rect(s.ignore)
		r.CellX, r.CellY = target.CellX, target.CellY
		cfg.SetRect(s.ignore, r)
	}

	var intersecting []string
	for _, id := range cfg.Order() {
		if id == s.ignore {
			continue
		}
		r, _ := cfg.Rect(id)
		if !target.Intersects(r) {
			continue
		}
		if !cfg.Reorderable(id) {
			cfg.blocked = true
			return false
		}
		intersecting = append(intersecting, id)
	}
	cfg.Intersecting = intersecting
	if len(intersecting) == 0 {
		return true
	}

	if s.attemptPushInDirection(intersecting, target, dir, cfg) {
		return true
	}

	if s.moveBlock(intersecting, target, dir, cfg) {
		s.logger.Debug("moved intersecting items as a block", "count", len(intersecting))
		return true
	}

	for _, id := range intersecting {
		if !s.moveItem(id, target, dir, cfg) {
			s.logger.Debug("item cannot be relocated", "id", id)
			return false
		}
	}
	return true
}

// pushDirections lists the directions a push is attempted in for hint dir.
// A diagonal hint is split into its axis components, followed by the
// components of the opposite direction. A straight hint is tried as given,
// reversed, then along the perpendicular axis both ways.
func pushDirections(dir model.Direction) []model.Direction {
	if dir.Diagonal() {
		return []model.Direction{
			{X: dir.X}, {Y: dir.Y},
			{X: -dir.X}, {Y: -dir.Y},
		}
	}
	return []model.Direction{
		dir, dir.Negate(),
		dir.Swap(), dir.Swap().Negate(),
	}
}

func (s *solver) attemptPushInDirection(ids []string, target model.Rect, dir model.Direction, cfg *ItemConfiguration) bool {
	for _, d := range pushDirections(dir) {
		if s.pushItems(ids, target, d, cfg) {
			s.logger.Debug("push succeeded", "dir", d, "count", len(ids))
			return true
		}
	}
	return false
}

// pushItems shoves ids out of target in direction dir. Items met by the
// cluster's leading edge, or that a member would run into on the next step,
// join it; a pinned item in the way fails the attempt. The cluster moves one
// cell per step until it has travelled the distance needed to clear target.
// The result must leave no member overlapping an outside item. On failure cfg
// is restored to its state on entry.
func (s *solver) pushItems(ids []string, target model.Rect, dir model.Direction, cfg *ItemConfiguration) bool {
	c := newCluster(ids, cfg, s.grid.CountX, s.grid.CountY)
	bounds := c.boundingRect()
	which := leadingEdge(dir)

	var distance int
	switch which {
	case edgeLeft:
		distance = bounds.Right() - target.CellX
	case edgeRight:
		distance = target.Right() - bounds.CellX
	case edgeTop:
		distance = bounds.Bottom() - target.CellY
	default:
		distance = target.Bottom() - bounds.CellY
	}
	if distance <= 0 {
		return false
	}

	for _, id := range ids {
		r, _ := cfg.Rect(id)
		s.tmp.MarkRect(r, false)
	}

	cfg.Save()
	c.sortForEdgePush(which)

	for distance > 0 && c.state != clusterFailed {
		// Absorbing an item can bring others into contact, so sweep until
		// the cluster stops growing.
		for grown := true; grown && c.state != clusterFailed; {
			grown = false
			for _, id := range cfg.Sorted() {
				if c.contains(id) || id == s.ignore {
					continue
				}
				if !c.isTouchingEdge(id, which) && !c.isHitByShift(id, which) {
					continue
				}
				if !cfg.Reorderable(id) {
					s.logger.Debug("push stopped by pinned item", "id", id, "edge", which)
					c.state = clusterFailed
					break
				}
				c.add(id)
				grown = true
				r, _ := cfg.Rect(id)
				s.tmp.MarkRect(r, false)
			}
		}
		if c.state == clusterFailed {
			break
		}
		distance--
		c.shift(which, 1)
	}

	ok := c.state != clusterFailed && s.grid.InBounds(c.boundingRect())
	if id, hit := c.overlapping(s.ignore); ok && hit {
		s.logger.Debug("push left an overlap", "id", id, "edge", which)
		ok = false
	}
	if id, hit := c.memberIn(target); ok && hit {
		s.logger.Debug("push did not clear target", "id", id, "edge", which)
		ok = false
	}
	if ok {
		c.state = clusterSucceeded
	} else {
		c.state = clusterFailed
		cfg.Restore()
	}

	for _, id := range c.ids {
		r, _ := cfg.Rect(id)
		s.tmp.MarkRect(r, true)
	}
	return c.state == clusterSucceeded
}

// moveBlock relocates ids as one rigid group to the nearest place where none
// of their cells collide, keeping their relative arrangement.
func (s *solver) moveBlock(ids []string, target model.Rect, dir model.Direction, cfg *ItemConfiguration) bool {
	if len(ids) == 0 {
		return true
	}

	bounds := cfg.BoundingRect(ids)
	for _, id := range ids {
		r, _ := cfg.Rect(id)
		s.tmp.MarkRect(r, false)
	}

	block := NewOccupancy(bounds.SpanX, bounds.SpanY)
	for _, id := range ids {
		r, _ := cfg.Rect(id)
		block.MarkCells(r.CellX-bounds.CellX, r.CellY-bounds.CellY, r.SpanX, r.SpanY, true)
	}

	s.tmp.MarkRect(target, true)

	x, y, ok := findNearestAreaInDirection(s.grid, bounds.CellX, bounds.CellY, bounds.Span(), dir, s.tmp, block)
	if ok {
		dx, dy := x-bounds.CellX, y-bounds.CellY
		for _, id := range ids {
			r, _ := cfg.Rect(id)
			cfg.SetRect(id, r.Offset(dx, dy))
		}
	}

	for _, id := range ids {
		r, _ := cfg.Rect(id)
		s.tmp.MarkRect(r, true)
	}
	return ok
}

// moveItem relocates a single item to the nearest free place of its own size.
func (s *solver) moveItem(id string, target model.Rect, dir model.Direction, cfg *ItemConfiguration) bool {
	r, _ := cfg.Rect(id)
	s.tmp.MarkRect(r, false)
	s.tmp.MarkRect(target, true)

	x, y, ok := findNearestAreaInDirection(s.grid, r.CellX, r.CellY, r.Span(), dir, s.tmp, nil)
	if ok {
		r.CellX, r.CellY = x, y
		cfg.SetRect(id, r)
	}
	s.tmp.MarkRect(r, true)
	return ok
}

// directionForDrop derives a push direction when the host gives none: from
// the requested point toward the centre of the region covered by the target
// rectangle and everything it overlaps. Axes on which the request or that
// region spans the whole grid do not contribute.
func (s *solver) directionForDrop(point model.Point, span model.Span) model.Direction {
	fallback := model.Direction{X: 1, Y: 0}

	target, ok := s.nearestTarget(point, span)
	if !ok {
		return fallback
	}

	region := target
	for _, it := range s.items {
		if it.ID == s.ignore || !it.Rect.Intersects(target) {
			continue
		}
		region = region.Union(it.Rect)
	}

	center := s.grid.RegionCenter(region)
	deltaX := int((center.X - point.X) / float64(span.X))
	deltaY := int((center.Y - point.Y) / float64(span.Y))

	if region.SpanX == s.grid.CountX || span.X == s.grid.CountX {
		deltaX = 0
	}
	if region.SpanY == s.grid.CountY || span.Y == s.grid.CountY {
		deltaY = 0
	}
	if deltaX == 0 && deltaY == 0 {
		return fallback
	}
	return directionOf(float64(deltaX), float64(deltaY))
}
