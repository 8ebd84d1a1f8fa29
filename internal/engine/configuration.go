package engine

import "github.com/piwi3910/GridShuffle/internal/model"

// ItemConfiguration is a mutable snapshot of every item's rectangle during a
// search. Save and Restore checkpoint the whole collection at once.
type ItemConfiguration struct {
	rects       map[string]model.Rect
	saved       map[string]model.Rect
	reorderable map[string]bool
	order       []string // insertion order
	sorted      []string // same identities, re-sorted by the push engine

	// Intersecting holds the items that overlapped the most recent target rectangle.
	Intersecting []string

	// Result is the rectangle found for the incoming item once IsSolution is set.
	Result     model.Rect
	IsSolution bool

	// blocked records that a candidate was rejected because it needed a pinned item to move.
	blocked bool
}

// NewItemConfiguration returns an empty configuration.
func NewItemConfiguration() *ItemConfiguration {
	return &ItemConfiguration{
		rects:       make(map[string]model.Rect),
		saved:       make(map[string]model.Rect),
		reorderable: make(map[string]bool),
	}
}

// Add registers an item and its current rectangle. The saved entry is created at the same time.
func (c *ItemConfiguration) Add(id string, r model.Rect, reorderable bool) {
	if _, exists := c.rects[id]; !exists {
		c.order = append(c.order, id)
		c.sorted = append(c.sorted, id)
	}
	c.rects[id] = r
	c.saved[id] = r
	c.reorderable[id] = reorderable
}

// Rect returns the proposed rectangle for id.
func (c *ItemConfiguration) Rect(id string) (model.Rect, bool) {
	r, ok := c.rects[id]
	return r, ok
}

// SetRect replaces the proposed rectangle for a registered id.
func (c *ItemConfiguration) SetRect(id string, r model.Rect) {
	if _, ok := c.rects[id]; ok {
		c.rects[id] = r
	}
}

// Reorderable reports whether id may be displaced.
func (c *ItemConfiguration) Reorderable(id string) bool {
	return c.reorderable[id]
}

// Has reports whether id is registered.
func (c *ItemConfiguration) Has(id string) bool {
	_, ok := c.rects[id]
	return ok
}

// Len returns the number of registered items.
func (c *ItemConfiguration) Len() int { return len(c.order) }

// Order returns the identities in insertion order.
func (c *ItemConfiguration) Order() []string { return c.order }

// Sorted returns the identities in the order left by the last edge sort.
func (c *ItemConfiguration) Sorted() []string { return c.sorted }

// Save copies every current rectangle into the checkpoint.
func (c *ItemConfiguration) Save() {
	for id, r := range c.rects {
		c.saved[id] = r
	}
}

// Restore copies every checkpointed rectangle back into the current state.
func (c *ItemConfiguration) Restore() {
	for id, r := range c.saved {
		c.rects[id] = r
	}
}

// BoundingRect returns the union of the rectangles of ids. ids must not be empty.
func (c *ItemConfiguration) BoundingRect(ids []string) model.Rect {
	var out model.Rect
	for i, id := range ids {
		r := c.rects[id]
		if i == 0 {
			out = r
			continue
		}
		out = out.Union(r)
	}
	return out
}

// Area returns the area of the result rectangle, used to compare candidate solutions.
// Configurations that are not solutions have area 0.
func (c *ItemConfiguration) Area() int {
	if !c.IsSolution {
		return 0
	}
	return c.Result.Area()
}

// Changed returns the items whose proposed rectangle differs from before, in
// insertion order, skipping ignore.
func (c *ItemConfiguration) Changed(before map[string]model.Rect, ignore string) []model.Displacement {
	var out []model.Displacement
	for _, id := range c.order {
		if id == ignore {
			continue
		}
		from, ok := before[id]
		if !ok {
			continue
		}
		if to := c.rects[id]; to != from {
			out = append(out, model.Displacement{ID: id, From: from, To: to})
		}
	}
	return out
}
