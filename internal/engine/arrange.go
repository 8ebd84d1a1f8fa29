package engine

import (
	"sort"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// ArrangeResult reports the outcome of Arrange.
type ArrangeResult struct {
	Placed   []model.Item
	Unplaced []model.Item
}

// Arrange places items that have no position yet into the first vacant spot
// that fits each one, scanning row-major from the origin. Only the span of
// each item's rectangle is used; its position is overwritten.
func (e *Engine) Arrange(items []model.Item) ArrangeResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending := make([]model.Item, len(items))
	copy(pending, items)

	// Largest first packs tighter
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Rect.Area() > pending[j].Rect.Area()
	})

	var result ArrangeResult
	for _, it := range pending {
		if !it.Rect.Span().Valid() {
			result.Unplaced = append(result.Unplaced, it)
			continue
		}
		if _, dup := e.index[it.ID]; dup {
			result.Unplaced = append(result.Unplaced, it)
			continue
		}

		x, y, ok := e.occ.FindFirstVacant(it.Rect.SpanX, it.Rect.SpanY)
		if !ok {
			result.Unplaced = append(result.Unplaced, it)
			continue
		}
		it.Rect.CellX, it.Rect.CellY = x, y

		e.index[it.ID] = len(e.items)
		e.items = append(e.items, it)
		e.occ.MarkRect(it.Rect, true)
		result.Placed = append(result.Placed, it)
	}

	e.logger.Debug("arranged items", "placed", len(result.Placed), "unplaced", len(result.Unplaced))
	return result
}
