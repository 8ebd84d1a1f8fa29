package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/GridShuffle/internal/model"
)

func newTestEngine(t *testing.T, grid model.GridSpec, items ...model.Item) *Engine {
	t.Helper()
	e, err := New(grid)
	require.NoError(t, err)
	for _, it := range items {
		require.NoError(t, e.Place(it))
	}
	return e
}

func dirPtr(x, y int) *model.Direction {
	return &model.Direction{X: x, Y: y}
}

func TestNewRejectsInvalidGrid(t *testing.T) {
	_, err := New(model.GridSpec{CountX: 0, CountY: 4, CellWidth: 10, CellHeight: 10})
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestPlaceValidation(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4), movable("a", rect(0, 0, 2, 2)))

	assert.ErrorIs(t, e.Place(movable("a", rect(3, 3, 1, 1))), ErrDuplicateItem)
	assert.ErrorIs(t, e.Place(movable("b", rect(1, 1, 1, 1))), ErrOverlap)
	assert.ErrorIs(t, e.Place(movable("c", rect(3, 3, 2, 1))), ErrOutOfBounds)
	assert.ErrorIs(t, e.Place(movable("d", rect(0, 3, 0, 1))), ErrInvalidSpan)

	require.NoError(t, e.Place(movable("e", rect(2, 0, 2, 1))))
	assert.Len(t, e.Items(), 2)
	assert.True(t, e.Occupied(3, 0))
	assert.NoError(t, e.Verify())
}

func TestRemove(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4),
		movable("a", rect(0, 0, 1, 1)),
		movable("b", rect(1, 0, 1, 1)),
		movable("c", rect(2, 0, 1, 1)),
	)

	require.NoError(t, e.Remove("b"))
	assert.False(t, e.Occupied(1, 0))
	_, ok := e.Item("b")
	assert.False(t, ok)

	c, ok := e.Item("c")
	require.True(t, ok, "index is rebuilt after removal")
	assert.Equal(t, rect(2, 0, 1, 1), c.Rect)

	assert.ErrorIs(t, e.Remove("b"), ErrUnknownItem)
	assert.NoError(t, e.Verify())
}

func TestResize(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4), movable("a", rect(3, 3, 1, 1)), movable("b", rect(0, 0, 1, 1)))

	assert.ErrorIs(t, e.Resize(3, 3), ErrOutOfBounds)
	assert.Equal(t, 4, e.Grid().CountX, "failed resize leaves the grid alone")

	require.NoError(t, e.Remove("a"))
	require.NoError(t, e.Resize(3, 2))
	assert.Equal(t, 3, e.Grid().CountX)
	assert.Equal(t, 2, e.Grid().CountY)
	assert.True(t, e.Occupied(0, 0))
	assert.NoError(t, e.Verify())

	assert.ErrorIs(t, e.Resize(0, 2), ErrInvalidGrid)
}

func TestVerifyDetectsDrift(t *testing.T) {
	e := newTestEngine(t, testGrid(3, 3), movable("a", rect(0, 0, 1, 1)))
	e.occ.MarkCells(2, 2, 1, 1, true)
	assert.ErrorIs(t, e.Verify(), ErrOverlap)
}

func TestLayoutRoundTrip(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4), movable("a", rect(0, 0, 2, 1)), pinned("p", rect(3, 3, 1, 1)))
	l := e.Layout("home")
	assert.Equal(t, "home", l.Name)
	assert.Len(t, l.Items, 2)

	e2, err := FromLayout(l)
	require.NoError(t, err)
	assert.Equal(t, e.Items(), e2.Items())

	l.Items = append(l.Items, movable("x", rect(0, 0, 1, 1)))
	_, err = FromLayout(l)
	assert.ErrorIs(t, err, ErrOverlap)
}

func TestRequestPlacementRejectsInvalidSpan(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4))

	tests := []struct {
		name string
		min  model.Span
		span model.Span
	}{
		{"zero span", model.Span{X: 1, Y: 1}, model.Span{X: 0, Y: 1}},
		{"negative min", model.Span{X: -1, Y: 1}, model.Span{X: 1, Y: 1}},
		{"min exceeds span", model.Span{X: 2, Y: 1}, model.Span{X: 1, Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.RequestPlacement(model.PlacementRequest{
				Point: cellCenter(0, 0), MinSpan: tt.min, Span: tt.span,
			})
			assert.ErrorIs(t, err, ErrInvalidSpan)
		})
	}
}

func TestRequestPlacementUnknownIgnore(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4))
	one := model.Span{X: 1, Y: 1}
	_, err := e.RequestPlacement(model.PlacementRequest{Point: cellCenter(0, 0), MinSpan: one, Span: one, Ignore: "nope"})
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestRequestPlacementPushesNeighbours(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4),
		movable("a", rect(0, 0, 1, 1)),
		movable("b", rect(1, 0, 1, 1)),
	)
	one := model.Span{X: 1, Y: 1}

	d, err := e.RequestPlacement(model.PlacementRequest{
		Point: cellCenter(0, 0), MinSpan: one, Span: one,
		Direction: dirPtr(1, 0), Mode: model.ModeCommit,
		Item: &model.Item{ID: "new", Label: "New", Reorderable: true},
	})
	require.NoError(t, err)
	require.True(t, d.Accepted)
	assert.True(t, d.Committed)
	assert.True(t, d.Shuffled)
	assert.Equal(t, "new", d.ItemID)
	assert.Equal(t, rect(0, 0, 1, 1), d.Rect)
	assert.Equal(t, []model.Displacement{
		{ID: "a", From: rect(0, 0, 1, 1), To: rect(1, 0, 1, 1)},
		{ID: "b", From: rect(1, 0, 1, 1), To: rect(2, 0, 1, 1)},
	}, d.Displaced)

	a, _ := e.Item("a")
	b, _ := e.Item("b")
	assert.Equal(t, rect(1, 0, 1, 1), a.Rect)
	assert.Equal(t, rect(2, 0, 1, 1), b.Rect)
	assert.False(t, a.Rect.Intersects(b.Rect))

	placed, ok := e.Item("new")
	require.True(t, ok)
	assert.Equal(t, d.Rect, placed.Rect)
	assert.Equal(t, "New", placed.Label)
	assert.NoError(t, e.Verify())
}

func TestRequestPlacementMovesIgnoredItem(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4),
		movable("a", rect(0, 0, 1, 1)),
		movable("b", rect(1, 0, 1, 1)),
	)
	one := model.Span{X: 1, Y: 1}

	d, err := e.RequestPlacement(model.PlacementRequest{
		Point: cellCenter(1, 0), MinSpan: one, Span: one,
		Direction: dirPtr(-1, 0), Ignore: "a", Mode: model.ModeCommit,
	})
	require.NoError(t, err)
	require.True(t, d.Accepted)
	assert.Equal(t, rect(1, 0, 1, 1), d.Rect)
	assert.Equal(t, []model.Displacement{{ID: "b", From: rect(1, 0, 1, 1), To: rect(0, 0, 1, 1)}}, d.Displaced)

	a, _ := e.Item("a")
	b, _ := e.Item("b")
	assert.Equal(t, rect(1, 0, 1, 1), a.Rect)
	assert.Equal(t, rect(0, 0, 1, 1), b.Rect)
	assert.NoError(t, e.Verify())
}

func TestRequestPlacementPrefersLargerNoShuffle(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 2),
		movable("q", rect(0, 0, 1, 2)),
		pinned("p", rect(1, 0, 1, 2)),
	)

	d, err := e.RequestPlacement(model.PlacementRequest{
		Point:     model.Point{X: 100, Y: 100},
		MinSpan:   model.Span{X: 1, Y: 1},
		Span:      model.Span{X: 2, Y: 2},
		Direction: dirPtr(1, 0),
	})
	require.NoError(t, err)
	require.True(t, d.Accepted)
	assert.False(t, d.Shuffled)
	assert.Equal(t, rect(2, 0, 2, 2), d.Rect)
	assert.Empty(t, d.Displaced)
	assert.False(t, d.Committed)
}

func TestRequestPlacementTakesLargestWorkingSpan(t *testing.T) {
	e := newTestEngine(t, testGrid(3, 3), pinned("p", rect(2, 0, 1, 1)))

	d, err := e.RequestPlacement(model.PlacementRequest{
		Point:     cellCenter(1, 1),
		MinSpan:   model.Span{X: 1, Y: 1},
		Span:      model.Span{X: 3, Y: 3},
		Direction: dirPtr(1, 0),
	})
	require.NoError(t, err)
	require.True(t, d.Accepted)
	assert.Equal(t, model.Span{X: 2, Y: 3}, d.Rect.Span())
}

func TestRequestPlacementBlockedLeavesGridUntouched(t *testing.T) {
	e := newTestEngine(t, testGrid(2, 1),
		pinned("p", rect(0, 0, 1, 1)),
		movable("q", rect(1, 0, 1, 1)),
	)
	itemsBefore := e.Items()
	occBefore := e.occ.Clone()
	one := model.Span{X: 1, Y: 1}

	d, err := e.RequestPlacement(model.PlacementRequest{
		Point: cellCenter(0, 0), MinSpan: one, Span: one,
		Direction: dirPtr(1, 0), Mode: model.ModeCommit,
	})
	require.NoError(t, err)
	assert.False(t, d.Accepted)
	assert.False(t, d.Committed)
	assert.Equal(t, model.ReasonBlocked, d.Reason)
	assert.Empty(t, d.Displaced)

	assert.Equal(t, itemsBefore, e.Items())
	assert.True(t, occBefore.Equal(e.occ))
}

func TestRequestPlacementNoVacancy(t *testing.T) {
	t.Run("span larger than grid", func(t *testing.T) {
		e := newTestEngine(t, testGrid(2, 2))
		big := model.Span{X: 3, Y: 3}
		d, err := e.RequestPlacement(model.PlacementRequest{Point: cellCenter(0, 0), MinSpan: big, Span: big})
		require.NoError(t, err)
		assert.False(t, d.Accepted)
		assert.Equal(t, model.ReasonNoVacancy, d.Reason)
	})

	t.Run("full grid of movable items", func(t *testing.T) {
		e := newTestEngine(t, testGrid(1, 1), movable("a", rect(0, 0, 1, 1)))
		one := model.Span{X: 1, Y: 1}
		d, err := e.RequestPlacement(model.PlacementRequest{Point: cellCenter(0, 0), MinSpan: one, Span: one, Mode: model.ModeCommit})
		require.NoError(t, err)
		assert.False(t, d.Accepted)
		assert.Equal(t, model.ReasonNoVacancy, d.Reason)
		a, _ := e.Item("a")
		assert.Equal(t, rect(0, 0, 1, 1), a.Rect)
	})
}

func TestRequestPlacementIsIdempotent(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4),
		movable("a", rect(0, 0, 1, 1)),
		movable("b", rect(1, 0, 1, 1)),
	)
	req := model.PlacementRequest{
		Point:   cellCenter(0, 0),
		MinSpan: model.Span{X: 1, Y: 1},
		Span:    model.Span{X: 1, Y: 1},
	}

	first, err := e.RequestPlacement(req)
	require.NoError(t, err)
	second, err := e.RequestPlacement(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	a, _ := e.Item("a")
	assert.Equal(t, rect(0, 0, 1, 1), a.Rect, "preview does not move anything")
}

func TestCommitReusesPreviewDirection(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4), movable("a", rect(0, 0, 2, 1)))
	req := model.PlacementRequest{
		Point:   cellCenter(1, 0),
		MinSpan: model.Span{X: 1, Y: 1},
		Span:    model.Span{X: 1, Y: 1},
	}

	preview, err := e.RequestPlacement(req)
	require.NoError(t, err)
	require.NotNil(t, e.lastDirection)
	assert.Equal(t, model.Direction{X: -1}, *e.lastDirection)

	req.Mode = model.ModeCommit
	committed, err := e.RequestPlacement(req)
	require.NoError(t, err)
	assert.Nil(t, e.lastDirection, "commit consumes the remembered direction")

	assert.Equal(t, preview.Rect, committed.Rect)
	assert.Equal(t, preview.Displaced, committed.Displaced)
	a, _ := e.Item("a")
	assert.Equal(t, rect(2, 0, 2, 1), a.Rect)
}

func TestCommitKeepsGridConsistent(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4),
		movable("a", rect(0, 0, 2, 1)),
		movable("b", rect(2, 2, 1, 2)),
		pinned("p", rect(3, 0, 1, 1)),
	)
	one := model.Span{X: 1, Y: 1}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			d, err := e.RequestPlacement(model.PlacementRequest{
				Point: cellCenter(x, y), MinSpan: one, Span: one, Mode: model.ModeCommit,
			})
			require.NoError(t, err)
			if !d.Accepted {
				continue
			}
			require.NotEmpty(t, d.ItemID, "cell %d,%d", x, y)
			placed, ok := e.Item(d.ItemID)
			require.True(t, ok)
			assert.Equal(t, d.Rect, placed.Rect)
			require.NoError(t, e.Verify(), "cell %d,%d", x, y)

			g := e.Grid()
			for _, it := range e.Items() {
				assert.True(t, g.InBounds(it.Rect))
			}
		}
	}

	p, _ := e.Item("p")
	assert.Equal(t, rect(3, 0, 1, 1), p.Rect, "pinned item never moves")
}

func TestArrange(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4))

	small := movable("small", rect(0, 0, 1, 1))
	square := movable("square", rect(0, 0, 2, 2))
	bar := movable("bar", rect(0, 0, 4, 1))
	wide := movable("wide", rect(0, 0, 5, 1))

	res := e.Arrange([]model.Item{small, square, bar, wide})
	require.Len(t, res.Placed, 3)
	require.Len(t, res.Unplaced, 1)
	assert.Equal(t, "wide", res.Unplaced[0].ID)

	got := map[string]model.Rect{}
	for _, it := range res.Placed {
		got[it.ID] = it.Rect
	}
	assert.Equal(t, rect(0, 0, 2, 2), got["square"])
	assert.Equal(t, rect(0, 2, 4, 1), got["bar"])
	assert.Equal(t, rect(2, 0, 1, 1), got["small"])
	assert.NoError(t, e.Verify())
}

func TestRequestPlacementPushCarriesItemBetweenMembers(t *testing.T) {
	// x sits below c and d, between a and b, so no row edge of the cluster
	// touches it until a is shifted into it.
	items := []model.Item{
		movable("a", rect(0, 0, 1, 2)),
		movable("c", rect(1, 0, 1, 1)),
		movable("d", rect(2, 0, 1, 1)),
		movable("b", rect(3, 0, 1, 2)),
		movable("x", rect(2, 1, 1, 1)),
	}
	e := newTestEngine(t, testGrid(6, 2), items...)
	req := model.PlacementRequest{
		Point:   model.Point{X: 100, Y: 50},
		MinSpan: model.Span{X: 2, Y: 1}, Span: model.Span{X: 2, Y: 1},
		Direction: dirPtr(1, 0),
	}

	preview, err := e.RequestPlacement(req)
	require.NoError(t, err)
	require.True(t, preview.Accepted)
	assert.Equal(t, rect(0, 0, 2, 1), preview.Rect)
	assertNoOverlap(t, e.Grid(), previewRects(e.Items(), req, preview))

	req.Mode = model.ModeCommit
	var d model.Decision
	require.NotPanics(t, func() { d, err = e.RequestPlacement(req) })
	require.NoError(t, err)
	assert.Equal(t, preview.Rect, d.Rect)
	assert.Equal(t, preview.Displaced, d.Displaced)

	want := map[string]model.Rect{
		"a": rect(2, 0, 1, 2),
		"c": rect(3, 0, 1, 1),
		"d": rect(4, 0, 1, 1),
		"b": rect(5, 0, 1, 2),
		"x": rect(3, 1, 1, 1),
	}
	for id, r := range want {
		it, _ := e.Item(id)
		assert.Equal(t, r, it.Rect, id)
	}
	assert.NoError(t, e.Verify())
}

func TestRequestPlacementPushBlockedByPinnedItemBetweenMembers(t *testing.T) {
	e := newTestEngine(t, testGrid(6, 2),
		movable("a", rect(0, 0, 1, 2)),
		movable("c", rect(1, 0, 1, 1)),
		movable("d", rect(2, 0, 1, 1)),
		movable("b", rect(3, 0, 1, 2)),
		pinned("x", rect(2, 1, 1, 1)),
	)
	req := model.PlacementRequest{
		Point:   model.Point{X: 100, Y: 50},
		MinSpan: model.Span{X: 2, Y: 1}, Span: model.Span{X: 2, Y: 1},
		Direction: dirPtr(1, 0), Mode: model.ModeCommit,
	}

	var d model.Decision
	var err error
	require.NotPanics(t, func() { d, err = e.RequestPlacement(req) })
	require.NoError(t, err)
	require.True(t, d.Accepted)
	for _, m := range d.Displaced {
		assert.NotEqual(t, "x", m.ID)
	}
	x, _ := e.Item("x")
	assert.Equal(t, rect(2, 1, 1, 1), x.Rect)
	assert.NoError(t, e.Verify())
}

func TestCommitReservesAcceptedRect(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4), movable("a", rect(0, 0, 1, 1)))
	one := model.Span{X: 1, Y: 1}
	req := model.PlacementRequest{Point: cellCenter(0, 0), MinSpan: one, Span: one, Mode: model.ModeCommit}

	first, err := e.RequestPlacement(req)
	require.NoError(t, err)
	require.True(t, first.Accepted)
	require.NotEmpty(t, first.ItemID)
	assert.True(t, e.Occupied(first.Rect.CellX, first.Rect.CellY))

	second, err := e.RequestPlacement(req)
	require.NoError(t, err)
	require.True(t, second.Accepted)
	require.NotEmpty(t, second.ItemID)
	assert.NotEqual(t, first.ItemID, second.ItemID)

	assert.Len(t, e.Items(), 3)
	placed, ok := e.Item(second.ItemID)
	require.True(t, ok)
	assert.Equal(t, second.Rect, placed.Rect)
	_, ok = e.Item(first.ItemID)
	assert.True(t, ok)
	assert.NoError(t, e.Verify())
}

func TestCommitPlacesRequestItem(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4), movable("a", rect(0, 0, 1, 1)))
	two := model.Span{X: 2, Y: 1}
	req := model.PlacementRequest{
		Point: cellCenter(2, 2), MinSpan: two, Span: two, Mode: model.ModeCommit,
		Item: &model.Item{ID: "clock", Label: "Clock", Rect: rect(0, 0, 1, 1)},
	}

	d, err := e.RequestPlacement(req)
	require.NoError(t, err)
	require.True(t, d.Accepted)
	assert.Equal(t, "clock", d.ItemID)

	clock, ok := e.Item("clock")
	require.True(t, ok)
	assert.Equal(t, d.Rect, clock.Rect, "the request rect is replaced")
	assert.False(t, clock.Reorderable)

	_, err = e.RequestPlacement(req)
	assert.ErrorIs(t, err, ErrDuplicateItem)
	assert.Len(t, e.Items(), 2)
}

func TestPreviewLeavesRequestItemOut(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4))
	one := model.Span{X: 1, Y: 1}
	d, err := e.RequestPlacement(model.PlacementRequest{
		Point: cellCenter(1, 1), MinSpan: one, Span: one,
		Item: &model.Item{ID: "n", Reorderable: true},
	})
	require.NoError(t, err)
	assert.True(t, d.Accepted)
	assert.Empty(t, d.ItemID)
	assert.Empty(t, e.Items())
}

func TestRequestPlacementRejectsInvalidDirection(t *testing.T) {
	e := newTestEngine(t, testGrid(4, 4), movable("a", rect(0, 0, 1, 1)))
	one := model.Span{X: 1, Y: 1}

	for _, dir := range []model.Direction{{X: 2}, {Y: -2}, {X: 1, Y: 5}} {
		_, err := e.RequestPlacement(model.PlacementRequest{
			Point: cellCenter(0, 0), MinSpan: one, Span: one,
			Direction: &dir, Mode: model.ModeCommit,
		})
		assert.ErrorIs(t, err, ErrInvalidDirection, "%s", dir)
	}
	assert.Len(t, e.Items(), 1)
	assert.Nil(t, e.LastDirection())
}

func TestWithLastDirection(t *testing.T) {
	one := model.Span{X: 1, Y: 1}
	build := func(opts ...Option) *Engine {
		e, err := New(testGrid(4, 1), opts...)
		require.NoError(t, err)
		require.NoError(t, e.Place(movable("a", rect(1, 0, 1, 1))))
		return e
	}
	req := model.PlacementRequest{Point: cellCenter(1, 0), MinSpan: one, Span: one, Mode: model.ModeCommit}

	// Without memory the drop point sits on the cell centre and a is pushed right.
	e := build()
	_, err := e.RequestPlacement(req)
	require.NoError(t, err)
	a, _ := e.Item("a")
	assert.Equal(t, rect(2, 0, 1, 1), a.Rect)

	e = build(WithLastDirection(dirPtr(-1, 0)))
	require.NotNil(t, e.LastDirection())
	assert.Equal(t, model.Direction{X: -1}, *e.LastDirection())
	_, err = e.RequestPlacement(req)
	require.NoError(t, err)
	a, _ = e.Item("a")
	assert.Equal(t, rect(0, 0, 1, 1), a.Rect)
	assert.Nil(t, e.LastDirection())

	assert.Nil(t, build(WithLastDirection(dirPtr(3, 0))).LastDirection())
	assert.Nil(t, build(WithLastDirection(nil)).LastDirection())
}
