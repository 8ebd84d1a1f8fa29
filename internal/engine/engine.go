package engine

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// Engine owns the authoritative set of items on one grid and answers placement
// requests against it. All methods are safe for concurrent use; requests are
// serialized so each search sees one consistent snapshot.
type Engine struct {
	mu     sync.Mutex
	grid   model.GridSpec
	items  []model.Item
	index  map[string]int
	occ    *Occupancy
	logger *log.Logger

	// lastDirection is the direction derived by the most recent preview without
	// a hint. A commit without a hint reuses it so it lands where it was previewed.
	lastDirection *model.Direction
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLastDirection seeds the direction remembered from an earlier preview,
// for hosts that rebuild the engine between a preview and its commit.
func WithLastDirection(d *model.Direction) Option {
	return func(e *Engine) {
		if d != nil && d.Valid() {
			dir := *d
			e.lastDirection = &dir
		}
	}
}

// New creates an empty engine for grid.
func New(grid model.GridSpec, opts ...Option) (*Engine, error) {
	if !grid.Valid() {
		return nil, fmt.Errorf("new engine %dx%d: %w", grid.CountX, grid.CountY, ErrInvalidGrid)
	}
	e := &Engine{
		grid:   grid,
		index:  make(map[string]int),
		occ:    NewOccupancy(grid.CountX, grid.CountY),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// FromLayout creates an engine holding every item of l.
func FromLayout(l model.Layout, opts ...Option) (*Engine, error) {
	e, err := New(l.Grid, opts...)
	if err != nil {
		return nil, err
	}
	for _, it := range l.Items {
		if err := e.Place(it); err != nil {
			return nil, fmt.Errorf("load layout %q: %w", l.Name, err)
		}
	}
	return e, nil
}

// Layout returns the current state as a layout document.
func (e *Engine) Layout(name string) model.Layout {
	l := model.NewLayout(name, e.Grid())
	l.Items = e.Items()
	return l
}

// Grid returns the grid geometry.
func (e *Engine) Grid() model.GridSpec {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid
}

// Items returns a copy of the placed items in placement order.
func (e *Engine) Items() []model.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Item, len(e.items))
	copy(out, e.items)
	return out
}

// Item returns the item with the given id.
func (e *Engine) Item(id string) (model.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.index[id]
	if !ok {
		return model.Item{}, false
	}
	return e.items[i], true
}

// LastDirection returns the direction remembered from the most recent
// preview without a hint, or nil.
func (e *Engine) LastDirection() *model.Direction {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastDirection == nil {
		return nil
	}
	d := *e.lastDirection
	return &d
}

// Occupied reports whether cell (x, y) is covered by an item.
func (e *Engine) Occupied(x, y int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.occ.IsOccupied(x, y)
}

// Place adds it to the grid at its rectangle.
func (e *Engine) Place(it model.Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkPlaceable(it); err != nil {
		return fmt.Errorf("place %s: %w", it.ID, err)
	}
	e.index[it.ID] = len(e.items)
	e.items = append(e.items, it)
	e.occ.MarkRect(it.Rect, true)
	e.logger.Debug("placed item", "id", it.ID, "rect", it.Rect)
	return nil
}

func (e *Engine) checkPlaceable(it model.Item) error {
	if !it.Rect.Span().Valid() {
		return ErrInvalidSpan
	}
	if _, dup := e.index[it.ID]; dup {
		return ErrDuplicateItem
	}
	if !e.grid.InBounds(it.Rect) {
		return ErrOutOfBounds
	}
	if !e.occ.IsVacant(it.Rect.CellX, it.Rect.CellY, it.Rect.SpanX, it.Rect.SpanY) {
		return ErrOverlap
	}
	return nil
}

// Remove takes the item with the given id off the grid.
func (e *Engine) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrUnknownItem)
	}
	e.occ.MarkRect(e.items[i].Rect, false)
	e.items = append(e.items[:i], e.items[i+1:]...)
	e.reindex()
	e.logger.Debug("removed item", "id", id)
	return nil
}

func (e *Engine) reindex() {
	e.index = make(map[string]int, len(e.items))
	for i, it := range e.items {
		e.index[it.ID] = i
	}
}

// Resize changes the cell counts of the grid. It fails with ErrOutOfBounds,
// leaving the engine unchanged, if any item would no longer fit.
func (e *Engine) Resize(countX, countY int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	grid := e.grid
	grid.CountX, grid.CountY = countX, countY
	if !grid.Valid() {
		return fmt.Errorf("resize to %dx%d: %w", countX, countY, ErrInvalidGrid)
	}
	for _, it := range e.items {
		if !grid.InBounds(it.Rect) {
			return fmt.Errorf("resize to %dx%d: item %s at %s: %w", countX, countY, it.ID, it.Rect, ErrOutOfBounds)
		}
	}

	e.grid = grid
	e.occ = NewOccupancy(countX, countY)
	for _, it := range e.items {
		e.occ.MarkRect(it.Rect, true)
	}
	e.lastDirection = nil
	e.logger.Info("resized grid", "cols", countX, "rows", countY)
	return nil
}

// Verify re-derives occupancy from the item rectangles and checks it against
// the engine's matrix. It reports the first item out of bounds or overlapping
// another, or a matrix that has drifted from the items.
func (e *Engine) Verify() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.verify()
}

func (e *Engine) verify() error {
	derived := NewOccupancy(e.grid.CountX, e.grid.CountY)
	for _, it := range e.items {
		if !e.grid.InBounds(it.Rect) {
			return fmt.Errorf("item %s at %s: %w", it.ID, it.Rect, ErrOutOfBounds)
		}
		if !derived.IsVacant(it.Rect.CellX, it.Rect.CellY, it.Rect.SpanX, it.Rect.SpanY) {
			return fmt.Errorf("item %s at %s: %w", it.ID, it.Rect, ErrOverlap)
		}
		derived.MarkRect(it.Rect, true)
	}
	if !derived.Equal(e.occ) {
		return fmt.Errorf("occupancy does not match item rectangles: %w", ErrOverlap)
	}
	return nil
}

// RequestPlacement looks for a place for a rectangle near req.Point, pushing
// or relocating other items and shrinking the request toward req.MinSpan as
// needed. A preview leaves the grid untouched. A commit applies the accepted
// decision: displaced items move, and either the ignored item moves to the
// accepted rectangle or req.Item is placed there. A rejected request is not
// an error: the decision carries the reason and the grid is unchanged.
func (e *Engine) RequestPlacement(req model.PlacementRequest) (model.Decision, error) {
	if !req.MinSpan.Valid() || !req.Span.Valid() || req.MinSpan.X > req.Span.X || req.MinSpan.Y > req.Span.Y {
		return model.Decision{}, fmt.Errorf("request span %s min %s: %w", req.Span, req.MinSpan, ErrInvalidSpan)
	}
	if req.Direction != nil && !req.Direction.Valid() {
		return model.Decision{}, fmt.Errorf("request direction %s: %w", *req.Direction, ErrInvalidDirection)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if req.Ignore != "" {
		if _, ok := e.index[req.Ignore]; !ok {
			return model.Decision{}, fmt.Errorf("request ignoring %s: %w", req.Ignore, ErrUnknownItem)
		}
	} else if req.Item != nil && req.Item.ID != "" {
		if _, dup := e.index[req.Item.ID]; dup {
			return model.Decision{}, fmt.Errorf("request placing %s: %w", req.Item.ID, ErrDuplicateItem)
		}
	}

	s := newSolver(e.grid, e.items, req.Ignore, e.occ, e.logger)
	dir := e.resolveDirection(s, req)

	swap := s.findReorderSolution(req.Point, req.MinSpan, req.Span, dir)
	noShuffle := s.findConfigurationNoShuffle(req.Point, req.MinSpan, req.Span)

	var chosen *ItemConfiguration
	shuffled := false
	switch {
	case swap.IsSolution && swap.Area() >= noShuffle.Area():
		chosen, shuffled = swap, true
	case noShuffle.IsSolution:
		chosen = noShuffle
	}

	if chosen == nil {
		reason := model.ReasonNoVacancy
		if swap.blocked {
			reason = model.ReasonBlocked
		}
		e.logger.Debug("placement rejected", "point", req.Point, "span", req.Span, "min", req.MinSpan, "reason", reason)
		return model.Decision{Reason: reason}, nil
	}

	before := make(map[string]model.Rect, len(e.items))
	for _, it := range e.items {
		before[it.ID] = it.Rect
	}
	d := model.Decision{
		Accepted:  true,
		Rect:      chosen.Result,
		Displaced: chosen.Changed(before, req.Ignore),
		Shuffled:  shuffled,
	}

	if req.Mode == model.ModeCommit {
		d.ItemID = e.commit(d, req)
		d.Committed = true
	}
	return d, nil
}

// resolveDirection picks the push hint for req. An explicit non-zero hint wins.
// Otherwise a commit reuses the direction remembered from the last preview,
// and a preview derives one from the drop position and remembers it.
func (e *Engine) resolveDirection(s *solver, req model.PlacementRequest) model.Direction {
	if req.Direction != nil && !req.Direction.IsZero() {
		if req.Mode == model.ModeCommit {
			e.lastDirection = nil
		}
		return *req.Direction
	}

	if req.Mode == model.ModeCommit && e.lastDirection != nil {
		dir := *e.lastDirection
		e.lastDirection = nil
		return dir
	}

	dir := s.directionForDrop(req.Point, req.Span)
	if req.Mode == model.ModePreview {
		e.lastDirection = &dir
	} else {
		e.lastDirection = nil
	}
	return dir
}

// commit writes an accepted decision into the authoritative state and returns
// the id of the item now at d.Rect. A solution that breaks the grid invariant
// is a bug in the search, so it panics.
func (e *Engine) commit(d model.Decision, req model.PlacementRequest) string {
	for _, mv := range d.Displaced {
		e.items[e.index[mv.ID]].Rect = mv.To
	}

	id := req.Ignore
	if id != "" {
		e.items[e.index[id]].Rect = d.Rect
	} else {
		it := model.NewItem("", d.Rect)
		if req.Item != nil {
			fresh := it.ID
			it = *req.Item
			it.Rect = d.Rect
			if it.ID == "" {
				it.ID = fresh
			}
		}
		id = it.ID
		e.index[id] = len(e.items)
		e.items = append(e.items, it)
	}

	e.occ.Clear()
	for _, it := range e.items {
		e.occ.MarkRect(it.Rect, true)
	}
	if err := e.verify(); err != nil {
		panic(fmt.Sprintf("gridshuffle: committed solution violates grid invariant: %v", err))
	}
	e.logger.Info("committed placement", "item", id, "rect", d.Rect, "displaced", len(d.Displaced), "shuffled", d.Shuffled)
	return id
}
