package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Rect is an item's position and size on the grid, in cells.
// CellX/CellY address the top-left cell; SpanX/SpanY are at least 1 once committed.
type Rect struct {
	CellX int `json:"cell_x"`
	CellY int `json:"cell_y"`
	SpanX int `json:"span_x"`
	SpanY int `json:"span_y"`
}

// NewRect builds a rect from a position and a span.
func NewRect(x, y int, span Span) Rect {
	return Rect{CellX: x, CellY: y, SpanX: span.X, SpanY: span.Y}
}

// Right returns the exclusive right edge (CellX + SpanX).
func (r Rect) Right() int { return r.CellX + r.SpanX }

// Bottom returns the exclusive bottom edge (CellY + SpanY).
func (r Rect) Bottom() int { return r.CellY + r.SpanY }

// Span returns the rect's size.
func (r Rect) Span() Span { return Span{X: r.SpanX, Y: r.SpanY} }

// Area returns SpanX * SpanY.
func (r Rect) Area() int { return r.SpanX * r.SpanY }

// Empty reports whether the rect covers no cells.
func (r Rect) Empty() bool { return r.SpanX <= 0 || r.SpanY <= 0 }

// Intersects reports whether two rects share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	return r.CellX < o.Right() && o.CellX < r.Right() &&
		r.CellY < o.Bottom() && o.CellY < r.Bottom()
}

// Contains reports whether o lies entirely inside r. An empty r contains nothing.
func (r Rect) Contains(o Rect) bool {
	if r.Empty() {
		return false
	}
	return r.CellX <= o.CellX && r.CellY <= o.CellY &&
		r.Right() >= o.Right() && r.Bottom() >= o.Bottom()
}

// Union returns the smallest rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	left := min(r.CellX, o.CellX)
	top := min(r.CellY, o.CellY)
	right := max(r.Right(), o.Right())
	bottom := max(r.Bottom(), o.Bottom())
	return Rect{CellX: left, CellY: top, SpanX: right - left, SpanY: bottom - top}
}

// Offset returns r moved by dx, dy cells.
func (r Rect) Offset(dx, dy int) Rect {
	r.CellX += dx
	r.CellY += dy
	return r
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.CellX, r.CellY, r.SpanX, r.SpanY)
}

// Span is a width/height pair in cells.
type Span struct {
	X int `json:"x" toml:"x"`
	Y int `json:"y" toml:"y"`
}

// Valid reports whether both sides are positive.
func (s Span) Valid() bool { return s.X > 0 && s.Y > 0 }

// Area returns X * Y.
func (s Span) Area() int { return s.X * s.Y }

func (s Span) String() string { return fmt.Sprintf("%dx%d", s.X, s.Y) }

// Point is a pixel coordinate on the host surface.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Direction is a push hint with each component in {-1, 0, 1}.
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// IsZero reports whether both components are zero.
func (d Direction) IsZero() bool { return d.X == 0 && d.Y == 0 }

// Valid reports whether both components are -1, 0 or 1.
func (d Direction) Valid() bool {
	return d.X >= -1 && d.X <= 1 && d.Y >= -1 && d.Y <= 1
}

// Diagonal reports whether both components are non-zero.
func (d Direction) Diagonal() bool { return d.X != 0 && d.Y != 0 }

// Negate returns the opposite direction.
func (d Direction) Negate() Direction { return Direction{X: -d.X, Y: -d.Y} }

// Swap exchanges the components, turning a horizontal hint vertical and vice versa.
func (d Direction) Swap() Direction { return Direction{X: d.Y, Y: d.X} }

func (d Direction) String() string { return fmt.Sprintf("(%d,%d)", d.X, d.Y) }

// Item is a rectangle placed on the grid.
type Item struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Rect        Rect   `json:"rect"`
	Reorderable bool   `json:"reorderable"` // false pins the item; no solution may move it
}

// NewItem creates a reorderable item with a fresh short id.
func NewItem(label string, r Rect) Item {
	return Item{
		ID:          uuid.New().String()[:8],
		Label:       label,
		Rect:        r,
		Reorderable: true,
	}
}

// GridSpec describes the grid: cell counts and the pixel geometry used to map
// host points onto cells.
type GridSpec struct {
	CountX     int     `json:"count_x" toml:"count_x"`
	CountY     int     `json:"count_y" toml:"count_y"`
	CellWidth  float64 `json:"cell_width" toml:"cell_width"`   // px
	CellHeight float64 `json:"cell_height" toml:"cell_height"` // px
	WidthGap   float64 `json:"width_gap" toml:"width_gap"`     // px between columns
	HeightGap  float64 `json:"height_gap" toml:"height_gap"`   // px between rows
}

// DefaultGridSpec returns a 4x5 grid of 100px cells without gaps.
func DefaultGridSpec() GridSpec {
	return GridSpec{
		CountX:     4,
		CountY:     5,
		CellWidth:  100,
		CellHeight: 100,
	}
}

// Valid reports whether the grid has at least one cell and positive cell sizes.
func (g GridSpec) Valid() bool {
	return g.CountX > 0 && g.CountY > 0 && g.CellWidth > 0 && g.CellHeight > 0 &&
		g.WidthGap >= 0 && g.HeightGap >= 0
}

// InBounds reports whether r lies inside [0,CountX) x [0,CountY).
func (g GridSpec) InBounds(r Rect) bool {
	return r.CellX >= 0 && r.CellY >= 0 && r.Right() <= g.CountX && r.Bottom() <= g.CountY
}

// CellToCenterPoint returns the pixel centre of cell (x, y).
func (g GridSpec) CellToCenterPoint(x, y int) Point {
	return Point{
		X: float64(x)*(g.CellWidth+g.WidthGap) + g.CellWidth/2,
		Y: float64(y)*(g.CellHeight+g.HeightGap) + g.CellHeight/2,
	}
}

// RegionCenter returns the pixel centre of the region covered by r.
func (g GridSpec) RegionCenter(r Rect) Point {
	left := float64(r.CellX) * (g.CellWidth + g.WidthGap)
	top := float64(r.CellY) * (g.CellHeight + g.HeightGap)
	w := float64(r.SpanX)*g.CellWidth + float64(r.SpanX-1)*g.WidthGap
	h := float64(r.SpanY)*g.CellHeight + float64(r.SpanY-1)*g.HeightGap
	return Point{X: left + w/2, Y: top + h/2}
}

// PixelWidth returns the total width of the grid in pixels.
func (g GridSpec) PixelWidth() float64 {
	return float64(g.CountX)*g.CellWidth + float64(g.CountX-1)*g.WidthGap
}

// PixelHeight returns the total height of the grid in pixels.
func (g GridSpec) PixelHeight() float64 {
	return float64(g.CountY)*g.CellHeight + float64(g.CountY-1)*g.HeightGap
}

// Mode selects whether a placement is only reported or applied.
type Mode int

const (
	ModePreview Mode = iota // Report the decision, leave the grid untouched
	ModeCommit              // Apply the decision to the authoritative item set
)

func (m Mode) String() string {
	switch m {
	case ModeCommit:
		return "commit"
	default:
		return "preview"
	}
}

// Reason explains a rejected placement.
type Reason int

const (
	ReasonNone      Reason = iota
	ReasonNoVacancy        // No rectangle of at least the minimum span exists, even with displacement
	ReasonBlocked          // The only displacement would move a pinned item
)

func (r Reason) String() string {
	switch r {
	case ReasonNoVacancy:
		return "no vacancy"
	case ReasonBlocked:
		return "blocked by pinned item"
	default:
		return "none"
	}
}

// PlacementRequest asks the engine to place a rectangle near Point.
type PlacementRequest struct {
	Point     Point      `json:"point"`               // Pixel centre of the incoming item
	MinSpan   Span       `json:"min_span"`            // Smallest acceptable span
	Span      Span       `json:"span"`                // Requested span
	Direction *Direction `json:"direction,omitempty"` // Push hint; derived when nil
	Ignore    string     `json:"ignore,omitempty"`    // Item being moved, excluded from conflicts
	Mode      Mode       `json:"mode"`

	// Item is placed at the accepted rectangle when a request without Ignore
	// is committed. Its Rect is overwritten. When nil a reorderable item with
	// a fresh id is created.
	Item *Item `json:"item,omitempty"`
}

// Displacement records one item moved by a solution.
type Displacement struct {
	ID   string `json:"id"`
	From Rect   `json:"from"`
	To   Rect   `json:"to"`
}

// Decision is the engine's answer to a PlacementRequest.
type Decision struct {
	Accepted  bool           `json:"accepted"`
	Rect      Rect           `json:"rect"`
	Displaced []Displacement `json:"displaced"`
	Shuffled  bool           `json:"shuffled"` // true when the push/shrink solution won over no-shuffle
	Reason    Reason         `json:"reason"`
	Committed bool           `json:"committed"`
	ItemID    string         `json:"item_id,omitempty"` // item now at Rect, set on commit
}

// Layout ties a grid and its items together for save/load.
type Layout struct {
	Name  string   `json:"name"`
	Grid  GridSpec `json:"grid"`
	Items []Item   `json:"items"`
}

// NewLayout returns an empty layout over the given grid.
func NewLayout(name string, grid GridSpec) Layout {
	return Layout{
		Name:  name,
		Grid:  grid,
		Items: []Item{},
	}
}

// UsedCells returns the number of cells covered by items.
func (l Layout) UsedCells() int {
	var total int
	for _, it := range l.Items {
		total += it.Rect.Area()
	}
	return total
}

// TotalCells returns the number of cells in the grid.
func (l Layout) TotalCells() int {
	return l.Grid.CountX * l.Grid.CountY
}

// Utilization returns the covered percentage of the grid.
func (l Layout) Utilization() float64 {
	total := l.TotalCells()
	if total == 0 {
		return 0
	}
	return float64(l.UsedCells()) / float64(total) * 100.0
}

// FindItem returns the item with the given id.
func (l Layout) FindItem(id string) (Item, bool) {
	for _, it := range l.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
