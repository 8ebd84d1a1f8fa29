package engine

import "github.com/piwi3910/GridShuffle/internal/model"

// Occupancy is a boolean matrix recording which grid cells are covered.
type Occupancy struct {
	countX, countY int
	cells          []bool // column-major: cells[x*countY+y]
}

// NewOccupancy allocates an empty countX x countY matrix.
func NewOccupancy(countX, countY int) *Occupancy {
	return &Occupancy{
		countX: countX,
		countY: countY,
		cells:  make([]bool, countX*countY),
	}
}

// CountX returns the number of columns.
func (o *Occupancy) CountX() int { return o.countX }

// CountY returns the number of rows.
func (o *Occupancy) CountY() int { return o.countY }

// MarkCells sets the occupied state of the given region. Parts of the region
// outside the matrix are ignored.
func (o *Occupancy) MarkCells(cellX, cellY, spanX, spanY int, occupied bool) {
	if cellX < 0 || cellY < 0 {
		return
	}
	for x := cellX; x < cellX+spanX && x < o.countX; x++ {
		for y := cellY; y < cellY+spanY && y < o.countY; y++ {
			o.cells[x*o.countY+y] = occupied
		}
	}
}

// MarkRect is MarkCells for a model.Rect.
func (o *Occupancy) MarkRect(r model.Rect, occupied bool) {
	o.MarkCells(r.CellX, r.CellY, r.SpanX, r.SpanY, occupied)
}

// IsOccupied reports whether cell (x, y) is covered. Cells outside the matrix
// count as occupied.
func (o *Occupancy) IsOccupied(x, y int) bool {
	if x < 0 || y < 0 || x >= o.countX || y >= o.countY {
		return true
	}
	return o.cells[x*o.countY+y]
}

// IsVacant reports whether every cell of the region is inside the matrix and free.
func (o *Occupancy) IsVacant(cellX, cellY, spanX, spanY int) bool {
	for x := cellX; x < cellX+spanX; x++ {
		for y := cellY; y < cellY+spanY; y++ {
			if o.IsOccupied(x, y) {
				return false
			}
		}
	}
	return true
}

// Clear frees every cell.
func (o *Occupancy) Clear() {
	for i := range o.cells {
		o.cells[i] = false
	}
}

// CopyTo overwrites dst with this matrix. Both must have the same dimensions.
func (o *Occupancy) CopyTo(dst *Occupancy) {
	copy(dst.cells, o.cells)
}

// Clone returns an independent copy.
func (o *Occupancy) Clone() *Occupancy {
	dst := NewOccupancy(o.countX, o.countY)
	o.CopyTo(dst)
	return dst
}

// Equal reports whether both matrices have the same shape and contents.
func (o *Occupancy) Equal(other *Occupancy) bool {
	if o.countX != other.countX || o.countY != other.countY {
		return false
	}
	for i := range o.cells {
		if o.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// FindFirstVacant scans row-major from the origin and returns the first top-left
// cell whose spanX x spanY region is entirely free.
func (o *Occupancy) FindFirstVacant(spanX, spanY int) (x, y int, ok bool) {
	for y := 0; y+spanY <= o.countY; y++ {
		for x := 0; x+spanX <= o.countX; x++ {
			if o.IsVacant(x, y, spanX, spanY) {
				return x, y, true
			}
		}
	}
	return -1, -1, false
}

// FreeCells returns the number of unoccupied cells.
func (o *Occupancy) FreeCells() int {
	n := 0
	for _, c := range o.cells {
		if !c {
			n++
		}
	}
	return n
}
