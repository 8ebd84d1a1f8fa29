package engine

import (
	"math"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// noArea is returned by the nearest-area searches when no candidate qualifies.
var noArea = model.Rect{CellX: -1, CellY: -1, SpanX: -1, SpanY: -1}

// anchorTopLeft converts the pixel centre of an item spanning span into the
// pixel centre of its top-left cell, which is what candidates are scored against.
func anchorTopLeft(grid model.GridSpec, center model.Point, span model.Span) model.Point {
	return model.Point{
		X: center.X - (grid.CellWidth+grid.WidthGap)*float64(span.X-1)/2,
		Y: center.Y - (grid.CellHeight+grid.HeightGap)*float64(span.Y-1)/2,
	}
}

// findNearestArea returns the rectangle whose top-left cell centre is closest to
// target, a point already anchored with anchorTopLeft.
//
// When vacant is false occupancy is not consulted and every candidate has the
// requested span. When vacant is true a candidate is rejected if its minSpan
// region overlaps an occupied cell; accepted candidates grow one cell at a
// time, alternating horizontal and vertical, until they reach span or hit a
// boundary or an occupied cell.
//
// A candidate that contains the current best replaces it regardless of
// distance, and a candidate contained in an earlier candidate never wins on
// distance. Otherwise the strictly closest candidate wins, so ties go to the
// first one found in row-major order.
func findNearestArea(grid model.GridSpec, occ *Occupancy, target model.Point, minSpan, span model.Span, vacant bool) (model.Rect, bool) {
	if !minSpan.Valid() || !span.Valid() || span.X < minSpan.X || span.Y < minSpan.Y {
		return noArea, false
	}

	fit := span
	if vacant {
		fit = minSpan
	}

	best := noArea
	bestDistance := math.MaxFloat64
	found := false
	var regions []model.Rect

	for y := 0; y < grid.CountY-(fit.Y-1); y++ {
		for x := 0; x < grid.CountX-(fit.X-1); x++ {
			size := span
			if vacant {
				if !occ.IsVacant(x, y, minSpan.X, minSpan.Y) {
					continue
				}
				size = growVacant(occ, x, y, minSpan, span)
			}

			current := model.Rect{CellX: x, CellY: y, SpanX: size.X, SpanY: size.Y}
			contained := false
			for _, r := range regions {
				if r.Contains(current) {
					contained = true
					break
				}
			}
			regions = append(regions, current)

			center := grid.CellToCenterPoint(x, y)
			distance := math.Hypot(center.X-target.X, center.Y-target.Y)

			if (distance < bestDistance && !contained) || (found && current.Contains(best)) {
				bestDistance = distance
				best = current
				found = true
			}
		}
	}

	return best, found
}

// growVacant widens a free minSpan region at (x, y) toward span, alternating
// between the x and y axes, and returns the largest span reached.
func growVacant(occ *Occupancy, x, y int, minSpan, span model.Span) model.Span {
	size := minSpan
	incX := true
	hitMaxX := size.X >= span.X
	hitMaxY := size.Y >= span.Y

	for !(hitMaxX && hitMaxY) {
		if incX && !hitMaxX {
			for j := 0; j < size.Y; j++ {
				if occ.IsOccupied(x+size.X, y+j) {
					hitMaxX = true
				}
			}
			if !hitMaxX {
				size.X++
			}
		} else if !hitMaxY {
			for i := 0; i < size.X; i++ {
				if occ.IsOccupied(x+i, y+size.Y) {
					hitMaxY = true
				}
			}
			if !hitMaxY {
				size.Y++
			}
		}
		hitMaxX = hitMaxX || size.X >= span.X
		hitMaxY = hitMaxY || size.Y >= span.Y
		incX = !incX
	}
	return size
}

// findNearestAreaInDirection returns the free top-left cell nearest (cellX, cellY)
// for a region of the given span, scored in grid units. Equal distances are
// broken in favour of the candidate whose offset best matches dir.
//
// A cell blocks a candidate only if it is occupied in occ and, when block is
// non-nil, the corresponding cell of the block mask is set. The mask lets a
// group of interlocking items move together without its own gaps blocking it.
func findNearestAreaInDirection(grid model.GridSpec, cellX, cellY int, span model.Span, dir model.Direction, occ, block *Occupancy) (int, int, bool) {
	bestX, bestY := -1, -1
	bestDistance := math.MaxFloat64
	bestScore := math.MinInt

	for y := 0; y < grid.CountY-(span.Y-1); y++ {
	candidates:
		for x := 0; x < grid.CountX-(span.X-1); x++ {
			for i := 0; i < span.X; i++ {
				for j := 0; j < span.Y; j++ {
					if occ.IsOccupied(x+i, y+j) && (block == nil || block.IsOccupied(i, j)) {
						continue candidates
					}
				}
			}

			distance := math.Hypot(float64(x-cellX), float64(y-cellY))
			offset := directionOf(float64(x-cellX), float64(y-cellY))
			score := dir.X*offset.X + dir.Y*offset.Y

			if distance < bestDistance || (distance == bestDistance && score > bestScore) {
				bestDistance = distance
				bestScore = score
				bestX, bestY = x, y
			}
		}
	}

	return bestX, bestY, bestX >= 0
}

// directionOf snaps an offset to one of the eight compass directions (or zero).
// An axis contributes when the offset's angle is within 60 degrees of it.
func directionOf(dx, dy float64) model.Direction {
	var d model.Direction
	if dx == 0 && dy == 0 {
		return d
	}
	angle := math.Atan2(dy, dx)
	if math.Abs(math.Cos(angle)) > 0.5 {
		d.X = sign(dx)
	}
	if math.Abs(math.Sin(angle)) > 0.5 {
		d.Y = sign(dy)
	}
	return d
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
