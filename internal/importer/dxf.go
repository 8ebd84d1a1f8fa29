package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// vertex is a 2D drawing coordinate in pixels, Y pointing up as in DXF.
type vertex struct {
	X, Y float64
}

// segment is a line between two vertices, used for chaining loose LINE
// entities into closed outlines.
type segment struct {
	start vertex
	end   vertex
}

// ImportDXF imports items from a DXF drawing. Each closed shape (an LWPOLYLINE
// or a chain of connected LINEs) becomes one item covering the cells under its
// bounding box, snapped to the grid's cell pitch. Drawing units are pixels and
// the drawing's Y axis points up from the grid's bottom edge.
func ImportDXF(path string, grid model.GridSpec) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines [][]vertex
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToOutline(e)
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: vertex{X: e.Start[0], Y: e.Start[1]},
				end:   vertex{X: e.End[0], Y: e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	outlines = append(outlines, chainSegments(segments, 0.01)...)
	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for i, outline := range outlines {
		r, ok := snapOutline(outline, grid)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape %d", i+1))
			continue
		}
		if !grid.InBounds(r) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped shape %d at %s: outside the %dx%d grid", i+1, r, grid.CountX, grid.CountY))
			continue
		}
		result.Items = append(result.Items, model.NewItem(fmt.Sprintf("DXF Item %d", len(result.Items)+1), r))
	}

	return result
}

// snapOutline converts an outline's bounding box to the nearest cell rectangle.
func snapOutline(outline []vertex, grid model.GridSpec) (model.Rect, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range outline {
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}
	if maxX-minX < 0.01 || maxY-minY < 0.01 {
		return model.Rect{}, false
	}

	pitchX := grid.CellWidth + grid.WidthGap
	pitchY := grid.CellHeight + grid.HeightGap
	top := grid.PixelHeight() - maxY

	r := model.Rect{
		CellX: int(math.Round(minX / pitchX)),
		CellY: int(math.Round(top / pitchY)),
		SpanX: max(1, int(math.Round((maxX-minX+grid.WidthGap)/pitchX))),
		SpanY: max(1, int(math.Round((maxY-minY+grid.HeightGap)/pitchY))),
	}
	return r, true
}

// lwPolylineToOutline converts a DXF LWPOLYLINE entity to a vertex list.
// Bulges are ignored; only the bounding box matters for cell snapping.
func lwPolylineToOutline(lw *entity.LwPolyline) []vertex {
	outline := make([]vertex, 0, len(lw.Vertices))
	for _, v := range lw.Vertices {
		outline = append(outline, vertex{X: v[0], Y: v[1]})
	}
	return outline
}

// chainSegments connects individual segments into closed outlines.
// tolerance is the maximum distance between endpoints to consider them connected.
// A chain stops growing as soon as it closes, so shapes sharing a corner stay apart.
func chainSegments(segs []segment, tolerance float64) [][]vertex {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines [][]vertex

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []vertex{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed && !isClosed(chain, tolerance) {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if isClosed(chain, tolerance) {
			// Remove the duplicate closing point
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}

	// Top-left first, matching the grid's row-major order
	sort.SliceStable(outlines, func(i, j int) bool {
		ai, aj := topLeft(outlines[i]), topLeft(outlines[j])
		if ai.Y != aj.Y {
			return ai.Y > aj.Y
		}
		return ai.X < aj.X
	})

	return outlines
}

func isClosed(chain []vertex, tolerance float64) bool {
	return len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance)
}

func topLeft(outline []vertex) vertex {
	tl := vertex{X: math.Inf(1), Y: math.Inf(-1)}
	for _, v := range outline {
		tl.X = math.Min(tl.X, v.X)
		tl.Y = math.Max(tl.Y, v.Y)
	}
	return tl
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b vertex, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}
