package importer

import (
	"path/filepath"
	"testing"

	"github.com/yofu/dxf"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// writeRectDXF draws each pixel rectangle {x, y, w, h} (Y up) as four LINEs.
func writeRectDXF(t *testing.T, rects ...[4]float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.dxf")

	d := dxf.NewDrawing()
	for _, r := range rects {
		x, y, w, h := r[0], r[1], r[2], r[3]
		d.Line(x, y, 0, x+w, y, 0)
		d.Line(x+w, y, 0, x+w, y+h, 0)
		d.Line(x+w, y+h, 0, x, y+h, 0)
		d.Line(x, y+h, 0, x, y, 0)
	}
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}
	return path
}

// ─── ImportDXF Tests ───────────────────────────────────────

func TestImportDXF_Rectangles(t *testing.T) {
	grid := model.DefaultGridSpec() // 4x5, 100px, 500px tall
	path := writeRectDXF(t,
		[4]float64{0, 0, 100, 200},     // cell (0,3) 1x2
		[4]float64{100, 400, 200, 100}, // cell (1,0) 2x1
	)

	result := ImportDXF(path, grid)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}

	// Top-left shape first
	if got := result.Items[0].Rect; got != (model.Rect{CellX: 1, CellY: 0, SpanX: 2, SpanY: 1}) {
		t.Errorf("first item: got %s", got)
	}
	if got := result.Items[1].Rect; got != (model.Rect{CellX: 0, CellY: 3, SpanX: 1, SpanY: 2}) {
		t.Errorf("second item: got %s", got)
	}
	if result.Items[0].Label != "DXF Item 1" {
		t.Errorf("unexpected label %q", result.Items[0].Label)
	}
}

func TestImportDXF_OutsideGrid(t *testing.T) {
	grid := model.DefaultGridSpec()
	path := writeRectDXF(t, [4]float64{400, 0, 100, 100})

	result := ImportDXF(path, grid)
	if len(result.Items) != 0 {
		t.Errorf("expected no items, got %d", len(result.Items))
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
}

func TestImportDXF_FileNotFound(t *testing.T) {
	result := ImportDXF(filepath.Join(t.TempDir(), "none.dxf"), model.DefaultGridSpec())
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── Outline Helper Tests ──────────────────────────────────

func TestChainSegments_SharedCorner(t *testing.T) {
	square := func(x, y float64) []segment {
		return []segment{
			{vertex{x, y}, vertex{x + 1, y}},
			{vertex{x + 1, y}, vertex{x + 1, y + 1}},
			{vertex{x + 1, y + 1}, vertex{x, y + 1}},
			{vertex{x, y + 1}, vertex{x, y}},
		}
	}
	segs := append(square(0, 0), square(1, 1)...)

	outlines := chainSegments(segs, 0.01)
	if len(outlines) != 2 {
		t.Fatalf("expected 2 outlines, got %d", len(outlines))
	}
	for i, o := range outlines {
		if len(o) != 4 {
			t.Errorf("outline %d: expected 4 vertices, got %d", i, len(o))
		}
	}
	// Higher square sorts first
	if tl := topLeft(outlines[0]); tl.X != 1 || tl.Y != 2 {
		t.Errorf("expected the upper square first, got top-left %+v", tl)
	}
}

func TestChainSegments_OpenChain(t *testing.T) {
	segs := []segment{
		{vertex{0, 0}, vertex{1, 0}},
		{vertex{1, 0}, vertex{1, 1}},
	}
	if outlines := chainSegments(segs, 0.01); len(outlines) != 0 {
		t.Errorf("expected no closed outlines, got %d", len(outlines))
	}
}

func TestSnapOutline_WithGaps(t *testing.T) {
	grid := model.GridSpec{CountX: 4, CountY: 4, CellWidth: 90, CellHeight: 90, WidthGap: 10, HeightGap: 10}
	// PixelHeight = 4*90 + 3*10 = 390. Cell (1,1) span 2x1 covers x 100..290, top 100..190.
	outline := []vertex{{100, 200}, {290, 200}, {290, 290}, {100, 290}}

	r, ok := snapOutline(outline, grid)
	if !ok {
		t.Fatal("expected a valid snap")
	}
	if r != (model.Rect{CellX: 1, CellY: 1, SpanX: 2, SpanY: 1}) {
		t.Errorf("got %s", r)
	}
}

func TestSnapOutline_Degenerate(t *testing.T) {
	if _, ok := snapOutline([]vertex{{0, 0}, {100, 0}, {50, 0}}, model.DefaultGridSpec()); ok {
		t.Error("expected a flat outline to be rejected")
	}
}
