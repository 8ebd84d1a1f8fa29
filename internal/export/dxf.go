package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// DXF layer names. Movable and pinned items are kept apart so a CAD user can
// toggle them independently.
const (
	layerItems  = "ITEMS"
	layerPinned = "PINNED"
)

// ExportDXF draws every item's cell rectangle as four LINE entities. Units are
// grid pixels with Y pointing up from the grid's bottom edge, matching what
// importer.ImportDXF reads back.
func ExportDXF(path string, l model.Layout) error {
	if len(l.Items) == 0 {
		return fmt.Errorf("no items to export")
	}

	d := dxf.NewDrawing()
	d.AddLayer(layerPinned, color.Red, dxf.DefaultLineType, false)
	d.AddLayer(layerItems, color.Green, dxf.DefaultLineType, true)

	for _, pinned := range []bool{false, true} {
		if pinned {
			if err := d.ChangeLayer(layerPinned); err != nil {
				return fmt.Errorf("select layer %s: %w", layerPinned, err)
			}
		}
		for _, it := range l.Items {
			if it.Reorderable == pinned {
				continue
			}
			x0, y0, x1, y1 := pixelBounds(l.Grid, it.Rect)
			d.Line(x0, y0, 0, x1, y0, 0)
			d.Line(x1, y0, 0, x1, y1, 0)
			d.Line(x1, y1, 0, x0, y1, 0)
			d.Line(x0, y1, 0, x0, y0, 0)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save DXF: %w", err)
	}
	return nil
}

// pixelBounds returns r's pixel box in drawing coordinates (Y up).
func pixelBounds(g model.GridSpec, r model.Rect) (x0, y0, x1, y1 float64) {
	x0 = float64(r.CellX) * (g.CellWidth + g.WidthGap)
	x1 = x0 + float64(r.SpanX)*g.CellWidth + float64(r.SpanX-1)*g.WidthGap
	top := float64(r.CellY) * (g.CellHeight + g.HeightGap)
	bottom := top + float64(r.SpanY)*g.CellHeight + float64(r.SpanY-1)*g.HeightGap
	h := g.PixelHeight()
	return x0, h - bottom, x1, h - top
}
