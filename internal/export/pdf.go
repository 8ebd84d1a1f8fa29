// Package export writes grid layouts to PDF, label sheets, spreadsheets and
// DXF drawings.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// itemColor represents an RGB color for a placed item.
type itemColor struct {
	R, G, B int
}

// itemColors is the palette cycled through for movable items.
var itemColors = []itemColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF generates a PDF document for a layout: a page with the grid
// diagram, followed by a summary page listing the items and, when given, the
// last placement decision.
func ExportPDF(path string, l model.Layout, decision *model.Decision) error {
	if !l.Grid.Valid() {
		return fmt.Errorf("invalid grid %dx%d", l.Grid.CountX, l.Grid.CountY)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderGridPage(pdf, l, decision)

	pdf.AddPage()
	renderSummaryPage(pdf, l, decision)

	return pdf.OutputFileAndClose(path)
}

// renderGridPage draws the grid, its items and the decision target.
func renderGridPage(pdf *fpdf.Fpdf, l model.Layout, decision *model.Decision) {
	g := l.Grid

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s (%d x %d cells)", l.Name, g.CountX, g.CountY)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Items: %d | Used cells: %d | Total cells: %d | Utilization: %.1f%%",
		len(l.Items), l.UsedCells(), l.TotalCells(), l.Utilization())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	scale := math.Min(drawWidth/g.PixelWidth(), drawHeight/g.PixelHeight())
	canvasW := g.PixelWidth() * scale
	canvasH := g.PixelHeight() * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Empty cells
	pdf.SetFillColor(240, 240, 240)
	pdf.SetDrawColor(190, 190, 190)
	pdf.SetLineWidth(0.2)
	for y := 0; y < g.CountY; y++ {
		for x := 0; x < g.CountX; x++ {
			cx, cy, cw, ch := cellBox(g, model.Rect{CellX: x, CellY: y, SpanX: 1, SpanY: 1}, scale)
			pdf.Rect(offsetX+cx, offsetY+cy, cw, ch, "FD")
		}
	}

	colorIdx := 0
	for _, it := range l.Items {
		ix, iy, iw, ih := cellBox(g, it.Rect, scale)
		px, py := offsetX+ix, offsetY+iy

		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		if it.Reorderable {
			col := itemColors[colorIdx%len(itemColors)]
			colorIdx++
			pdf.SetFillColor(col.R, col.G, col.B)
			pdf.Rect(px, py, iw, ih, "FD")
		} else {
			pdf.SetFillColor(255, 200, 200)
			pdf.Rect(px, py, iw, ih, "FD")
			drawHatchPattern(pdf, px, py, iw, ih)
		}

		if iw > 15 && ih > 8 {
			drawItemLabel(pdf, it, px, py, iw, ih)
		}
	}

	if decision != nil && decision.Accepted {
		dx, dy, dw, dh := cellBox(g, decision.Rect, scale)
		pdf.SetDrawColor(220, 0, 0)
		pdf.SetLineWidth(0.8)
		pdf.SetDashPattern([]float64{2, 1}, 0)
		pdf.Rect(offsetX+dx, offsetY+dy, dw, dh, "D")
		pdf.SetDashPattern([]float64{}, 0)
	}

	drawGridAnnotations(pdf, g, offsetX, offsetY, canvasW, canvasH)
	drawItemsLegend(pdf, l, offsetY+canvasH+5)
}

// cellBox returns the scaled drawing box of r relative to the grid origin.
func cellBox(g model.GridSpec, r model.Rect, scale float64) (x, y, w, h float64) {
	x = float64(r.CellX) * (g.CellWidth + g.WidthGap) * scale
	y = float64(r.CellY) * (g.CellHeight + g.HeightGap) * scale
	w = (float64(r.SpanX)*g.CellWidth + float64(r.SpanX-1)*g.WidthGap) * scale
	h = (float64(r.SpanY)*g.CellHeight + float64(r.SpanY-1)*g.HeightGap) * scale
	return x, y, w, h
}

func drawItemLabel(pdf *fpdf.Fpdf, it model.Item, px, py, pw, ph float64) {
	pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
	pdf.SetTextColor(0, 0, 0)

	label := it.Label
	span := it.Rect.Span().String()

	labelW := pdf.GetStringWidth(label)
	spanW := pdf.GetStringWidth(span)

	if labelW < pw-2 {
		pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
		pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
	}
	if ph > 14 && spanW < pw-2 {
		pdf.SetXY(px+(pw-spanW)/2, py+ph/2)
		pdf.CellFormat(spanW, 4, span, "", 0, "C", false, 0, "")
	}
}

// drawHatchPattern draws diagonal lines inside a rectangle to mark pinned items.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	for d := spacing; d < w+h; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
	pdf.SetDrawColor(30, 30, 30)
}

// drawGridAnnotations numbers the columns above and the rows left of the grid.
func drawGridAnnotations(pdf *fpdf.Fpdf, g model.GridSpec, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)

	colW := canvasW / float64(g.CountX)
	for x := 0; x < g.CountX; x++ {
		pdf.SetXY(offsetX+float64(x)*colW, offsetY-4)
		pdf.CellFormat(colW, 4, fmt.Sprintf("%d", x), "", 0, "C", false, 0, "")
	}
	rowH := canvasH / float64(g.CountY)
	for y := 0; y < g.CountY; y++ {
		pdf.SetXY(offsetX-6, offsetY+float64(y)*rowH+rowH/2-2)
		pdf.CellFormat(5, 4, fmt.Sprintf("%d", y), "", 0, "R", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
}

// drawItemsLegend renders a compact legend of items below the grid.
func drawItemsLegend(pdf *fpdf.Fpdf, l model.Layout, startY float64) {
	if len(l.Items) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Items:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	colorIdx := 0
	for _, it := range l.Items {
		label := fmt.Sprintf("%s %s", it.Label, it.Rect)
		if !it.Reorderable {
			label += " P"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		if it.Reorderable {
			col := itemColors[colorIdx%len(itemColors)]
			colorIdx++
			pdf.SetFillColor(col.R, col.G, col.B)
		} else {
			pdf.SetFillColor(255, 200, 200)
		}
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the item table and the decision details.
func renderSummaryPage(pdf *fpdf.Fpdf, l model.Layout, decision *model.Decision) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Layout Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	colWidths := []float64{30, 90, 40, 40, 40}
	headers := []string{"ID", "Label", "Cell", "Span", "Pinned"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, it := range l.Items {
		if y > pageHeight-marginBottom-50 {
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(200, 6, fmt.Sprintf("... and %d more", len(l.Items)-i), "", 0, "L", false, 0, "")
			y += 6
			break
		}

		xPos = marginLeft
		pinned := "no"
		if !it.Reorderable {
			pinned = "yes"
		}
		rowData := []string{
			it.ID,
			it.Label,
			fmt.Sprintf("%d, %d", it.Rect.CellX, it.Rect.CellY),
			it.Rect.Span().String(),
			pinned,
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if decision != nil {
		renderDecision(pdf, *decision, y+8)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by GridShuffle", "", 0, "C", false, 0, "")
}

func renderDecision(pdf *fpdf.Fpdf, d model.Decision, y float64) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Placement Decision", "", 0, "L", false, 0, "")
	y += 9

	rows := decisionRows(d)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, row[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(150, 5, row[1], "", 0, "L", false, 0, "")
		y += 5
	}
}

// decisionRows returns the label/value pairs shown for a decision.
func decisionRows(d model.Decision) [][2]string {
	if !d.Accepted {
		return [][2]string{
			{"Accepted", "no"},
			{"Reason", d.Reason.String()},
		}
	}

	solution := "no-shuffle"
	if d.Shuffled {
		solution = "reorder"
	}
	rows := [][2]string{
		{"Accepted", "yes"},
		{"Target", d.Rect.String()},
		{"Solution", solution},
		{"Committed", fmt.Sprintf("%t", d.Committed)},
		{"Displaced", fmt.Sprintf("%d", len(d.Displaced))},
	}
	for _, m := range d.Displaced {
		rows = append(rows, [2]string{"  " + m.ID, fmt.Sprintf("%s -> %s", m.From, m.To)})
	}
	return rows
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
