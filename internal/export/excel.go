package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/GridShuffle/internal/model"
)

const (
	itemsSheet = "Items"
	gridSheet  = "Grid"
)

// itemHeaders uses names the importer recognizes, so an exported sheet can be
// imported again.
var itemHeaders = []string{"Label", "X", "Y", "Width", "Height", "Pinned", "ID"}

// ExportExcel writes the layout to an .xlsx workbook: an Items sheet with one
// row per item and a Grid sheet with the grid geometry.
func ExportExcel(path string, l model.Layout) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), itemsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]interface{}{toRow(itemHeaders)}
	for _, it := range l.Items {
		pinned := "no"
		if !it.Reorderable {
			pinned = "yes"
		}
		rows = append(rows, []interface{}{
			it.Label, it.Rect.CellX, it.Rect.CellY, it.Rect.SpanX, it.Rect.SpanY, pinned, it.ID,
		})
	}
	if err := writeRows(f, itemsSheet, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(gridSheet); err != nil {
		return fmt.Errorf("create grid sheet: %w", err)
	}
	g := l.Grid
	gridRows := [][]interface{}{
		{"Name", l.Name},
		{"Columns", g.CountX},
		{"Rows", g.CountY},
		{"Cell Width (px)", g.CellWidth},
		{"Cell Height (px)", g.CellHeight},
		{"Width Gap (px)", g.WidthGap},
		{"Height Gap (px)", g.HeightGap},
		{"Utilization (%)", fmt.Sprintf("%.1f", l.Utilization())},
	}
	if err := writeRows(f, gridSheet, gridRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("cell reference: %w", err)
			}
			if err := f.SetCellValue(sheet, ref, cell); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, ref, err)
			}
		}
	}
	return nil
}
