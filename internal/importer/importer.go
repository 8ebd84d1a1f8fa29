// Package importer reads item lists from CSV, Excel and DXF files.
// CSV and Excel imports detect the delimiter and map columns by
// case-insensitive header names.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	// Items carry a cell position taken from the file.
	Items []model.Item
	// Unpositioned items have a span only; place them with engine.Arrange.
	Unpositioned []model.Item
	Errors       []string
	Warnings     []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	X        int
	Y        int
	Width    int
	Height   int
	Quantity int
	Pinned   int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "item", "title", "widget", "app", "description", "desc"},
	"x":        {"x", "col", "column", "cell_x", "cellx", "cell x"},
	"y":        {"y", "row", "cell_y", "celly", "cell y"},
	"width":    {"width", "w", "span_x", "spanx", "span x", "cols"},
	"height":   {"height", "h", "span_y", "spany", "span y", "rows"},
	"quantity": {"quantity", "qty", "count", "num", "pcs"},
	"pinned":   {"pinned", "pin", "locked", "fixed"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping Label, Width, Height, Quantity, Pinned and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, X: -1, Y: -1, Width: -1, Height: -1, Quantity: -1, Pinned: -1}
	slots := map[string]*int{
		"label":    &mapping.Label,
		"x":        &mapping.X,
		"y":        &mapping.Y,
		"width":    &mapping.Width,
		"height":   &mapping.Height,
		"quantity": &mapping.Quantity,
		"pinned":   &mapping.Pinned,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Label: 0, X: -1, Y: -1, Width: 1, Height: 2, Quantity: 3, Pinned: 4}, false
	}
	return mapping, true
}

// parsePinned reports whether s marks an item as pinned, and whether s was recognized.
func parsePinned(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "x", "pinned", "locked":
		return true, true
	case "", "no", "n", "false", "0", "-":
		return false, true
	default:
		return false, false
	}
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseSpan(row []string, idx int, rowLabel, name string) (int, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	if v <= 0 {
		return 0, fmt.Sprintf("%s: %s must be positive", rowLabel, strings.ToUpper(name[:1])+name[1:])
	}
	return v, ""
}

// parsedRow is one data row before quantity expansion.
type parsedRow struct {
	item       model.Item
	quantity   int
	positioned bool
}

// parseRow extracts an item from a row using the given column mapping.
// Returns the row, any error message, and any warnings.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, itemCount int) (parsedRow, string, []string) {
	var warnings []string

	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Item %d", itemCount+1)
	}

	width, errMsg := parseSpan(row, mapping.Width, rowLabel, "width")
	if errMsg != "" {
		return parsedRow{}, errMsg, nil
	}
	height, errMsg := parseSpan(row, mapping.Height, rowLabel, "height")
	if errMsg != "" {
		return parsedRow{}, errMsg, nil
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		n, err := strconv.Atoi(qtyStr)
		if err != nil || n <= 0 {
			return parsedRow{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), nil
		}
		qty = n
	}

	item := model.NewItem(label, model.Rect{SpanX: width, SpanY: height})

	if pinStr := getCell(row, mapping.Pinned); pinStr != "" {
		pinnedFlag, ok := parsePinned(pinStr)
		if ok {
			item.Reorderable = !pinnedFlag
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown pinned value '%s', treating as movable", rowLabel, pinStr))
		}
	}

	positioned := false
	xStr, yStr := getCell(row, mapping.X), getCell(row, mapping.Y)
	if xStr != "" || yStr != "" {
		x, errX := strconv.Atoi(xStr)
		y, errY := strconv.Atoi(yStr)
		switch {
		case errX != nil || errY != nil || x < 0 || y < 0:
			warnings = append(warnings, fmt.Sprintf("%s: Invalid position '%s,%s', item will be auto-arranged", rowLabel, xStr, yStr))
		case qty > 1:
			warnings = append(warnings, fmt.Sprintf("%s: Position ignored for quantity %d, items will be auto-arranged", rowLabel, qty))
		default:
			item.Rect.CellX, item.Rect.CellY = x, y
			positioned = true
		}
	}

	return parsedRow{item: item, quantity: qty, positioned: positioned}, "", warnings
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports items from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports items from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports items from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
		if (mapping.X == -1) != (mapping.Y == -1) {
			result.Warnings = append(result.Warnings, "Only one position column found, items will be auto-arranged")
			mapping.X, mapping.Y = -1, -1
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognized header still has a non-numeric width column
		if _, err := strconv.Atoi(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	count := 0
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		parsed, errMsg, warnings := parseRow(row, mapping, rowLabel, count)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)

		if parsed.positioned {
			result.Items = append(result.Items, parsed.item)
			count++
			continue
		}
		for n := 0; n < parsed.quantity; n++ {
			it := parsed.item
			if n > 0 {
				it = model.NewItem(parsed.item.Label, parsed.item.Rect)
				it.Reorderable = parsed.item.Reorderable
			}
			result.Unpositioned = append(result.Unpositioned, it)
			count++
		}
	}

	return result
}
