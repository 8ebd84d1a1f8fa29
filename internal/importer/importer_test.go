package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Label,Width,Height\nClock,2,1\nMail,1,1\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Label;Width;Height\nClock;2;1\nMail;1;1\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Label\tWidth\tHeight\nClock\t2\t1\nMail\t1\t1\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Label", "X", "Y", "Width", "Height", "Pinned"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, X: 1, Y: 2, Width: 3, Height: 4, Quantity: -1, Pinned: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AlternativeNames(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{" Span_Y ", "NAME", "col", "Row", "span_x", "qty", "locked"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 1, X: 2, Y: 3, Width: 4, Height: 0, Quantity: 5, Pinned: 6}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Clock", "2", "1"})
	if isHeader {
		t.Error("did not expect a header")
	}
	if mapping.Width != 1 || mapping.Height != 2 || mapping.X != -1 {
		t.Errorf("unexpected positional mapping %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_PositionedAndUnpositioned(t *testing.T) {
	data := "Label,X,Y,Width,Height,Pinned\n" +
		"Clock,0,0,2,1,no\n" +
		"Dock,0,4,4,1,yes\n" +
		"Mail,,,1,1,\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 positioned items, got %d", len(result.Items))
	}
	if len(result.Unpositioned) != 1 {
		t.Fatalf("expected 1 unpositioned item, got %d", len(result.Unpositioned))
	}

	clock := result.Items[0]
	if clock.Label != "Clock" || clock.Rect != (model.Rect{CellX: 0, CellY: 0, SpanX: 2, SpanY: 1}) {
		t.Errorf("unexpected clock %+v", clock)
	}
	if !clock.Reorderable {
		t.Error("clock should be movable")
	}
	if result.Items[1].Reorderable {
		t.Error("dock should be pinned")
	}
	if result.Unpositioned[0].Rect.Span() != (model.Span{X: 1, Y: 1}) {
		t.Errorf("unexpected span %s", result.Unpositioned[0].Rect.Span())
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Clock,2,1\nMail,1,1,3\n"), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Unpositioned) != 4 {
		t.Fatalf("expected 4 items (1 + qty 3), got %d", len(result.Unpositioned))
	}
	ids := map[string]bool{}
	for _, it := range result.Unpositioned {
		ids[it.ID] = true
	}
	if len(ids) != 4 {
		t.Error("expanded items must have distinct IDs")
	}
}

func TestImportCSVFromReader_InvalidValues(t *testing.T) {
	data := "Label,Width,Height\nGood,1,1\nBad,abc,1\nZero,0,1\nMissing,,2\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Unpositioned) != 1 {
		t.Errorf("expected 1 valid item, got %d", len(result.Unpositioned))
	}
	if len(result.Errors) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Width\nClock,2\n"), ',')
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for missing Height column")
	}
	if !strings.Contains(result.Errors[0], "Height") {
		t.Errorf("expected error to mention Height, got %q", result.Errors[0])
	}
}

func TestImportCSVFromReader_BadPositionFallsBackToArrange(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,X,Y,W,H\nClock,a,0,1,1\n"), ',')
	if len(result.Items) != 0 || len(result.Unpositioned) != 1 {
		t.Fatalf("expected the item to be unpositioned, got %+v", result)
	}
	if len(result.Warnings) < 2 {
		t.Errorf("expected a warning for the bad position, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_UnknownPinnedValue(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,W,H,Pinned\nClock,1,1,maybe\n"), ',')
	if len(result.Unpositioned) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Unpositioned))
	}
	if !result.Unpositioned[0].Reorderable {
		t.Error("unknown pinned value should leave the item movable")
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "maybe") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning about 'maybe', got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_EmptyRowsAndLabels(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,W,H\n,1,1\n\n,,\n"), ',')
	if len(result.Unpositioned) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Unpositioned))
	}
	if result.Unpositioned[0].Label != "Item 1" {
		t.Errorf("expected generated label, got %q", result.Unpositioned[0].Label)
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	if err := os.WriteFile(path, []byte("Label;W;H\nClock;2;1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportCSV(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Unpositioned) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Unpositioned))
	}
	if result.Warnings[0] != "Detected semicolon delimiter" {
		t.Errorf("unexpected first warning %q", result.Warnings[0])
	}
}

func TestImportCSV_FileErrors(t *testing.T) {
	if result := ImportCSV(filepath.Join(t.TempDir(), "none.csv")); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := ImportCSV(path); len(result.Errors) == 0 || result.Errors[0] != "File is empty" {
		t.Errorf("expected 'File is empty', got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Name", "Col", "Row", "Span X", "Span Y", "Locked"},
		{"Clock", 1, 0, 2, 1, "no"},
		{"Dock", 0, 4, 4, 1, "yes"},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Items[0].Rect != (model.Rect{CellX: 1, CellY: 0, SpanX: 2, SpanY: 1}) {
		t.Errorf("unexpected rect %s", result.Items[0].Rect)
	}
	if result.Items[1].Reorderable {
		t.Error("dock should be pinned")
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "none.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestParsePinned(t *testing.T) {
	tests := []struct {
		in     string
		pinned bool
		ok     bool
	}{
		{"yes", true, true},
		{"X", true, true},
		{"locked", true, true},
		{"", false, true},
		{"No", false, true},
		{"0", false, true},
		{"perhaps", false, false},
	}
	for _, tt := range tests {
		pinned, ok := parsePinned(tt.in)
		if pinned != tt.pinned || ok != tt.ok {
			t.Errorf("parsePinned(%q) = %v, %v; want %v, %v", tt.in, pinned, ok, tt.pinned, tt.ok)
		}
	}
}
