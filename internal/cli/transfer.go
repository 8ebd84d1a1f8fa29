package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/GridShuffle/internal/engine"
	"github.com/piwi3910/GridShuffle/internal/export"
	"github.com/piwi3910/GridShuffle/internal/importer"
	"github.com/piwi3910/GridShuffle/internal/model"
)

// Export formats.
const (
	formatPDF    = "pdf"
	formatLabels = "labels"
	formatXLSX   = "xlsx"
	formatDXF    = "dxf"
)

var allFormats = []string{formatPDF, formatLabels, formatXLSX, formatDXF}

func (c *CLI) importCommand() *cobra.Command {
	var (
		output string
		name   string
		cols   int
		rows   int
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv|file.xlsx|file.dxf>",
		Short: "Build a layout from an item list or drawing",
		Long: `Import items into a new layout. Rows with a cell position are placed there;
rows without one are arranged into the first vacant area that fits, largest
first. DXF shapes are snapped to the grid's cells.`,
		Example: `  gridshuffle import items.csv -o home.json
  gridshuffle import plan.dxf -o plan.json --cols 8 --rows 6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			if output == "" {
				output = strings.TrimSuffix(src, filepath.Ext(src)) + ".json"
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))
			}

			g := model.GridSpec{CountX: cols, CountY: rows}
			c.config.ApplyToGrid(&g)

			prog := newProgress(c.Logger)
			var result importer.ImportResult
			switch strings.ToLower(filepath.Ext(src)) {
			case ".csv", ".txt", ".tsv":
				result = importer.ImportCSV(src)
			case ".xlsx":
				result = importer.ImportExcel(src)
			case ".dxf":
				result = importer.ImportDXF(src, g)
			default:
				return fmt.Errorf("unsupported import format %q", filepath.Ext(src))
			}

			w := c.out()
			for _, msg := range result.Warnings {
				c.Logger.Debug(msg)
			}
			for _, msg := range result.Errors {
				printWarning(w, "%s", msg)
			}
			if len(result.Items)+len(result.Unpositioned) == 0 {
				return fmt.Errorf("no items imported from %s", src)
			}

			e, err := engine.New(g, engine.WithLogger(c.Logger))
			if err != nil {
				return err
			}
			placed, unplaced := populate(e, result)
			for _, it := range unplaced {
				printWarning(w, "%s %s: %v", it.Label, it.Rect.Span(), engine.ErrNoSpaceForItem)
			}

			if err := c.saveLayout(output, name, e); err != nil {
				return err
			}
			c.resetHistory(output)
			prog.done(fmt.Sprintf("Imported %d items", placed))

			printSuccess(w, "imported %s items into %s", StyleNumber.Render(fmt.Sprint(placed)), StyleValue.Render(name))
			printFile(w, output)
			if len(unplaced) > 0 {
				return fmt.Errorf("%d of %d items did not fit: %w", len(unplaced), placed+len(unplaced), engine.ErrNoSpaceForItem)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "layout file to write (default: input name with .json)")
	cmd.Flags().StringVar(&name, "name", "", "layout name")
	cmd.Flags().IntVar(&cols, "cols", 0, "grid columns (default from config)")
	cmd.Flags().IntVar(&rows, "rows", 0, "grid rows (default from config)")

	return cmd
}

// populate places positioned items where they say, then arranges the rest.
// Positioned items that cannot be placed as given join the arranged batch.
func populate(e *engine.Engine, result importer.ImportResult) (int, []model.Item) {
	pending := append([]model.Item(nil), result.Unpositioned...)
	placed := 0
	for _, it := range result.Items {
		if err := e.Place(it); err != nil {
			pending = append(pending, it)
			continue
		}
		placed++
	}
	res := e.Arrange(pending)
	return placed + len(res.Placed), res.Unplaced
}

func (c *CLI) exportCommand() *cobra.Command {
	var (
		formats string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "export <layout.json>",
		Short: "Write a layout as PDF, labels, spreadsheet or DXF",
		Example: `  gridshuffle export home.json -f pdf,xlsx
  gridshuffle export home.json -f labels -o out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := c.openLayout(args[0])
			if err != nil {
				return err
			}
			layout := e.Layout(l.Name)

			if outDir == "" {
				outDir = filepath.Dir(args[0])
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			base := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])))

			list := parseFormats(formats)
			if len(list) == 0 {
				return fmt.Errorf("no export format given (one of %s)", strings.Join(allFormats, ", "))
			}

			w := c.out()
			for _, f := range list {
				path, err := exportLayout(f, base, layout)
				if err != nil {
					return err
				}
				c.Logger.Debug("exported", "format", f, "path", path)
				printFile(w, path)
			}
			printSuccess(w, "exported %s", StyleValue.Render(l.Name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&formats, "format", "f", formatPDF, "comma-separated formats: "+strings.Join(allFormats, ","))
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default: next to the layout)")

	return cmd
}

// exportLayout writes l in format f next to base and returns the file path.
func exportLayout(f, base string, l model.Layout) (string, error) {
	var (
		path string
		err  error
	)
	switch f {
	case formatPDF:
		path = base + ".pdf"
		err = export.ExportPDF(path, l, nil)
	case formatLabels:
		path = base + "-labels.pdf"
		err = export.ExportLabels(path, l)
	case formatXLSX:
		path = base + ".xlsx"
		err = export.ExportExcel(path, l)
	case formatDXF:
		path = base + ".dxf"
		err = export.ExportDXF(path, l)
	default:
		return "", fmt.Errorf("unknown export format %q (one of %s)", f, strings.Join(allFormats, ", "))
	}
	if err != nil {
		return "", fmt.Errorf("export %s: %w", f, err)
	}
	return path, nil
}
