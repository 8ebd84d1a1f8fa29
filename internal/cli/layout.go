package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/GridShuffle/internal/engine"
	"github.com/piwi3910/GridShuffle/internal/model"
	"github.com/piwi3910/GridShuffle/internal/project"
)

// initCommand creates the init command for starting a new layout file.
func (c *CLI) initCommand() *cobra.Command {
	var (
		grid     model.GridSpec
		name     string
		template string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init <layout.json>",
		Short: "Create an empty layout",
		Long: `Create a new layout document. Grid geometry comes from the config defaults
unless overridden by flags, or from a saved template with --template.`,
		Example: `  gridshuffle init home.json --cols 4 --rows 5
  gridshuffle init work.json --template starter`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			var l model.Layout
			if template != "" {
				store, err := project.LoadTemplates(c.templatesPath())
				if err != nil {
					return fmt.Errorf("load templates: %w", err)
				}
				t := store.FindByName(template)
				if t == nil {
					return fmt.Errorf("template %q not found", template)
				}
				l = t.ToLayout(name)
			} else {
				g := model.GridSpec{CountX: grid.CountX, CountY: grid.CountY}
				c.config.ApplyToGrid(&g)
				if cmd.Flags().Changed("cell-width") {
					g.CellWidth = grid.CellWidth
				}
				if cmd.Flags().Changed("cell-height") {
					g.CellHeight = grid.CellHeight
				}
				if cmd.Flags().Changed("gap-x") {
					g.WidthGap = grid.WidthGap
				}
				if cmd.Flags().Changed("gap-y") {
					g.HeightGap = grid.HeightGap
				}
				l = model.NewLayout(name, g)
			}

			// Validates the grid and any template items
			e, err := engine.FromLayout(l, engine.WithLogger(c.Logger))
			if err != nil {
				return err
			}
			if err := c.saveLayout(path, l.Name, e); err != nil {
				return err
			}
			c.resetHistory(path)

			w := c.out()
			printSuccess(w, "created %s %s", StyleValue.Render(l.Name),
				StyleDim.Render(fmt.Sprintf("(%dx%d, %d items)", l.Grid.CountX, l.Grid.CountY, len(l.Items))))
			printFile(w, path)
			return nil
		},
	}

	cmd.Flags().IntVar(&grid.CountX, "cols", 0, "grid columns (default from config)")
	cmd.Flags().IntVar(&grid.CountY, "rows", 0, "grid rows (default from config)")
	cmd.Flags().Float64Var(&grid.CellWidth, "cell-width", 0, "cell width in px")
	cmd.Flags().Float64Var(&grid.CellHeight, "cell-height", 0, "cell height in px")
	cmd.Flags().Float64Var(&grid.WidthGap, "gap-x", 0, "gap between columns in px")
	cmd.Flags().Float64Var(&grid.HeightGap, "gap-y", 0, "gap between rows in px")
	cmd.Flags().StringVar(&name, "name", "", "layout name (default: file name)")
	cmd.Flags().StringVarP(&template, "template", "t", "", "start from a saved template")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

// addCommand creates the add command, which places an item directly.
func (c *CLI) addCommand() *cobra.Command {
	var (
		label  string
		at     string
		span   string
		pinned bool
	)

	cmd := &cobra.Command{
		Use:   "add <layout.json>",
		Short: "Add an item at a cell, or in the first free spot",
		Long: `Add an item to a layout without displacing anything. With --at the item
must fit exactly there; without it the first vacant area that fits is used.
Use "place" to let items be pushed aside.`,
		Example: `  gridshuffle add home.json --label Clock --at 0,0 --span 2x1
  gridshuffle add home.json --label Dock --span 4x1 --pinned`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := c.openLayout(args[0])
			if err != nil {
				return err
			}
			s, err := parseSpan(span)
			if err != nil {
				return err
			}

			it := model.NewItem(label, model.Rect{SpanX: s.X, SpanY: s.Y})
			it.Reorderable = !pinned

			if at != "" {
				x, y, err := parseCell(at)
				if err != nil {
					return err
				}
				it.Rect.CellX, it.Rect.CellY = x, y
				if err := e.Place(it); err != nil {
					return err
				}
			} else {
				if !s.Valid() {
					return fmt.Errorf("span %s: %w", s, engine.ErrInvalidSpan)
				}
				res := e.Arrange([]model.Item{it})
				if len(res.Placed) == 0 {
					return fmt.Errorf("add %s %s: %w", label, s, engine.ErrNoSpaceForItem)
				}
				it = res.Placed[0]
			}

			if err := c.saveChange(args[0], l, e, "add "+it.Label); err != nil {
				return err
			}
			printSuccess(c.out(), "added %s %s %s", StyleDim.Render(it.ID), StyleValue.Render(it.Label), StyleNumber.Render(it.Rect.String()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "Item", "item label")
	cmd.Flags().StringVar(&at, "at", "", "top-left cell x,y (default: first vacant)")
	cmd.Flags().StringVarP(&span, "span", "s", "1x1", "span in cells, WxH")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "never move this item when placing others")

	return cmd
}

func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <layout.json> <id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := c.openLayout(args[0])
			if err != nil {
				return err
			}
			it, _ := e.Item(args[1])
			if err := e.Remove(args[1]); err != nil {
				return err
			}
			if err := c.saveChange(args[0], l, e, "remove "+it.Label); err != nil {
				return err
			}
			printSuccess(c.out(), "removed %s %s", StyleDim.Render(it.ID), StyleValue.Render(it.Label))
			return nil
		},
	}
}

func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <layout.json>",
		Short: "Print a layout as a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := c.openLayout(args[0])
			if err != nil {
				return err
			}
			printLayout(c.out(), e.Layout(l.Name), nil)
			return nil
		},
	}
}

func (c *CLI) templatesPath() string {
	return filepath.Join(filepath.Dir(c.configPath), "templates.json")
}
