package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/GridShuffle/internal/engine"
	"github.com/piwi3910/GridShuffle/internal/export"
	"github.com/piwi3910/GridShuffle/internal/model"
	"github.com/piwi3910/GridShuffle/internal/project"
)

type placeOptions struct {
	point   string
	cell    string
	span    string
	minSpan string
	dir     string
	item    string
	label   string
	commit  bool
	report  string
}

func (c *CLI) placeCommand() *cobra.Command {
	var opts placeOptions

	cmd := &cobra.Command{
		Use:   "place <layout.json>",
		Short: "Find room for a rectangle, pushing other items aside",
		Long: `Ask the engine where a rectangle of the given span goes near a drop point.
The engine may push movable items out of the way or shrink the rectangle down
to --min. By default only the decision is shown; --commit applies it and saves
the layout.

With --item the existing item is moved. Without it a new item is created on
commit.

A preview without --dir remembers the push direction it derived in the
layout's history file, and the next --commit without --dir reuses it.`,
		Example: `  gridshuffle place home.json --cell 0,0 --span 2x2
  gridshuffle place home.json --point 150,250 --span 2x2 --min 1x1 --commit
  gridshuffle place home.json --item 3f2a9c1e --cell 2,3 --span 2x1 --dir 1,0 --commit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlace(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.point, "point", "p", "", "drop point px,py (pixel centre of the item)")
	cmd.Flags().StringVar(&opts.cell, "cell", "", "drop at top-left cell x,y")
	cmd.Flags().StringVarP(&opts.span, "span", "s", "1x1", "requested span, WxH")
	cmd.Flags().StringVar(&opts.minSpan, "min", "", "minimum acceptable span, WxH (default: --span)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "push direction dx,dy (default: derived from the drop)")
	cmd.Flags().StringVarP(&opts.item, "item", "i", "", "id of the item being moved")
	cmd.Flags().StringVarP(&opts.label, "label", "l", "Item", "label for a new item")
	cmd.Flags().BoolVar(&opts.commit, "commit", false, "apply the decision and save the layout")
	cmd.Flags().StringVar(&opts.report, "report", "", "also write a PDF report of the decision")
	cmd.MarkFlagsMutuallyExclusive("point", "cell")
	cmd.MarkFlagsOneRequired("point", "cell")

	return cmd
}

func (c *CLI) runPlace(path string, opts placeOptions) error {
	h, err := project.LoadHistory(path)
	if err != nil {
		c.Logger.Warn("ignoring unreadable history", "path", project.HistoryPath(path), "err", err)
		h = model.NewHistory()
	}
	e, l, err := c.openLayout(path, engine.WithLastDirection(h.LastDirection))
	if err != nil {
		return err
	}

	req, err := buildRequest(l.Grid, opts)
	if err != nil {
		return err
	}

	d, err := e.RequestPlacement(req)
	if err != nil {
		return err
	}

	w := c.out()
	if d.Accepted && d.Committed {
		placed, _ := e.Item(d.ItemID)
		if err := c.saveChange(path, l, e, "place "+placed.Label); err != nil {
			return err
		}
		c.Logger.Info("saved layout", "path", path, "item", placed.ID)
	} else if last := e.LastDirection(); !sameDirection(last, h.LastDirection) {
		h.LastDirection = last
		if err := project.SaveHistory(path, h); err != nil {
			c.Logger.Warn("could not remember push direction", "path", project.HistoryPath(path), "err", err)
		}
	}

	view := e.Layout(l.Name)
	if d.Accepted && !d.Committed {
		view = previewLayout(view, d, opts.item)
	}

	printDecision(w, d)
	printLayout(w, view, acceptedRect(d))

	if opts.report != "" {
		if err := export.ExportPDF(opts.report, view, &d); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		printFile(w, opts.report)
	}
	return nil
}

// buildRequest turns command options into a placement request.
func buildRequest(g model.GridSpec, opts placeOptions) (model.PlacementRequest, error) {
	span, err := parseSpan(opts.span)
	if err != nil {
		return model.PlacementRequest{}, err
	}
	minSpan := span
	if opts.minSpan != "" {
		if minSpan, err = parseSpan(opts.minSpan); err != nil {
			return model.PlacementRequest{}, err
		}
	}

	req := model.PlacementRequest{
		MinSpan: minSpan,
		Span:    span,
		Ignore:  opts.item,
		Mode:    model.ModePreview,
	}
	if opts.item == "" {
		req.Item = &model.Item{Label: opts.label, Reorderable: true}
	}
	if opts.commit {
		req.Mode = model.ModeCommit
	}

	switch {
	case opts.point != "":
		if req.Point, err = parsePoint(opts.point); err != nil {
			return model.PlacementRequest{}, err
		}
	case opts.cell != "":
		x, y, err := parseCell(opts.cell)
		if err != nil {
			return model.PlacementRequest{}, err
		}
		req.Point = g.RegionCenter(model.Rect{CellX: x, CellY: y, SpanX: span.X, SpanY: span.Y})
	default:
		return model.PlacementRequest{}, fmt.Errorf("one of --point or --cell is required")
	}

	if opts.dir != "" {
		dir, err := parseDirection(opts.dir)
		if err != nil {
			return model.PlacementRequest{}, err
		}
		req.Direction = &dir
	}
	return req, nil
}

// previewLayout returns l as it would look if d were committed.
func previewLayout(l model.Layout, d model.Decision, ignore string) model.Layout {
	moved := make(map[string]model.Rect, len(d.Displaced)+1)
	for _, mv := range d.Displaced {
		moved[mv.ID] = mv.To
	}
	if ignore != "" {
		moved[ignore] = d.Rect
	}

	out := l
	out.Items = make([]model.Item, len(l.Items))
	for i, it := range l.Items {
		if r, ok := moved[it.ID]; ok {
			it.Rect = r
		}
		out.Items[i] = it
	}
	return out
}

func sameDirection(a, b *model.Direction) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func acceptedRect(d model.Decision) *model.Rect {
	if !d.Accepted {
		return nil
	}
	r := d.Rect
	return &r
}
