package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/GridShuffle/internal/engine"
	"github.com/piwi3910/GridShuffle/internal/model"
	"github.com/piwi3910/GridShuffle/internal/project"
)

// historyStep moves one entry through a history, given the current state.
type historyStep func(h *model.History, current model.Snapshot) (model.Snapshot, bool)

func (c *CLI) undoCommand() *cobra.Command {
	return c.historyCommand("undo", "Revert the last add, remove or committed place", (*model.History).Undo)
}

func (c *CLI) redoCommand() *cobra.Command {
	return c.historyCommand("redo", "Reapply the last undone change", (*model.History).Redo)
}

func (c *CLI) historyCommand(verb, short string, step historyStep) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <layout.json>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			_, l, err := c.openLayout(path)
			if err != nil {
				return err
			}
			h, err := project.LoadHistory(path)
			if err != nil {
				return err
			}

			w := c.out()
			snap, ok := step(&h, model.MakeSnapshot(l, ""))
			if !ok {
				printInfo(w, "nothing to %s", verb)
				return nil
			}

			h.LastDirection = nil
			restored := snap.Apply(l)
			e, err := engine.FromLayout(restored, engine.WithLogger(c.Logger))
			if err != nil {
				return fmt.Errorf("%s %q: %w", verb, snap.Label, err)
			}
			if err := c.saveLayout(path, l.Name, e); err != nil {
				return err
			}
			if err := project.SaveHistory(path, h); err != nil {
				return err
			}
			c.Logger.Debug("history", "undo", len(h.UndoStack), "redo", len(h.RedoStack))

			printSuccess(w, "%s %s", verb, StyleValue.Render(snap.Label))
			printLayout(w, e.Layout(l.Name), nil)
			return nil
		},
	}
}
