// Package cli implements the gridshuffle command-line interface.
//
// Every command works on a layout document (JSON) and drives the placement
// engine against it. Application defaults come from a TOML config file,
// ~/.gridshuffle/config.toml unless --config says otherwise.
//
// # Commands
//
//   - init, add, remove, show: create and edit layouts
//   - undo, redo: step through a layout's edit history
//   - place: ask the engine where a rectangle goes, optionally committing
//   - import, export: item lists in and layouts out (CSV, XLSX, DXF, PDF)
//   - template, backup: saved layout templates and full data backups
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/GridShuffle/internal/engine"
	"github.com/piwi3910/GridShuffle/internal/model"
	"github.com/piwi3910/GridShuffle/internal/project"
)

const appName = "gridshuffle"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output; nil means stdout.
	Out io.Writer

	configPath string
	config     model.AppConfig
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: model.DefaultAppConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

func (c *CLI) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "GridShuffle places rectangles on a cell grid, pushing others aside",
		Long:         `GridShuffle keeps a layout of rectangular items on a fixed grid and finds room for new or moved items by shrinking them or pushing their neighbours out of the way.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", project.DefaultConfigPath(), "config file")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.undoCommand())
	root.AddCommand(c.redoCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.backupCommand())

	return root
}

// loadConfig reads the config file and applies its log level.
func (c *CLI) loadConfig() error {
	config, err := project.LoadAppConfig(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.config = config

	if lvl, err := log.ParseLevel(strings.ToLower(config.LogLevel)); err == nil {
		c.SetLogLevel(lvl)
	} else if config.LogLevel != "" {
		c.Logger.Warn("unknown log level in config", "level", config.LogLevel)
	}
	c.Logger.Debug("loaded config", "path", c.configPath)
	return nil
}

// openLayout loads the layout at path into a fresh engine.
func (c *CLI) openLayout(path string, opts ...engine.Option) (*engine.Engine, model.Layout, error) {
	l, err := project.LoadLayout(path)
	if err != nil {
		return nil, model.Layout{}, err
	}
	e, err := engine.FromLayout(l, append([]engine.Option{engine.WithLogger(c.Logger)}, opts...)...)
	if err != nil {
		return nil, model.Layout{}, err
	}
	c.Logger.Debug("opened layout", "path", path, "items", len(l.Items), "grid", fmt.Sprintf("%dx%d", l.Grid.CountX, l.Grid.CountY))
	return e, l, nil
}

// saveLayout writes the engine state to path and records it as recent.
func (c *CLI) saveLayout(path, name string, e *engine.Engine) error {
	if err := project.SaveLayout(path, e.Layout(name)); err != nil {
		return err
	}
	c.touchRecent(path)
	return nil
}

// saveChange saves the engine state to path and pushes the layout as it was
// before the change onto the layout's undo history.
func (c *CLI) saveChange(path string, before model.Layout, e *engine.Engine, label string) error {
	if err := c.saveLayout(path, before.Name, e); err != nil {
		return err
	}
	h, err := project.LoadHistory(path)
	if err != nil {
		c.Logger.Warn("starting a new history", "path", project.HistoryPath(path), "err", err)
		h = model.NewHistory()
	}
	h.Push(model.MakeSnapshot(before, label))
	h.LastDirection = e.LastDirection()
	if err := project.SaveHistory(path, h); err != nil {
		c.Logger.Warn("could not update history", "path", project.HistoryPath(path), "err", err)
	}
	return nil
}

// resetHistory drops the undo history of a freshly written layout.
func (c *CLI) resetHistory(path string) {
	if err := project.ClearHistory(path); err != nil {
		c.Logger.Warn("could not clear history", "path", project.HistoryPath(path), "err", err)
	}
}

// touchRecent records path in the config's recent list. Failure to persist
// the config only warns; the layout itself is already saved.
func (c *CLI) touchRecent(path string) {
	c.config.AddRecent(path)
	if err := project.SaveAppConfig(c.configPath, c.config); err != nil {
		c.Logger.Warn("could not update config", "path", c.configPath, "err", err)
	}
}
