package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/GridShuffle/internal/model"
	"github.com/piwi3910/GridShuffle/internal/project"
)

func (c *CLI) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage saved layout templates",
	}
	cmd.AddCommand(c.templateSaveCommand())
	cmd.AddCommand(c.templateListCommand())
	cmd.AddCommand(c.templateRemoveCommand())
	return cmd
}

func (c *CLI) templateSaveCommand() *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:     "save <layout.json>",
		Short:   "Save a layout as a template",
		Example: `  gridshuffle template save home.json --name starter`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, l, err := c.openLayout(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = l.Name
			}

			store, err := project.LoadTemplates(c.templatesPath())
			if err != nil {
				return fmt.Errorf("load templates: %w", err)
			}
			replaced := false
			if old := store.FindByName(name); old != nil {
				store.Remove(old.ID)
				replaced = true
			}
			store.Add(model.NewLayoutTemplate(name, description, e.Layout(l.Name)))
			if err := project.SaveTemplates(c.templatesPath(), store); err != nil {
				return fmt.Errorf("save templates: %w", err)
			}

			verb := "saved"
			if replaced {
				verb = "replaced"
			}
			printSuccess(c.out(), "%s template %s", verb, StyleValue.Render(name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "template name (default: layout name)")
	cmd.Flags().StringVar(&description, "description", "", "template description")

	return cmd
}

func (c *CLI) templateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadTemplates(c.templatesPath())
			if err != nil {
				return fmt.Errorf("load templates: %w", err)
			}

			w := c.out()
			if len(store.Templates) == 0 {
				printInfo(w, "no templates in %s", c.templatesPath())
				return nil
			}
			for _, t := range store.Templates {
				printKeyValue(w, t.Name, fmt.Sprintf("%dx%d, %d items", t.Grid.CountX, t.Grid.CountY, len(t.Items)))
				if t.Description != "" {
					printDetail(w, "%s", t.Description)
				}
			}
			return nil
		},
	}
}

func (c *CLI) templateRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadTemplates(c.templatesPath())
			if err != nil {
				return fmt.Errorf("load templates: %w", err)
			}
			t := store.FindByName(args[0])
			if t == nil {
				return fmt.Errorf("template %q not found", args[0])
			}
			store.Remove(t.ID)
			if err := project.SaveTemplates(c.templatesPath(), store); err != nil {
				return fmt.Errorf("save templates: %w", err)
			}
			printSuccess(c.out(), "removed template %s", StyleValue.Render(args[0]))
			return nil
		},
	}
}

func (c *CLI) backupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up or restore config and templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export <backup.json>",
		Short: "Write config and templates to one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadTemplates(c.templatesPath())
			if err != nil {
				return fmt.Errorf("load templates: %w", err)
			}
			if err := project.ExportAllData(args[0], c.config, store); err != nil {
				return err
			}
			printSuccess(c.out(), "backed up config and %d templates", len(store.Templates))
			printFile(c.out(), args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <backup.json>",
		Short: "Restore config and templates, replacing the current ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(c.configPath, backup.Config); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			c.config = backup.Config
			store := model.TemplateStore{Templates: backup.Templates}
			if err := project.SaveTemplates(c.templatesPath(), store); err != nil {
				return fmt.Errorf("save templates: %w", err)
			}
			printSuccess(c.out(), "restored config and %d templates from backup %s", len(store.Templates), backup.CreatedAt)
			return nil
		},
	})

	return cmd
}
