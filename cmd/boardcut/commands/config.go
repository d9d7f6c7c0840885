package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/boardcut/internal/project"
)

func configCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, initialize, back up or restore the configuration",
	}
	cmd.AddCommand(configShowCmd(e), configInitCmd(e), configBackupCmd(e), configRestoreCmd(e))
	return cmd
}

// config show: print the effective configuration after flag overrides.
func configShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(e.out, e.cfg)
		},
	}
}

// config init: write the effective configuration to the config file.
func configInitCmd(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the configuration file with current values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(e.opts.ConfigPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", e.opts.ConfigPath)
			}
			if err := project.SaveAppConfig(e.opts.ConfigPath, e.cfg); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "wrote %s\n", e.opts.ConfigPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

// config backup <file>: export config and catalog together.
func configBackupCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <file>",
		Short: "Export the configuration and material catalog to one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := e.catalog()
			if err != nil {
				return err
			}
			if err := project.ExportAllData(args[0], e.cfg, catalog); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "wrote %s\n", args[0])
			return nil
		},
	}
}

// config restore <file>: replace config and catalog from a backup.
func configRestoreCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the configuration and material catalog from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(e.opts.ConfigPath, backup.Config); err != nil {
				return err
			}
			if err := project.SaveCatalog(e.opts.CatalogPath, backup.Catalog); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "restored backup from %s (created %s)\n", args[0], backup.CreatedAt)
			return nil
		},
	}
}
