package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/schema"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage stored table generation configs",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init <table>...",
			Short: "Store the default config of tables that have none",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				defer e.Close()
				for _, table := range args {
					cfg, err := e.svc.InitConfig(cmd.Context(), table)
					if err != nil {
						return err
					}
					a.summary("stored", cfg)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <table>",
			Short: "Print the config of a table as YAML",
			Long:  "Print the stored config of a table as YAML, or the derived default when none is stored.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				defer e.Close()
				cfg, err := e.svc.LoadConfig(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				b, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = a.Out.Write(b)
				return err
			},
		},
		a.syncCmd(),
		&cobra.Command{
			Use:   "list",
			Short: "List the tables with a stored config",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				e, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				defer e.Close()
				names, err := e.store.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(a.Out, name)
				}
				return nil
			},
		},
	)
	return cmd
}

func (a *App) summary(verb string, cfg *schema.TableConfig) {
	o := cfg.Options
	fmt.Fprintf(a.Out, "%s %s (%s/%s, %s, %d columns)\n",
		color.New(color.FgGreen).Sprint(verb), cfg.Table, o.ModuleName, o.BusinessName, o.GenType, len(cfg.Columns))
}

func (a *App) syncCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sync <table>...",
		Short: "Re-merge stored configs with the live columns",
		Long: `Re-merge stored configs with the live columns of their tables. Columns
that no longer exist are dropped and new columns get default policies.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()
			for _, table := range args {
				drift, err := e.svc.Drift(cmd.Context(), table)
				switch {
				case tablegen.IsConfigNotFound(err):
					fmt.Fprintf(a.Out, "%s\n  no stored config\n", color.New(color.Bold).Sprint(table))
				case err != nil:
					return err
				case drift.Empty():
					fmt.Fprintf(a.Out, "%s\n  %s\n", color.New(color.Bold).Sprint(table), drift)
				default:
					fmt.Fprintf(a.Out, "%s\n%s", color.New(color.Bold).Sprint(table), drift)
					if drift.HasBreaking() {
						fmt.Fprintln(a.Out, color.New(color.FgYellow).Sprint("  stored tree or sub-table options name dropped columns"))
					}
				}
				if dryRun {
					continue
				}
				cfg, err := e.svc.SyncConfig(cmd.Context(), table)
				if err != nil {
					return err
				}
				a.summary("synced", cfg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the changes without saving")
	return cmd
}
