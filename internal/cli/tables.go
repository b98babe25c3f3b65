package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (a *App) tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the source schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()
			tables, err := e.svc.Tables(cmd.Context())
			if err != nil {
				return err
			}
			stored, err := e.store.List(cmd.Context())
			if err != nil {
				return err
			}
			configured := make(map[string]bool, len(stored))
			for _, name := range stored {
				configured[name] = true
			}
			width := 0
			for _, t := range tables {
				width = max(width, len(t.Name))
			}
			name := color.New(color.FgCyan)
			for _, t := range tables {
				mark := " "
				if configured[t.Name] {
					mark = color.New(color.FgGreen).Sprint("*")
				}
				fmt.Fprintf(a.Out, "%s %s  %s\n", mark, name.Sprintf("%-*s", width, t.Name), t.Comment)
			}
			fmt.Fprintf(a.Out, "\n%d tables, %d configured (*)\n", len(tables), len(configured))
			return nil
		},
	}
}
