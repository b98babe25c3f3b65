package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/tablegen/compiler"
	"github.com/syssam/tablegen/compiler/store"
)

func (a *App) genCmd() *cobra.Command {
	var (
		output string
		all    bool
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "gen [tables...]",
		Short: "Generate code for tables into a zip archive",
		Example: `  tablegen gen sys_user sys_dept -o ruoyi.zip
  tablegen gen --all --prefix sys_ -o - > all.zip
  tablegen gen sys_user --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer e.Close()
			tables := args
			if all {
				infos, err := e.svc.Tables(ctx)
				if err != nil {
					return err
				}
				tables = tables[:0:0]
				for _, t := range infos {
					tables = append(tables, t.Name)
				}
			}
			if len(tables) == 0 {
				return fmt.Errorf("tablegen: no tables given, pass table names or --all")
			}
			run := func() error {
				res, err := e.svc.GenerateBatch(ctx, tables...)
				if err != nil {
					return err
				}
				return a.write(res, output)
			}
			if !watch {
				return run()
			}
			fs, ok := e.store.(*store.FileStore)
			if !ok {
				return fmt.Errorf("tablegen: --watch requires the file config store")
			}
			if output == "-" {
				return fmt.Errorf("tablegen: --watch cannot write to stdout")
			}
			if err := run(); err != nil {
				a.Log.WithError(err).Error("generation failed")
			}
			a.Log.WithField("dir", fs.Dir()).Info("watching stored configs")
			return Watch(ctx, fs, tables, DefaultDebounce, a.Log, func(context.Context) error {
				if err := run(); err != nil {
					a.Log.WithError(err).Error("generation failed")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "tablegen.zip", `archive path, "-" for stdout`)
	cmd.Flags().BoolVar(&all, "all", false, "generate every table of the schema")
	cmd.Flags().BoolVar(&watch, "watch", false, "regenerate when a stored config of the tables changes")
	return cmd
}

// write stores the archive and prints a summary.
func (a *App) write(res *compiler.Result, output string) error {
	if output == "-" {
		_, err := a.Out.Write(res.Archive)
		return err
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(output, res.Archive, 0o644); err != nil {
		return err
	}
	ok := color.New(color.FgGreen, color.Bold)
	for _, f := range res.Files {
		fmt.Fprintf(a.Out, "  %s %s\n", color.New(color.FgGreen).Sprint("+"), f.Path)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(a.Out, "  %s %s\n", color.New(color.FgYellow).Sprint("!"), w)
	}
	fmt.Fprintf(a.Out, "%s %d files from %d tables written to %s\n",
		ok.Sprint("generated"), len(res.Files), len(res.Tables), output)
	return nil
}
