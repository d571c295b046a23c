package main

import (
	"fmt"

	"github.com/born-ml/tailor/internal/ctxlog"
	"github.com/born-ml/tailor/internal/store"
	"github.com/born-ml/tailor/internal/tailor"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	var (
		flags  modelFlags
		all    bool
		format string
		saveDB string
	)

	cmd := &cobra.Command{
		Use:   "summary MODEL.hcl",
		Short: "Print one row per layer of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := tailor.ParseFormat(format)
			if err != nil {
				return err
			}
			if f != tailor.FormatTable && f != tailor.FormatJSON {
				return fmt.Errorf("summary supports table and json, got %q", format)
			}

			s, err := flags.load(ctx, args[0])
			if err != nil {
				return err
			}
			records, err := s.tailor.Interpret(s.shape, !all)
			if err != nil {
				return err
			}

			if saveDB != "" {
				db, err := store.Open(saveDB)
				if err != nil {
					return err
				}
				defer db.Close()
				id, err := db.SaveRun(ctx, &store.Run{
					Model:      s.def.Name,
					Source:     s.def.Source,
					InputShape: s.shape,
					Records:    records,
				})
				if err != nil {
					return err
				}
				ctxlog.FromContext(ctx).Info("Run saved.", "db", saveDB, "id", id)
			}

			return tailor.NewVisualizer(s.tailor).Render(cmd.OutOrStdout(), records, f)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include function op nodes")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json)")
	cmd.Flags().StringVar(&saveDB, "save", "", "save the run to this SQLite database")
	return cmd
}
