package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/born-ml/tailor/internal/store"
	"github.com/born-ml/tailor/internal/tailor"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var (
		dbPath string
		model  string
		runID  int64
		format string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs, or show one with --run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if runID != 0 {
				f, err := tailor.ParseFormat(format)
				if err != nil {
					return err
				}
				run, err := db.LoadRun(ctx, runID)
				if err != nil {
					return err
				}
				if f == tailor.FormatTable {
					fmt.Fprintf(out, "run %d: %s %v\n", run.ID, run.Model, run.InputShape)
				}
				return tailor.Render(out, run.Records, f)
			}

			runs, err := db.ListRuns(ctx, model)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMODEL\tINPUT\tCREATED\tSOURCE")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%v\t%s\t%s\n", r.ID, r.Model, r.InputShape, r.CreatedAt.Local().Format(time.DateTime), r.Source)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "tailor.db", "SQLite database of saved runs")
	cmd.Flags().StringVarP(&model, "model", "m", "", "only list runs of this model")
	cmd.Flags().Int64Var(&runID, "run", 0, "show the records of this run")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "record format for --run (table, json, dot, mermaid)")
	return cmd
}
