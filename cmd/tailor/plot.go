package main

import (
	"io"
	"os"

	"github.com/born-ml/tailor/internal/tailor"
	"github.com/spf13/cobra"
)

func plotCmd() *cobra.Command {
	var (
		flags  modelFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "plot MODEL.hcl",
		Short: "Draw the layers of a model as a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := tailor.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := flags.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			return tailor.NewVisualizer(s.tailor).Plot(w, s.shape, f)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "diagram format (dot, mermaid, table, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
