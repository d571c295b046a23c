// Package main provides the tailor CLI: inspect the layers of a model
// defined in HCL.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/born-ml/tailor/internal/ctxlog"
	"github.com/spf13/cobra"
)

const version = "v0.1.0-dev"

var (
	logLevel  string
	logFormat string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tailor",
		Short: "Inspect the layers of a neural network model",
		Long: `tailor traces a model defined in HCL, runs a probe input through it and
reports the parameter count, trainability, dtype and output shape of every layer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger := newLogger(logLevel, logFormat, cmd.ErrOrStderr())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		},
	}
	rootCmd.SetContext(context.Background())

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(plotCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tailor %s\n", version)
		},
	}
}
