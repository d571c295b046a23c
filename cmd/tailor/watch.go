package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/born-ml/tailor/internal/ctxlog"
	"github.com/born-ml/tailor/internal/tailor"
	"github.com/born-ml/tailor/internal/watch"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var (
		flags    modelFlags
		all      bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch MODEL.hcl",
		Short: "Print the summary again whenever the model file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			logger := ctxlog.FromContext(ctx)
			out := cmd.OutOrStdout()

			summarize := func() {
				if err := summarizeOnce(ctx, &flags, args[0], all, cmd); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
			}

			w, err := watch.New(args[0],
				watch.WithDebounceDelay(debounce),
				watch.WithOnError(func(err error) {
					logger.Warn("Watcher error.", "error", err)
				}),
			)
			if err != nil {
				return err
			}
			defer w.Close()

			summarize()
			logger.Info("Watching for changes.", "file", args[0])
			return w.Run(ctx, func() {
				fmt.Fprintf(out, "\n--- %s changed at %s ---\n", args[0], time.Now().Format(time.TimeOnly))
				summarize()
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include function op nodes")
	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "quiet period before re-running")
	return cmd
}

func summarizeOnce(ctx context.Context, flags *modelFlags, path string, all bool, cmd *cobra.Command) error {
	s, err := flags.load(ctx, path)
	if err != nil {
		return err
	}
	records, err := s.tailor.Interpret(s.shape, !all)
	if err != nil {
		return err
	}
	return tailor.NewVisualizer(s.tailor).Render(cmd.OutOrStdout(), records, tailor.FormatTable)
}
