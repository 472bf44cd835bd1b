package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one check and notify about unacknowledged chapters",
	Long: `Evaluate the cached snapshot, fetch a fresh one when the next release
time has passed, and show a notification for the latest chapter if it has
not been acknowledged. This is what running without a subcommand does.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	a, err := newApp(history, true)
	if err != nil {
		return err
	}

	res, err := a.Run(ctx)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.Stringer("action", res.Decision.Action),
		zap.Bool("fetched", res.Fetched),
		zap.Bool("notified", res.Notified),
	}
	if res.Notified {
		fields = append(fields,
			zap.String("kind", string(res.Kind)),
			zap.String("chapter", res.Chapter.Name),
			zap.String("state", string(res.Outcome.State)),
		)
	}
	logger.Info("check finished", fields...)
	return nil
}
