package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/mentor-marketplace/internal/queue"
)

func newWorkerCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume booking events into the booking log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c := &queue.Consumer{URL: cfg.AMQPURL, LogPath: cfg.BookingLogPath, Log: log}
			log.Info().Str("log_path", cfg.BookingLogPath).Msg("booking worker starting")
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
