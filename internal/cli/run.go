package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AaronLPS/ai4news/internal/app"
)

// NewRunCommand starts the recurring spool-ingest loop.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Ingest the spool now and on the configured cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig()
			logger := opts.logger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application := app.New(cfg, logger)
			return application.Run(ctx)
		},
	}
}
