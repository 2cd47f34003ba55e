package cli

import (
	"github.com/spf13/cobra"

	"github.com/supportdesk/support-portal/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	logger.Sugar().Infof("listening on %s", cfg.App.Addr())
	return a.Run(cmd.Context())
}
