package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supportdesk/support-portal/internal/config"
	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/persistence"
	"github.com/supportdesk/support-portal/internal/storage/postgres"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage support agents",
}

var agentPromoteCmd = &cobra.Command{
	Use:   "promote <username>",
	Short: "Grant the agent role to an existing user",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentPromote,
}

func init() {
	agentCmd.AddCommand(agentPromoteCmd)
}

func runAgentPromote(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Storage.Backend != config.BackendPostgres {
		return errors.New("agent promote requires STORAGE_BACKEND=postgres; the memory backend does not outlive the server process")
	}
	pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	store, err := postgres.New(cmd.Context(), pg.PoolHandle(), nil)
	if err != nil {
		return err
	}
	user, err := store.PromoteAgent(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no user named %q", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d) is now an agent\n", user.Username, user.ID)
	return nil
}
