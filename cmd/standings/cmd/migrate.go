package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-standings/infrastructure/storage/postgres"
)

func newMigrateCommand(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := rt.settings.RequireDatabase()
			if err != nil {
				return err
			}
			store, err := postgres.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			group, err := store.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			if group.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated to %s\n", group)
			rt.logger.Info().Str("group", group.String()).Msg("migrations applied")
			return nil
		},
	}
}
