package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/mentor-marketplace/internal/database"
)

func newMigrateCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(f)
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), dbOptions(cfg))
			if err != nil {
				return err
			}
			defer db.Close()
			applied, err := database.Migrate(cmd.Context(), db)
			if err != nil {
				return err
			}
			log.Info().Ints("versions", applied).Msg("migrations applied")
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(applied))
			return nil
		},
	}
}
