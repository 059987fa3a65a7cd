package cli

import (
	"context"

	"github.com/spf13/cobra"

	"socialcore/internal/app"
	"socialcore/internal/database"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				db, err := a.DB()
				if err != nil {
					return err
				}
				if err := database.Migrate(ctx, db); err != nil {
					return err
				}
				a.Log.Info("schema applied")
				return nil
			})
		},
	}
}
