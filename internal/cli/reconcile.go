package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"socialcore/internal/app"
	"socialcore/internal/counter"
	"socialcore/internal/repository"
)

func NewReconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute like and follow counters from relation records",
		Long: `Recompute post and comment like counters and likedBy sets, and user
follower and following counts, from the likes and follows tables. Only rows
that drifted are rewritten. Safe to run while the API is serving.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				db, err := a.DB()
				if err != nil {
					return err
				}

				reconciler := counter.NewReconciler(repository.NewCounterRepository(db), a.Log)
				stats, err := reconciler.Rebuild(ctx)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "fixed %d posts, %d comments, %d users\n",
					stats.Posts, stats.Comments, stats.Users)
				return nil
			})
		},
	}
}
