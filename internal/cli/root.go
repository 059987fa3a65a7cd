package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"socialcore/internal/app"
)

// NewRootCommand creates the root command with the serve, worker, migrate
// and reconcile subcommands.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "socialcore",
		Short:         "Social interactions API and notification workers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewWorkerCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewReconcileCommand())

	return cmd
}

// withApp runs fn with a fresh App and a context cancelled on SIGINT/SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New()
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
