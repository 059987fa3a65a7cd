package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialcore/internal/app"
	"socialcore/internal/queue"
	"socialcore/internal/worker"
)

func NewWorkerCommand() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume the mail stream and deliver notification emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if workers > 0 {
					a.Config.WorkerCount = workers
				}
				return runWorkers(ctx, a)
			})
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "number of consumers (overrides WORKER_COUNT)")
	return cmd
}

func runWorkers(ctx context.Context, a *app.App) error {
	client, err := a.Redis(ctx)
	if err != nil {
		return err
	}

	mailer, err := a.DirectMailer(ctx)
	if err != nil {
		return fmt.Errorf("set up mailer: %w", err)
	}

	cfg := worker.DefaultManagerConfig()
	if a.Config.WorkerCount > 0 {
		cfg.WorkerCount = a.Config.WorkerCount
	}

	manager := worker.NewManager(
		queue.NewConsumer(client.Client, a.Log),
		worker.NewHandler(mailer, a.Log),
		cfg,
		a.Log,
	)
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}

	<-ctx.Done()
	a.Log.Info("stopping workers", zap.Int("count", cfg.WorkerCount))
	manager.Stop()
	return nil
}
