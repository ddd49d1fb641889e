package cmd

import (
	"errors"

	"hrportal/onboarding-api/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Delivers queued verification codes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if a.cfg.Redis.Addr == "" {
			return errors.New("redis.addr is required to run the worker")
		}

		srv, mux := service.NewWorker(a.cfg.Redis, service.NewDispatcher(a.cfg), workerConcurrency)

		zap.L().Info("Worker starting", zap.String("redis", a.cfg.Redis.Addr), zap.Int("concurrency", workerConcurrency))

		// Run blocks until SIGINT or SIGTERM
		return srv.Run(mux)
	},
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 4, "Number of codes delivered at once")
}
