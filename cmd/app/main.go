package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/oneee-playground/playback-tester/internal/bootstrap"
	conf "github.com/oneee-playground/playback-tester/internal/config"
	"github.com/oneee-playground/playback-tester/internal/job"
	"github.com/oneee-playground/playback-tester/internal/orchestrator"
	"github.com/oneee-playground/playback-tester/internal/server"
	"go.uber.org/zap"
)

func main() {
	conf.LoadFromEnv()

	logger := bootstrap.NewLogger(true)

	if conf.JobQueueURL == "" {
		logger.Fatal("JOB_QUEUE_URL is not set")
	}

	sqsClient := bootstrap.NewSQSClient()

	observer, flush := bootstrap.Observer(logger)
	defer flush()

	service := avisa.NewService(avisa.NewClient(logger, conf.APIHost, conf.HTTPTimeout))
	orch := orchestrator.NewForService(
		logger, service, conf.ProvisionCredential,
		observer, bootstrap.Publisher(logger, sqsClient),
	)

	serverOpts := server.ServerOpts{
		JobPoller:    job.NewPoller(sqsClient, conf.JobQueueURL),
		PollInterval: 10 * time.Second,
		Runner:       orch,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(logger, serverOpts)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("serve failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
