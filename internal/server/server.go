package server

import (
	"context"
	"time"

	"github.com/oneee-playground/playback-tester/internal/job"
	"github.com/oneee-playground/playback-tester/internal/orchestrator"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// visibilityMargin covers reservation and submission ahead of monitoring.
const visibilityMargin = 5 * time.Minute

type Runner interface {
	Run(ctx context.Context, rc orchestrator.RunContext) *orchestrator.Report
}

type ServerOpts struct {
	JobPoller    job.Poller
	PollInterval time.Duration
	Runner       Runner
}

type Server struct {
	log *zap.Logger

	ServerOpts
}

func New(logger *zap.Logger, opts ServerOpts) *Server {
	return &Server{log: logger, ServerOpts: opts}
}

// Run handles one job at a time until ctx is done. A job is marked as done
// once its run finished, whatever the outcome.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("Server running")

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		id, received, err := s.JobPoller.Poll(ctx)
		if err != nil {
			if errors.Is(err, job.NoErrEmptyJobs) {
				continue
			}
			s.log.Error("failed to poll a job", zap.Error(err))
			// A message that was received but cannot be decoded never will be.
			if id != "" {
				s.drop(ctx, id)
			}
			continue
		}

		// Other workers must not pick the job up while it runs.
		if err := s.JobPoller.Extend(ctx, id, orchestrator.WaitBudget(received.Duration)+visibilityMargin); err != nil {
			s.log.Warn("failed to extend job visibility", zap.Error(err))
		}

		s.handle(ctx, received)

		if err := s.JobPoller.MarkAsDone(ctx, id); err != nil {
			s.log.Error("failed to mark a job as done", zap.Error(err))
			continue
		}
	}
}

func (s *Server) handle(ctx context.Context, received job.Job) {
	rc := orchestrator.NewRunContext(orchestrator.Params{
		GroupName:       received.GroupName,
		Platforms:       received.Platforms,
		AssetURL:        received.AssetURL,
		DurationSeconds: received.Duration,
		Model:           received.Model,
		OSVersion:       received.OSVersion,
	})

	log := s.log.With(zap.String("deploymentID", string(rc.DeploymentID)))
	log.Info("polled job", zap.String("group", received.GroupName), zap.String("asset", received.AssetURL))

	report := s.Runner.Run(ctx, rc)

	waitCtx, cancel := context.WithTimeout(ctx, orchestrator.WaitBudget(received.Duration))
	defer cancel()

	outcomes := report.Wait(waitCtx)

	if err := report.Err(); err != nil {
		log.Error("playback test failed", zap.Error(err), zap.Int("monitored", len(outcomes)))
		return
	}

	log.Info("playback test finished", zap.Int("monitored", len(outcomes)), zap.Duration("took", report.Took))
}

// drop removes a message that can never be handled.
func (s *Server) drop(ctx context.Context, id string) {
	if err := s.JobPoller.MarkAsDone(ctx, id); err != nil {
		s.log.Error("failed to drop a job", zap.Error(err))
	}
}
