package testplan

import (
	"context"

	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrSubmissionFailed = errors.New("tests not submitted")

type Scheduler interface {
	SubmitTests(ctx context.Context, submission avisa.TestSubmission) ([]avisa.TestRecord, error)
}

type Submitter struct {
	log       *zap.Logger
	scheduler Scheduler
}

func NewSubmitter(log *zap.Logger, scheduler Scheduler) *Submitter {
	return &Submitter{log: log, scheduler: scheduler}
}

// Submit returns an empty slice alongside the error when the lab refuses
// the plan, callers can treat that as nothing to monitor.
func (s *Submitter) Submit(ctx context.Context, submission avisa.TestSubmission) ([]avisa.TestRecord, error) {
	s.log.Info("submitting tests", zap.Int("count", len(submission.Tests)))

	records, err := s.scheduler.SubmitTests(ctx, submission)
	if err != nil {
		s.log.Error("test submission failed", zap.Error(err))
		return []avisa.TestRecord{}, multierr.Combine(
			errors.Wrapf(ErrSubmissionFailed, "deployment %s", submission.DeploymentID), err,
		)
	}

	for _, record := range records {
		s.log.Info("test scheduled",
			zap.String("testID", string(record.TestID)),
			zap.String("deviceID", string(record.DeviceID)),
		)
	}

	return records, nil
}
