package monitor

import (
	"context"
	"time"

	"github.com/oneee-playground/playback-tester/internal/avisa"
	"go.uber.org/zap"
)

const (
	PollInterval = 3 * time.Second

	// SetupAllowance covers player build, launch, config load, stop and
	// teardown on top of the playback itself.
	SetupAllowance = 600 * time.Second
)

// Limit is how long a test with the given playback duration is watched.
func Limit(durationSeconds int) time.Duration {
	return time.Duration(durationSeconds)*time.Second + SetupAllowance
}

type StatusFetcher interface {
	TestStatus(ctx context.Context, testID avisa.ID) (avisa.TestStatus, error)
}

// Observer receives every status read and the final outcome.
type Observer interface {
	ObserveStatus(record avisa.TestRecord, status avisa.TestStatus, at time.Time)
	ObserveOutcome(outcome Outcome)
}

type Outcome struct {
	Record     avisa.TestRecord
	State      State
	LastStatus avisa.TestStatus
	ResultsURL string
	Polls      int
	Took       time.Duration
}

type Opts struct {
	Log        *zap.Logger
	Service    StatusFetcher
	Observer   Observer
	ResultsURL func(testID avisa.ID) string
}

// Monitor polls one test at a time. A single Monitor may run many tests
// concurrently, it holds no per-test state.
type Monitor struct {
	Opts

	interval  time.Duration
	allowance time.Duration
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

func New(opts Opts) *Monitor {
	return &Monitor{
		Opts:      opts,
		interval:  PollInterval,
		allowance: SetupAllowance,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Run polls until the test reaches a terminal state, the time limit
// passes or ctx is done. It never cancels the test on the lab side.
func (m *Monitor) Run(ctx context.Context, record avisa.TestRecord, durationSeconds int) Outcome {
	log := m.Log.With(
		zap.String("deviceID", string(record.DeviceID)),
		zap.String("testID", string(record.TestID)),
	)

	start := m.now()
	limit := time.Duration(durationSeconds)*time.Second + m.allowance

	out := Outcome{Record: record, State: StateNotStarted}

	for {
		if m.poll(ctx, log, &out) {
			return m.finish(out, start)
		}

		if err := m.sleep(ctx, m.interval); err != nil {
			log.Warn("monitoring canceled", zap.Error(err))
			out.State = StateCanceled
			return m.finish(out, start)
		}

		if elapsed := m.now().Sub(start); elapsed > limit {
			log.Warn("test exceeded the standard test duration, stopping test",
				zap.Duration("elapsed", elapsed),
				zap.Duration("limit", limit),
			)
			log.Error("exiting playback test monitoring", zap.Stringer("lastState", out.State))
			out.State = StateTimedOut
			return m.finish(out, start)
		}
	}
}

// poll reads the status once and reports whether monitoring is over.
func (m *Monitor) poll(ctx context.Context, log *zap.Logger, out *Outcome) (done bool) {
	out.Polls++

	status, err := m.Service.TestStatus(ctx, out.Record.TestID)
	if err != nil {
		log.Warn("failed to fetch test status", zap.Error(err))
		return false
	}

	out.LastStatus = status
	if m.Observer != nil {
		m.Observer.ObserveStatus(out.Record, status, m.now())
	}

	switch status {
	case avisa.StatusNotStarted:
		out.State = StateNotStarted
		log.Info("NOT STARTED")
	case avisa.StatusInProgress:
		out.State = StateInProgress
		log.Info("IN PROGRESS")
	case avisa.StatusCompleted:
		out.State = StateCompleted
		if m.ResultsURL != nil {
			out.ResultsURL = m.ResultsURL(out.Record.TestID)
		}
		log.Info("COMPLETED", zap.String("results", out.ResultsURL))
		return true
	default:
		out.State = StateAnomalous
		log.Warn("COMPLETED with unexpected status", zap.Int("status", int(status)))
		return true
	}

	return false
}

func (m *Monitor) finish(out Outcome, start time.Time) Outcome {
	out.Took = m.now().Sub(start)
	if m.Observer != nil {
		m.Observer.ObserveOutcome(out)
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
