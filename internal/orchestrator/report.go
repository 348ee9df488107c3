package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/oneee-playground/playback-tester/internal/monitor"
	"github.com/oneee-playground/playback-tester/internal/util/stream"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	ErrNoDevices        = errors.New("no devices reserved")
	ErrNoTests          = errors.New("tests not submitted")
	ErrMonitorAnomalous = errors.New("test finished with unexpected status")
	ErrMonitorTimeout   = errors.New("test exceeded the standard test duration")
	ErrMonitorCanceled  = errors.New("test monitoring canceled")
)

// waitGrace covers the last poll and its request timeout after the limit passed.
const waitGrace = 30 * time.Second

// WaitBudget bounds how long a caller should wait for the monitors of a run.
func WaitBudget(durationSeconds int) time.Duration {
	return monitor.Limit(durationSeconds) + waitGrace
}

// Report is returned once monitors are launched and the reservation has
// been released. Monitors keep running until Wait collects them.
type Report struct {
	DeploymentID avisa.DeploymentID
	State        RunState
	Took         time.Duration

	outcomes <-chan monitor.Outcome
	waitMu   sync.Mutex
	done     bool

	mu      sync.Mutex
	err     error
	results []monitor.Outcome
}

func (r *Report) addErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = multierr.Append(r.err, err)
}

// Err combines every failure of the run, including monitor outcomes
// gathered by Wait so far.
func (r *Report) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait blocks until every launched monitor finished or ctx is done and
// returns the outcomes gathered so far. It may be called again after ctx
// expired to keep collecting.
func (r *Report) Wait(ctx context.Context) []monitor.Outcome {
	r.waitMu.Lock()
	defer r.waitMu.Unlock()

	if !r.done && r.outcomes != nil {
		got, err := stream.Collect(ctx, r.outcomes)

		r.mu.Lock()
		for _, out := range got {
			r.err = multierr.Append(r.err, outcomeErr(out))
		}
		r.results = append(r.results, got...)

		if err != nil {
			r.err = multierr.Append(r.err, errors.Wrap(err, "waiting for monitors"))
		} else {
			r.done = true
		}
		r.mu.Unlock()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]monitor.Outcome(nil), r.results...)
}

func outcomeErr(out monitor.Outcome) error {
	var sentinel error
	switch out.State {
	case monitor.StateCompleted:
		return nil
	case monitor.StateAnomalous:
		sentinel = ErrMonitorAnomalous
	case monitor.StateTimedOut:
		sentinel = ErrMonitorTimeout
	default:
		sentinel = ErrMonitorCanceled
	}
	return errors.Wrapf(sentinel, "test %s on device %s (status %d)", out.Record.TestID, out.Record.DeviceID, out.LastStatus)
}
