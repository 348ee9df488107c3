package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// sequence replays statuses, repeating the last one forever.
type sequence struct {
	mu       sync.Mutex
	statuses []int
	failAt   map[int]bool
	calls    int
}

func (s *sequence) TestStatus(ctx context.Context, testID avisa.ID) (avisa.TestStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.failAt[s.calls] {
		return 0, errors.Wrap(avisa.ErrTransport, "connection refused")
	}

	idx := s.calls - 1
	if idx >= len(s.statuses) {
		idx = len(s.statuses) - 1
	}
	return avisa.TestStatus(s.statuses[idx]), nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return ctx.Err()
}

type recorder struct {
	statuses []avisa.TestStatus
	outcomes []Outcome
}

func (r *recorder) ObserveStatus(record avisa.TestRecord, status avisa.TestStatus, at time.Time) {
	r.statuses = append(r.statuses, status)
}

func (r *recorder) ObserveOutcome(outcome Outcome) {
	r.outcomes = append(r.outcomes, outcome)
}

func newTestMonitor(fetcher StatusFetcher, obs Observer) (*Monitor, *fakeClock, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	m := New(Opts{
		Log:      zap.New(core),
		Service:  fetcher,
		Observer: obs,
		ResultsURL: func(testID avisa.ID) string {
			return "http://lab/ui/results/" + string(testID)
		},
	})
	m.now = clock.Now
	m.sleep = clock.Sleep

	return m, clock, logs
}

var record = avisa.TestRecord{TestID: "t1", DeviceID: "d1", DeploymentID: "abc"}

func TestMonitorStates(t *testing.T) {
	testcases := []struct {
		desc      string
		statuses  []int
		expect    State
		polls     int
		lastState avisa.TestStatus
	}{
		{
			desc:      "completes",
			statuses:  []int{1, 1, 2, 2, 3},
			expect:    StateCompleted,
			polls:     5,
			lastState: avisa.StatusCompleted,
		},
		{
			desc:      "completes right away",
			statuses:  []int{3},
			expect:    StateCompleted,
			polls:     1,
			lastState: avisa.StatusCompleted,
		},
		{
			desc:      "anomalous status",
			statuses:  []int{1, 2, 5},
			expect:    StateAnomalous,
			polls:     3,
			lastState: 5,
		},
		{
			desc:      "zero is anomalous",
			statuses:  []int{0},
			expect:    StateAnomalous,
			polls:     1,
			lastState: 0,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			fetcher := &sequence{statuses: tc.statuses}
			obs := &recorder{}
			m, _, _ := newTestMonitor(fetcher, obs)

			out := m.Run(context.Background(), record, 120)

			assert.Equal(t, tc.expect, out.State)
			assert.True(t, out.State.Terminal())
			assert.Equal(t, tc.polls, out.Polls)
			assert.Equal(t, tc.polls, fetcher.calls)
			assert.Equal(t, tc.lastState, out.LastStatus)
			assert.Equal(t, record, out.Record)
			assert.Len(t, obs.statuses, tc.polls)
			require.Len(t, obs.outcomes, 1)
			assert.Equal(t, out, obs.outcomes[0])
		})
	}
}

func TestMonitorCompletedLogsResults(t *testing.T) {
	m, _, logs := newTestMonitor(&sequence{statuses: []int{1, 2, 2, 3}}, nil)

	out := m.Run(context.Background(), record, 120)

	assert.Equal(t, StateCompleted, out.State)
	assert.Equal(t, "http://lab/ui/results/t1", out.ResultsURL)

	completed := logs.FilterMessage("COMPLETED").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "http://lab/ui/results/t1", completed[0].ContextMap()["results"])
	assert.Equal(t, 1, logs.FilterMessage("NOT STARTED").Len())
	assert.Equal(t, 2, logs.FilterMessage("IN PROGRESS").Len())
}

func TestMonitorAnomalousLogsWarning(t *testing.T) {
	m, _, logs := newTestMonitor(&sequence{statuses: []int{1, 2, 5}}, nil)

	out := m.Run(context.Background(), record, 120)
	assert.Equal(t, StateAnomalous, out.State)
	assert.Empty(t, out.ResultsURL)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.EqualValues(t, 5, warnings[0].ContextMap()["status"])
}

func TestMonitorTimeout(t *testing.T) {
	fetcher := &sequence{statuses: []int{2}}
	m, clock, logs := newTestMonitor(fetcher, nil)
	start := clock.Now()

	out := m.Run(context.Background(), record, 1)

	assert.Equal(t, StateTimedOut, out.State)
	assert.Equal(t, avisa.StatusInProgress, out.LastStatus)

	// polls at 0s, 3s, ... and gives up once more than 601s passed
	assert.Equal(t, 201, fetcher.calls)
	assert.Equal(t, 603*time.Second, clock.Now().Sub(start))
	assert.Equal(t, 603*time.Second, out.Took)

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestMonitorKeepsPollingThroughFailures(t *testing.T) {
	fetcher := &sequence{statuses: []int{1, 1, 2, 3}, failAt: map[int]bool{2: true}}
	m, _, logs := newTestMonitor(fetcher, nil)

	out := m.Run(context.Background(), record, 120)

	assert.Equal(t, StateCompleted, out.State)
	assert.Equal(t, 4, fetcher.calls)
	assert.Equal(t, 1, logs.FilterMessage("failed to fetch test status").Len())
}

func TestMonitorFailuresUntilTimeout(t *testing.T) {
	fetcher := &sequence{statuses: []int{1}, failAt: map[int]bool{}}
	for i := 2; i < 1000; i++ {
		fetcher.failAt[i] = true
	}
	m, _, _ := newTestMonitor(fetcher, nil)

	out := m.Run(context.Background(), record, 0)

	assert.Equal(t, StateTimedOut, out.State)
	assert.Equal(t, avisa.StatusNotStarted, out.LastStatus)
}

func TestMonitorCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := New(Opts{Log: zap.NewNop(), Service: &sequence{statuses: []int{2}}})
	m.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome)
	go func() {
		done <- m.Run(ctx, record, 120)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case out := <-done:
		assert.Equal(t, StateCanceled, out.State)
		assert.True(t, out.State.Terminal())
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}

func TestMonitorsAreIndependent(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := New(Opts{Log: zap.NewNop(), Service: &perTest{
		statuses: map[avisa.ID][]int{"t1": {1, 3}, "t2": {2, 7}, "t3": {1, 2, 2, 3}},
	}})
	m.interval = time.Millisecond

	expect := map[avisa.ID]State{"t1": StateCompleted, "t2": StateAnomalous, "t3": StateCompleted}

	var wg sync.WaitGroup
	results := make(chan Outcome, len(expect))
	for id := range expect {
		wg.Add(1)
		go func(id avisa.ID) {
			defer wg.Done()
			results <- m.Run(context.Background(), avisa.TestRecord{TestID: id}, 60)
		}(id)
	}
	wg.Wait()
	close(results)

	for out := range results {
		assert.Equal(t, expect[out.Record.TestID], out.State, "test %s", out.Record.TestID)
	}
}

type perTest struct {
	mu       sync.Mutex
	statuses map[avisa.ID][]int
}

func (p *perTest) TestStatus(ctx context.Context, testID avisa.ID) (avisa.TestStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	seq := p.statuses[testID]
	status := seq[0]
	if len(seq) > 1 {
		p.statuses[testID] = seq[1:]
	}
	return avisa.TestStatus(status), nil
}

func TestLimit(t *testing.T) {
	assert.Equal(t, 720*time.Second, Limit(120))
	assert.Equal(t, SetupAllowance, Limit(0))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "COMPLETED", StateCompleted.String())
	assert.Equal(t, "TIMED_OUT", StateTimedOut.String())
	assert.False(t, StateInProgress.Terminal())
	assert.False(t, StateNotStarted.Terminal())
}
