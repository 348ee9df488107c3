package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/oneee-playground/playback-tester/internal/device"
	"github.com/oneee-playground/playback-tester/internal/event"
	"github.com/oneee-playground/playback-tester/internal/monitor"
	"github.com/oneee-playground/playback-tester/internal/util/stream"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Reserver interface {
	Reserve(ctx context.Context, id avisa.DeploymentID, groupName string, specs []avisa.DeviceSpec) ([]avisa.ReservedDevice, error)
	Release(ctx context.Context, id avisa.DeploymentID) error
}

type PlanGenerator interface {
	Generate(ctx context.Context, id avisa.DeploymentID, devices []avisa.ReservedDevice, assetURL string, durationSeconds int) (avisa.TestSubmission, error)
}

type TestSubmitter interface {
	Submit(ctx context.Context, submission avisa.TestSubmission) ([]avisa.TestRecord, error)
}

type TestMonitor interface {
	Run(ctx context.Context, record avisa.TestRecord, durationSeconds int) monitor.Outcome
}

type Opts struct {
	Log *zap.Logger

	Reservations Reserver
	Generator    PlanGenerator
	Submitter    TestSubmitter
	Monitor      TestMonitor

	// Publisher is optional.
	Publisher  event.Publisher
	ResultsURL func(testID avisa.ID) string
}

type Orchestrator struct {
	Opts
}

func New(opts Opts) *Orchestrator {
	return &Orchestrator{Opts: opts}
}

// Run reserves devices, schedules a playback test on each of them, starts
// monitoring and releases the reservation. It does not wait for the
// monitors, use Report.Wait for that. Failures never stop the run short
// of releasing the reservation, they are collected in the report.
func (o *Orchestrator) Run(ctx context.Context, rc RunContext) *Report {
	log := o.Log.With(zap.String("deploymentID", string(rc.DeploymentID)))
	log.Info("playback test started",
		zap.String("group", rc.GroupName),
		zap.String("asset", rc.AssetURL),
		zap.Int("duration", rc.DurationSeconds),
	)

	start := time.Now()
	report := &Report{DeploymentID: rc.DeploymentID}

	defer func() {
		o.release(ctx, log, rc.DeploymentID, report)
		report.Took = time.Since(start)
	}()

	specs := device.Build(device.Request{
		Platforms: rc.Platforms,
		Model:     rc.Model,
		OSVersion: rc.OSVersion,
	})

	reserved, err := o.Reservations.Reserve(ctx, rc.DeploymentID, rc.GroupName, specs)
	if err != nil {
		report.addErr(err)
	}
	report.State.Reserved = reserved

	if len(reserved) == 0 {
		log.Error("no devices reserved, skipping test generation")
		if err == nil {
			report.addErr(ErrNoDevices)
		}
		return report
	}

	report.State.Submitted = o.submit(ctx, log, rc, reserved, report)
	if len(report.State.Submitted) == 0 {
		log.Error("tests not submitted")
		return report
	}

	report.outcomes = o.launchMonitors(ctx, log, rc, report.State.Submitted)

	return report
}

func (o *Orchestrator) submit(
	ctx context.Context, log *zap.Logger,
	rc RunContext, reserved []avisa.ReservedDevice, report *Report,
) []avisa.TestRecord {
	submission, err := o.Generator.Generate(ctx, rc.DeploymentID, reserved, rc.AssetURL, rc.DurationSeconds)
	if err != nil {
		log.Error("failed to generate tests for some devices", zap.Error(err))
		report.addErr(errors.Wrap(err, "generating tests"))
	}

	if len(submission.Tests) == 0 {
		if err == nil {
			report.addErr(ErrNoTests)
		}
		return nil
	}

	records, err := o.Submitter.Submit(ctx, submission)
	if err != nil {
		report.addErr(err)
		return nil
	}
	if len(records) == 0 {
		report.addErr(ErrNoTests)
	}

	return records
}

// launchMonitors starts one goroutine per test. Each one owns its poll
// loop and reports exactly one outcome.
func (o *Orchestrator) launchMonitors(
	ctx context.Context, log *zap.Logger,
	rc RunContext, records []avisa.TestRecord,
) <-chan monitor.Outcome {
	streams := make([]<-chan monitor.Outcome, len(records))

	for idx, record := range records {
		c := make(chan monitor.Outcome, 1)
		streams[idx] = c

		go func(record avisa.TestRecord) {
			defer close(c)

			out := o.Monitor.Run(ctx, record, rc.DurationSeconds)
			o.publish(ctx, log, rc, out)
			c <- out
		}(record)

		log.Info("monitoring test",
			zap.String("deviceID", string(record.DeviceID)),
			zap.String("testID", string(record.TestID)),
		)
	}

	return stream.FanIn(streams...)
}

func (o *Orchestrator) publish(ctx context.Context, log *zap.Logger, rc RunContext, out monitor.Outcome) {
	if o.Publisher == nil {
		return
	}

	e := event.TestEvent{
		ID:           uuid.New(),
		DeploymentID: string(rc.DeploymentID),
		TestID:       string(out.Record.TestID),
		DeviceID:     string(out.Record.DeviceID),
		State:        out.State.String(),
		Status:       int(out.LastStatus),
		Success:      out.State == monitor.StateCompleted,
		Took:         out.Took,
		ResultsURL:   out.ResultsURL,
	}

	if err := o.Publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		log.Error("failed to publish test event", zap.String("testID", e.TestID), zap.Error(err))
	}
}

// release runs exactly once per run, after monitors were launched.
func (o *Orchestrator) release(ctx context.Context, log *zap.Logger, id avisa.DeploymentID, report *Report) {
	if err := o.Reservations.Release(context.WithoutCancel(ctx), id); err != nil {
		report.addErr(err)
	}

	for _, record := range report.State.Submitted {
		url := ""
		if o.ResultsURL != nil {
			url = o.ResultsURL(record.TestID)
		}
		log.Info("playback test scheduled",
			zap.String("deviceID", string(record.DeviceID)),
			zap.String("testID", string(record.TestID)),
			zap.String("results", url),
		)
	}
}
