package main

import (
	"context"
	"strings"

	"github.com/oneee-playground/playback-tester/internal/orchestrator"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type runner interface {
	Run(ctx context.Context, rc orchestrator.RunContext) *orchestrator.Report
}

// noArgs rejects positional arguments, every input is a flag.
func noArgs(args []string) error {
	if len(args) > 0 {
		return errors.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}
	return nil
}

// selectAssets takes exactly one of a single URL or a list file.
func selectAssets(asset, listPath string) ([]string, error) {
	asset, listPath = strings.TrimSpace(asset), strings.TrimSpace(listPath)

	switch {
	case asset != "" && listPath != "":
		return nil, errors.New("use either -a or -al, not both")
	case asset != "":
		return []string{asset}, nil
	case listPath != "":
		return loadAssets(listPath)
	default:
		return nil, errors.New("one of -a or -al is required")
	}
}

// playback runs every asset in turn, each with its own deployment.
// Without detach it waits for the monitors of a run before starting the next.
func playback(
	ctx context.Context, logger *zap.Logger, r runner,
	assets []string, params orchestrator.Params, detach bool,
) error {
	var errs error

	for _, asset := range assets {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}

		p := params
		p.AssetURL = asset

		report := r.Run(ctx, orchestrator.NewRunContext(p))

		if !detach {
			waitCtx, cancel := context.WithTimeout(ctx, orchestrator.WaitBudget(p.DurationSeconds))
			report.Wait(waitCtx)
			cancel()
		}

		log := logger.With(zap.String("deploymentID", string(report.DeploymentID)))
		if err := report.Err(); err != nil {
			log.Error("playback test finished with errors", zap.String("asset", asset), zap.Error(err))
			errs = multierr.Append(errs, errors.Wrapf(err, "asset %s", asset))
			continue
		}

		log.Info("playback test finished", zap.String("asset", asset), zap.Duration("took", report.Took))
	}

	return errs
}
