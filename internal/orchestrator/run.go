package orchestrator

import (
	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/oneee-playground/playback-tester/internal/reservation"
)

// Params is what a caller asks for, already resolved from flags or a job.
type Params struct {
	GroupName       string
	Platforms       []string
	AssetURL        string
	DurationSeconds int
	Model           string
	OSVersion       string
}

// RunContext is fixed for the lifetime of one run. Pass it by value.
type RunContext struct {
	DeploymentID avisa.DeploymentID
	Params
}

func NewRunContext(p Params) RunContext {
	return RunContext{
		DeploymentID: reservation.NewDeploymentID(),
		Params:       p,
	}
}

// RunState is what the lab handed back while the run progressed.
type RunState struct {
	Reserved  []avisa.ReservedDevice
	Submitted []avisa.TestRecord
}
