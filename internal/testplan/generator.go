package testplan

import (
	"context"

	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const TestName = "AVISA-CLI-PLAYBACK-TEST"

const (
	StepLoadConfig = "loadconfig"
	StepProvision  = "provision"
	StepSetAsset   = "setasset"
	StepStop       = "stop"

	// fixedStepDuration applies to every step but setasset.
	fixedStepDuration = 10
)

var ErrUnknownPlatform = errors.New("unknown platform")

// DefaultConfigURLs maps the OS reported by the lab to the player configuration.
var DefaultConfigURLs = map[string]string{
	"ANDROID": "http://10.22.236.231/playerqa/configuration/android/demoConf.json",
	"IOS":     "http://10.22.236.231/playerqa/configuration/ios/demoConf.json",
	"OSX":     "http://10.22.236.231/playerqa/configuration/js/demoConf.json",
	"WIN":     "http://10.22.236.231/playerqa/configuration/js/demoConf.json",
}

type DeviceLookup interface {
	Device(ctx context.Context, id avisa.ID) (avisa.Device, error)
}

type Generator struct {
	Devices    DeviceLookup
	ConfigURLs map[string]string
	Credential string
}

func NewGenerator(devices DeviceLookup, credential string) *Generator {
	return &Generator{
		Devices:    devices,
		ConfigURLs: DefaultConfigURLs,
		Credential: credential,
	}
}

// Generate builds one plan entry per reserved device. A device whose OS
// cannot be resolved is left out and reported in the returned error; the
// entries for the remaining devices are still returned.
func (g *Generator) Generate(
	ctx context.Context,
	id avisa.DeploymentID, devices []avisa.ReservedDevice,
	assetURL string, durationSeconds int,
) (avisa.TestSubmission, error) {
	submission := avisa.TestSubmission{
		DeploymentID: id,
		Tests:        make([]avisa.TestPlanEntry, 0, len(devices)),
	}

	var errs error
	for _, device := range devices {
		configURL, err := g.configURL(ctx, device.DeviceID)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "device %s", device.DeviceID))
			continue
		}

		submission.Tests = append(submission.Tests, avisa.TestPlanEntry{
			Name:   TestName,
			Device: device.DeviceID,
			Steps:  g.steps(configURL, assetURL, durationSeconds),
		})
	}

	return submission, errs
}

func (g *Generator) configURL(ctx context.Context, id avisa.ID) (string, error) {
	device, err := g.Devices.Device(ctx, id)
	if err != nil {
		return "", errors.Wrap(err, "looking up device")
	}

	url, ok := g.ConfigURLs[device.OS]
	if !ok {
		return "", errors.Wrapf(ErrUnknownPlatform, "os %q", device.OS)
	}
	return url, nil
}

// Step numbers skip 4, the lab expects it that way.
func (g *Generator) steps(configURL, assetURL string, durationSeconds int) []avisa.TestStep {
	return []avisa.TestStep{
		{Step: 1, Name: StepLoadConfig, Data: configURL, Duration: fixedStepDuration},
		{Step: 2, Name: StepProvision, Data: g.Credential, Duration: fixedStepDuration},
		{Step: 3, Name: StepSetAsset, Data: assetURL, Duration: durationSeconds},
		{Step: 5, Name: StepStop, Data: "", Duration: fixedStepDuration},
	}
}
