package device

import (
	"strings"

	"github.com/oneee-playground/playback-tester/internal/avisa"
)

const Any = "*"

type Request struct {
	Platforms []string
	Model     string
	OSVersion string
}

// Build turns a request into reservation specs, one device each.
// Without any platform tokens a single OSX device is requested.
func Build(req Request) []avisa.DeviceSpec {
	model := orAny(req.Model)
	osVersion := orAny(req.OSVersion)

	if isBlank(req.Platforms) {
		return []avisa.DeviceSpec{newSpec("APPLE", "OSX", model, osVersion)}
	}

	selected := ParsePlatforms(req.Platforms...)

	specs := make([]avisa.DeviceSpec, 0, len(selected))
	for _, p := range selected {
		specs = append(specs, newSpec(p.make(), p.os(), model, osVersion))
	}
	return specs
}

func newSpec(vendor, osName, model, osVersion string) avisa.DeviceSpec {
	return avisa.DeviceSpec{
		Make:         vendor,
		Model:        model,
		OSVersion:    osVersion,
		PPVersion:    Any,
		OS:           osName,
		TotalDevices: 1,
	}
}

func orAny(s string) string {
	if strings.TrimSpace(s) == "" {
		return Any
	}
	return s
}

func isBlank(tokens []string) bool {
	for _, t := range tokens {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}
