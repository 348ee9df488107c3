package job

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidJob = errors.New("invalid job")

// Job asks for one playback run. Empty platforms mean the default device.
type Job struct {
	GroupName string   `json:"groupName"`
	Platforms []string `json:"platforms"`
	AssetURL  string   `json:"assetURL"`
	Duration  int      `json:"duration"`
	Model     string   `json:"model,omitempty"`
	OSVersion string   `json:"osVersion,omitempty"`
}

func (j Job) Validate() error {
	if strings.TrimSpace(j.GroupName) == "" {
		return errors.Wrap(ErrInvalidJob, "groupName is required")
	}
	if strings.TrimSpace(j.AssetURL) == "" {
		return errors.Wrap(ErrInvalidJob, "assetURL is required")
	}
	if j.Duration <= 0 {
		return errors.Wrapf(ErrInvalidJob, "duration must be positive, got %d", j.Duration)
	}
	return nil
}
