package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const Topic = "playback-test"

// TestEvent reports how monitoring of one scheduled test ended.
type TestEvent struct {
	ID           uuid.UUID     `json:"id"`
	DeploymentID string        `json:"deploymentID"`
	TestID       string        `json:"testID"`
	DeviceID     string        `json:"deviceID"`
	State        string        `json:"state"`
	Status       int           `json:"status"`
	Success      bool          `json:"success"`
	Took         time.Duration `json:"took"`
	ResultsURL   string        `json:"resultsURL,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e TestEvent) error
}
