package avisa

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// DeploymentID correlates a reservation with every test scheduled on it.
type DeploymentID string

// ID is a device or test identifier. The scheduling service is not
// consistent about sending them as strings or numbers.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Wrap(err, "decoding id")
	}

	*id = ID(n.String())
	return nil
}

type DeviceSpec struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	OSVersion    string `json:"os_version"`
	PPVersion    string `json:"pp_version"`
	OS           string `json:"os"`
	TotalDevices int    `json:"total_devices"`
}

type ReservationRequest struct {
	DeploymentID DeploymentID `json:"deployment_id"`
	GroupName    string       `json:"group_name"`
	Devices      []DeviceSpec `json:"devices"`
}

type ReservedDevice struct {
	DeviceID ID     `json:"device_id"`
	OS       string `json:"os,omitempty"`
}

type Device struct {
	OS string `json:"os"`
}

type TestStep struct {
	Step     int    `json:"step"`
	Name     string `json:"name"`
	Data     string `json:"data"`
	Duration int    `json:"duration"`
}

type TestPlanEntry struct {
	Name   string     `json:"name"`
	Device ID         `json:"device"`
	Steps  []TestStep `json:"steps"`
}

type TestSubmission struct {
	DeploymentID DeploymentID    `json:"deployment_id"`
	Tests        []TestPlanEntry `json:"tests"`
}

type TestRecord struct {
	TestID       ID           `json:"test_id"`
	DeviceID     ID           `json:"device_id"`
	DeploymentID DeploymentID `json:"deployment_id"`
}

// TestStatus is the raw status code reported for a scheduled test.
type TestStatus int

const (
	StatusNotStarted TestStatus = 1
	StatusInProgress TestStatus = 2
	StatusCompleted  TestStatus = 3
)

func (s TestStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "NOT STARTED"
	case StatusInProgress:
		return "IN PROGRESS"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return "STATUS(" + strconv.Itoa(int(s)) + ")"
	}
}

// UnmarshalJSON accepts integral numbers written with a fraction, like 3.0.
func (s *TestStatus) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Wrap(err, "decoding test status")
	}

	if i, err := n.Int64(); err == nil {
		*s = TestStatus(i)
		return nil
	}

	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return errors.Errorf("test status %s is not an integer", n)
	}

	*s = TestStatus(f)
	return nil
}
