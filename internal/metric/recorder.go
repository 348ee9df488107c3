package metric

import (
	"time"

	"github.com/influxdata/influxdb-client-go/api/write"
	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/oneee-playground/playback-tester/internal/monitor"
)

const (
	MeasurementStatus  = "test-status"
	MeasurementOutcome = "test-outcome"
)

type PointWriter interface {
	Write(point *write.Point)
}

// Recorder turns monitor observations into points.
type Recorder struct {
	writer PointWriter
	now    func() time.Time
}

var _ monitor.Observer = (*Recorder)(nil)

func NewRecorder(writer PointWriter) *Recorder {
	return &Recorder{writer: writer, now: time.Now}
}

func (r *Recorder) ObserveStatus(record avisa.TestRecord, status avisa.TestStatus, at time.Time) {
	r.writer.Write(write.NewPoint(
		MeasurementStatus,
		tags(record),
		map[string]interface{}{"status": int(status)},
		at,
	))
}

func (r *Recorder) ObserveOutcome(outcome monitor.Outcome) {
	r.writer.Write(write.NewPoint(
		MeasurementOutcome,
		tags(outcome.Record),
		map[string]interface{}{
			"state":       outcome.State.String(),
			"last-status": int(outcome.LastStatus),
			"polls":       outcome.Polls,
			"took-ms":     outcome.Took.Milliseconds(),
		},
		r.now(),
	))
}

func tags(record avisa.TestRecord) map[string]string {
	return map[string]string{
		"deployment-id": string(record.DeploymentID),
		"device-id":     string(record.DeviceID),
		"test-id":       string(record.TestID),
	}
}
