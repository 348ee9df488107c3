package metric

import (
	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/influxdata/influxdb-client-go/api/write"
	"go.uber.org/zap"
)

// Storage is the InfluxDB bucket test observations end up in.
type Storage struct {
	log    *zap.Logger
	client influxdb2.Client

	org, bucket string
}

func NewStorage(log *zap.Logger, client influxdb2.Client, org, bucket string) *Storage {
	return &Storage{log: log, client: client, org: org, bucket: bucket}
}

// Open starts a batching writer. Failed writes are logged and dropped,
// monitoring never waits on the metric backend.
func (s *Storage) Open() *WriteSession {
	writer := s.client.WriteAPI(s.org, s.bucket)

	errs := writer.Errors()
	go func() {
		for err := range errs {
			s.log.Warn("failed to write test metrics", zap.String("bucket", s.bucket), zap.Error(err))
		}
	}()

	return &WriteSession{writer: writer}
}

func (s *Storage) Close() {
	s.client.Close()
}

type WriteSession struct {
	writer api.WriteAPI
}

var _ PointWriter = (*WriteSession)(nil)

func (ws *WriteSession) Write(point *write.Point) {
	ws.writer.WritePoint(point)
}

// Close flushes pending points.
func (ws *WriteSession) Close() {
	ws.writer.Flush()
	ws.writer.Close()
}
