// Package bootstrap builds the clients both binaries share from config.
package bootstrap

import (
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	influxdb2 "github.com/influxdata/influxdb-client-go"
	conf "github.com/oneee-playground/playback-tester/internal/config"
	"github.com/oneee-playground/playback-tester/internal/event"
	"github.com/oneee-playground/playback-tester/internal/metric"
	"github.com/oneee-playground/playback-tester/internal/monitor"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(json bool) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	if json {
		encoder = zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
	}

	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zap.DebugLevel))
}

func NewSQSClient() *sqs.Client {
	awsConfig := aws.Config{
		Region:      conf.AWSRegion,
		Credentials: credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, ""),
	}

	return sqs.NewFromConfig(awsConfig)
}

// Publisher is nil unless an event queue is configured.
func Publisher(logger *zap.Logger, client *sqs.Client) event.Publisher {
	if conf.EventQueueURL == "" {
		return nil
	}
	return event.NewSQSEventBus(client, logger, conf.EventQueueURL)
}

// Observer is nil unless InfluxDB is configured. The returned func flushes
// pending points and must be called before exit.
func Observer(logger *zap.Logger) (monitor.Observer, func()) {
	if conf.InfluxURL == "" {
		return nil, func() {}
	}

	client := influxdb2.NewClientWithOptions(conf.InfluxURL, conf.InfluxToken, influxdb2.DefaultOptions())
	storage := metric.NewStorage(logger, client, conf.InfluxOrg, conf.InfluxBucket)
	session := storage.Open()

	return metric.NewRecorder(session), func() {
		session.Close()
		storage.Close()
	}
}
