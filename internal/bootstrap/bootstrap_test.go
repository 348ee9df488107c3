package bootstrap

import (
	"testing"

	conf "github.com/oneee-playground/playback-tester/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestOptionalSinks(t *testing.T) {
	t.Setenv("EVENT_QUEUE_URL", "")
	t.Setenv("INFLUX_URL", "")
	conf.LoadFromEnv()

	client := NewSQSClient()

	assert.Nil(t, Publisher(zap.NewNop(), client))

	observer, closeFn := Observer(zap.NewNop())
	assert.Nil(t, observer)
	closeFn()

	t.Setenv("EVENT_QUEUE_URL", "https://sqs.example/events")
	conf.LoadFromEnv()

	assert.NotNil(t, Publisher(zap.NewNop(), client))
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, NewLogger(true))
	assert.NotNil(t, NewLogger(false))
}
