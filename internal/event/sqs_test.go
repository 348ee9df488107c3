package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSender) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{MessageId: aws.String("m1")}, nil
}

func TestPublish(t *testing.T) {
	sender := &fakeSender{}
	publisher := NewSQSEventBus(sender, zap.NewNop(), "https://sqs/events")

	e := TestEvent{
		ID:           uuid.New(),
		DeploymentID: "abc",
		TestID:       "t1",
		DeviceID:     "d1",
		State:        "COMPLETED",
		Status:       3,
		Success:      true,
		Took:         time.Minute,
		ResultsURL:   "http://lab/ui/results/t1",
	}

	require.NoError(t, publisher.Publish(context.Background(), e))
	require.Len(t, sender.inputs, 1)

	input := sender.inputs[0]
	assert.Equal(t, "https://sqs/events", aws.StringValue(input.QueueUrl))
	assert.Equal(t, Topic, aws.StringValue(input.MessageAttributes["topic"].StringValue))

	var got TestEvent
	require.NoError(t, json.Unmarshal([]byte(aws.StringValue(input.MessageBody)), &got))
	assert.Equal(t, e, got)
}

func TestPublishFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("throttled")}
	publisher := NewSQSEventBus(sender, zap.NewNop(), "https://sqs/events")

	err := publisher.Publish(context.Background(), TestEvent{ID: uuid.New()})
	assert.ErrorContains(t, err, "throttled")
}
