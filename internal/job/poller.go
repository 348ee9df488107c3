package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/pkg/errors"
)

var NoErrEmptyJobs = errors.New("jobs are empty")

type Poller interface {
	// Poll returns the receipt handle of the message, which MarkAsDone takes.
	Poll(ctx context.Context) (id string, job Job, err error)
	MarkAsDone(ctx context.Context, id string) (err error)
	// Extend keeps the message hidden from other workers for d.
	Extend(ctx context.Context, id string, d time.Duration) (err error)
}

// MaxVisibility is the longest SQS keeps a received message hidden.
const MaxVisibility = 12 * time.Hour

type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
}

type poller struct {
	client   SQSClient
	queueURL string
}

var _ Poller = (*poller)(nil)

func NewPoller(client SQSClient, queueURL string) *poller {
	return &poller{
		client:   client,
		queueURL: queueURL,
	}
}

func (p *poller) Poll(ctx context.Context) (id string, job Job, err error) {
	input := &sqs.ReceiveMessageInput{QueueUrl: aws.String(p.queueURL)}

	result, err := p.client.ReceiveMessage(ctx, input)
	if err != nil {
		return "", Job{}, errors.Wrap(err, "receiving message")
	}

	if len(result.Messages) == 0 {
		return "", Job{}, NoErrEmptyJobs
	}

	msg := result.Messages[0]
	if msg.ReceiptHandle == nil || msg.Body == nil {
		return "", Job{}, errors.New("message without body or receipt handle")
	}

	var decoded Job
	if err := json.Unmarshal([]byte(*msg.Body), &decoded); err != nil {
		// The handle is still returned so the caller can drop the message.
		return *msg.ReceiptHandle, Job{}, errors.Wrap(err, "failed to unmarshal job")
	}

	if err := decoded.Validate(); err != nil {
		return *msg.ReceiptHandle, Job{}, err
	}

	return *msg.ReceiptHandle, decoded, nil
}

func (p *poller) MarkAsDone(ctx context.Context, id string) (err error) {
	input := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.queueURL),
		ReceiptHandle: aws.String(id),
	}

	if _, err = p.client.DeleteMessage(ctx, input); err != nil {
		return errors.Wrap(err, "failed to delete message")
	}

	return nil
}

func (p *poller) Extend(ctx context.Context, id string, d time.Duration) (err error) {
	seconds := int32(min(d, MaxVisibility) / time.Second)

	input := &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(p.queueURL),
		ReceiptHandle:     aws.String(id),
		VisibilityTimeout: seconds,
	}

	if _, err = p.client.ChangeMessageVisibility(ctx, input); err != nil {
		return errors.Wrap(err, "failed to extend message visibility")
	}

	return nil
}
