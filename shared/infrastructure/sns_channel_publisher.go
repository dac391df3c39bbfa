package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/orchestrated/order-system/shared/saga"
)

var _ saga.Publisher = (*SNSChannelPublisher)(nil)

const maxBatchSize = 10

// ChannelAttribute is the SNS message attribute carrying the logical channel.
// Queue subscriptions filter on it so every service receives only its own
// channels.
const ChannelAttribute = "channel"

// busMessage is the wire envelope around a serialized saga event.
type busMessage struct {
	ID        string          `json:"id"`
	Channel   string          `json:"channel"`
	Event     json.RawMessage `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
}

// SNSChannelPublisher publishes saga events to a single SNS topic, addressing
// the logical channel through a message attribute and grouping messages of the
// same transaction so ordering within a saga is preserved by the transport.
type SNSChannelPublisher struct {
	client   *sns.Client
	topicArn string
}

// NewSNSChannelPublisher creates a publisher on an existing SNS client.
func NewSNSChannelPublisher(client *sns.Client, topicArn string) *SNSChannelPublisher {
	return &SNSChannelPublisher{client: client, topicArn: topicArn}
}

// NewSNSChannelPublisherFromConfig loads the default AWS config (LocalStack
// compatible through AWS_ENDPOINT_URL) and creates a publisher.
func NewSNSChannelPublisherFromConfig(ctx context.Context, topicArn string) (*SNSChannelPublisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	return NewSNSChannelPublisher(sns.NewFromConfig(cfg), topicArn), nil
}

// Publish sends one event to a channel.
func (p *SNSChannelPublisher) Publish(ctx context.Context, channel saga.Channel, event *saga.Event) error {
	return p.PublishAll(ctx, channel, event)
}

// PublishAll sends events to a channel in batches of up to ten, the SNS
// publish-batch limit, fanning batches out concurrently.
func (p *SNSChannelPublisher) PublishAll(ctx context.Context, channel saga.Channel, events ...*saga.Event) error {
	if len(events) == 0 {
		return nil
	}

	gr, ctx := errgroup.WithContext(ctx)
	for _, batch := range splitToChunks(events, maxBatchSize) {
		batch := batch
		gr.Go(func() error {
			return p.publishBatch(ctx, channel, batch)
		})
	}
	return gr.Wait()
}

func (p *SNSChannelPublisher) publishBatch(ctx context.Context, channel saga.Channel, events []*saga.Event) error {
	entries := make([]types.PublishBatchRequestEntry, len(events))

	for i, event := range events {
		payload, err := event.ToJSON()
		if err != nil {
			return errors.Wrap(err, "failed to marshal event")
		}

		message, err := json.Marshal(&busMessage{
			ID:        event.ID.String(),
			Channel:   channel.String(),
			Event:     payload,
			Timestamp: time.Now(),
		})
		if err != nil {
			return errors.Wrap(err, "failed to marshal bus message")
		}

		entries[i] = types.PublishBatchRequestEntry{
			Id:      aws.String(event.ID.String()),
			Message: aws.String(string(message)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				ChannelAttribute: {
					DataType:    aws.String("String"),
					StringValue: aws.String(channel.String()),
				},
			},
			// Key FIFO grouping by transaction so one saga's messages stay
			// in causal order end to end.
			MessageGroupId: aws.String(event.TransactionID),
		}
	}

	res, err := p.client.PublishBatch(ctx, &sns.PublishBatchInput{
		TopicArn:                   &p.topicArn,
		PublishBatchRequestEntries: entries,
	})
	if err != nil {
		return errors.Wrap(err, "failed to publish batch to SNS")
	}

	if len(res.Failed) > 0 {
		return errors.Errorf("SNS rejected %d of %d messages on channel %s", len(res.Failed), len(events), channel)
	}

	return nil
}

// splitToChunks splits a slice into chunks of the given size.
func splitToChunks[T any](slice []T, chunkSize int) [][]T {
	var chunks [][]T
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}
