package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/shared/saga"
)

type sqsMessage struct {
	Message types.Message
	Channel saga.Channel
	Event   *saga.Event
	Err     error
}

// SQSChannelSubscriber pulls saga events from one SQS queue and hands them to
// a handler together with the channel they were published on. Reader
// goroutines receive, workers handle, cleaners ack successful messages and
// push back the visibility timeout of failed ones so the broker redelivers
// them later.
type SQSChannelSubscriber struct {
	mux              sync.RWMutex
	inboundMessages  chan *sqsMessage
	outboundMessages chan *sqsMessage
	cancel           context.CancelFunc
	running          atomic.Bool
	options          *sqsSubscriberOptions

	client   *sqs.Client
	queueURL string
	handler  saga.Handler
}

type sqsSubscriberOptions struct {
	workers                    int32
	readers                    int32
	cleaners                   int32
	maxNumberOfMessages        int32
	waitTimeSeconds            int32
	visibilityTimeout          int32
	sleepTimeAfterEmptyReceive time.Duration
	sleepTimeAfterError        time.Duration
	receiveCountRange          int32
	visibilityTimeoutOffset    int32
	maxVisibilityTimeout       int32
}

// SQSSubscriberOption customizes subscriber behavior.
type SQSSubscriberOption func(*sqsSubscriberOptions)

// WithWorkers sets the number of handler goroutines.
func WithWorkers(workers int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.workers = workers
	}
}

// WithReaders sets the number of receive goroutines.
func WithReaders(readers int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.readers = readers
	}
}

// WithVisibilityTimeout sets the base visibility timeout in seconds.
func WithVisibilityTimeout(timeout int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.visibilityTimeout = timeout
	}
}

// NewSQSChannelSubscriber creates a subscriber on an existing SQS client.
func NewSQSChannelSubscriber(client *sqs.Client, queueURL string, handler saga.Handler, opts ...SQSSubscriberOption) *SQSChannelSubscriber {
	options := &sqsSubscriberOptions{
		workers:                    30,
		readers:                    1,
		cleaners:                   2,
		maxNumberOfMessages:        5,
		waitTimeSeconds:            15,
		visibilityTimeout:          30,
		sleepTimeAfterEmptyReceive: 10 * time.Second,
		sleepTimeAfterError:        20 * time.Second,
		receiveCountRange:          3,
		visibilityTimeoutOffset:    30,
		maxVisibilityTimeout:       900,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &SQSChannelSubscriber{
		client:           client,
		queueURL:         queueURL,
		handler:          handler,
		inboundMessages:  make(chan *sqsMessage, 10),
		outboundMessages: make(chan *sqsMessage, 10),
		options:          options,
	}
}

// NewSQSChannelSubscriberFromConfig loads the default AWS config and creates a
// subscriber.
func NewSQSChannelSubscriberFromConfig(ctx context.Context, queueURL string, handler saga.Handler, opts ...SQSSubscriberOption) (*SQSChannelSubscriber, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	return NewSQSChannelSubscriber(sqs.NewFromConfig(cfg), queueURL, handler, opts...), nil
}

// Start launches the reader, worker and cleaner pools.
func (s *SQSChannelSubscriber) Start(ctx context.Context) error {
	if s.running.Load() {
		return nil
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inboundMessages = make(chan *sqsMessage, 10)
	s.outboundMessages = make(chan *sqsMessage, 10)

	for i := 0; i < int(s.options.workers); i++ {
		go s.startWorker(ctx)
	}
	for i := 0; i < int(s.options.readers); i++ {
		go s.startReader(ctx)
	}
	for i := 0; i < int(s.options.cleaners); i++ {
		go s.startCleaner(ctx)
	}

	s.running.Store(true)
	return nil
}

// Stop cancels all pool goroutines.
func (s *SQSChannelSubscriber) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.running.Store(false)
	return nil
}

func (s *SQSChannelSubscriber) startWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-s.inboundMessages:
			if message == nil {
				continue
			}
			s.handle(ctx, message)
		}
	}
}

func (s *SQSChannelSubscriber) startReader(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := s.read(ctx); err != nil {
				slog.Error("sqs receive failed", "queue", s.queueURL, "error", err)
				time.Sleep(s.options.sleepTimeAfterError)
			}
		}
	}
}

func (s *SQSChannelSubscriber) startCleaner(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-s.outboundMessages:
			if message == nil {
				continue
			}
			if err := s.clean(ctx, message); err != nil {
				slog.Error("sqs cleanup failed", "queue", s.queueURL, "error", err)
			}
		}
	}
}

func (s *SQSChannelSubscriber) read(ctx context.Context) error {
	output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: s.options.maxNumberOfMessages,
		WaitTimeSeconds:     s.options.waitTimeSeconds,
		VisibilityTimeout:   s.options.visibilityTimeout,
		AttributeNames: []types.QueueAttributeName{
			"ApproximateReceiveCount",
		},
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return errors.Wrap(err, "failed to receive messages from SQS")
	}

	if len(output.Messages) == 0 {
		time.Sleep(s.options.sleepTimeAfterEmptyReceive)
		return nil
	}

	for _, message := range output.Messages {
		channel, event, err := decodeBusMessage(*message.Body)
		if err != nil {
			slog.Warn("skipping malformed message", "queue", s.queueURL, "error", err)
			continue
		}

		select {
		case s.inboundMessages <- &sqsMessage{Message: message, Channel: channel, Event: event}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func decodeBusMessage(body string) (saga.Channel, *saga.Event, error) {
	var message busMessage
	if err := json.Unmarshal([]byte(body), &message); err != nil {
		return "", nil, errors.Wrap(err, "invalid bus message")
	}
	if message.Channel == "" {
		return "", nil, errors.New("bus message has no channel")
	}
	event, err := saga.FromJSON(message.Event)
	if err != nil {
		return "", nil, errors.Wrap(err, "invalid saga event")
	}
	return saga.Channel(message.Channel), event, nil
}

func (s *SQSChannelSubscriber) handle(ctx context.Context, message *sqsMessage) {
	s.mux.RLock()
	handler := s.handler
	s.mux.RUnlock()

	if handler == nil {
		message.Err = errors.New("no handler configured")
	} else {
		message.Err = handler.Handle(ctx, message.Channel, message.Event)
	}

	select {
	case s.outboundMessages <- message:
	case <-ctx.Done():
	}
}

func (s *SQSChannelSubscriber) clean(ctx context.Context, message *sqsMessage) error {
	if message.Err != nil {
		// Leave the message for redelivery, pushing the visibility timeout
		// out a bit further on every round.
		receiveCount, err := strconv.Atoi(message.Message.Attributes["ApproximateReceiveCount"])
		if err != nil {
			receiveCount = 1
		}

		visibilityTimeout := s.options.visibilityTimeout
		visibilityTimeout += (int32(receiveCount) / s.options.receiveCountRange) * s.options.visibilityTimeoutOffset
		if visibilityTimeout > s.options.maxVisibilityTimeout {
			visibilityTimeout = s.options.maxVisibilityTimeout
		}

		_, err = s.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
			QueueUrl:          &s.queueURL,
			ReceiptHandle:     message.Message.ReceiptHandle,
			VisibilityTimeout: visibilityTimeout,
		})
		if err != nil {
			return errors.Wrap(err, "failed to extend visibility timeout")
		}
		return nil
	}

	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &s.queueURL,
		ReceiptHandle: message.Message.ReceiptHandle,
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete message from SQS")
	}
	return nil
}
