package mq

import (
	"context"
	"time"
)

// MessageQueue is the unified message queue abstraction used for live
// ranklist event streams. It decouples the update pipeline from the broker
// implementation.
type MessageQueue interface {
	Producer
	Consumer

	// Ping verifies the message queue connection is alive.
	Ping(ctx context.Context) error

	// Close closes the message queue connection.
	Close() error
}

// Producer publishes messages.
type Producer interface {
	// Publish publishes a message to the specified topic.
	Publish(ctx context.Context, topic string, message *Message) error

	// PublishBatch publishes multiple messages in a batch.
	PublishBatch(ctx context.Context, topic string, messages []*Message) error
}

// Consumer consumes messages.
type Consumer interface {
	// Subscribe registers a handler for a topic with default options.
	Subscribe(ctx context.Context, topic string, handler HandlerFunc) error

	// SubscribeWithOptions registers a handler with custom options.
	SubscribeWithOptions(ctx context.Context, topic string, handler HandlerFunc, opts *SubscribeOptions) error

	// Start starts consuming messages for all registered subscriptions.
	Start() error

	// Stop gracefully stops consuming messages.
	Stop() error
}

// Message is one queue message.
type Message struct {
	// ID is the unique identifier for the message. It doubles as the
	// partition key, which keeps events for one ranklist in order.
	ID string `json:"id"`

	// Body is the message payload.
	Body []byte `json:"body"`

	// Headers contains metadata about the message.
	Headers map[string]string `json:"headers"`

	// Timestamp is when the message was created.
	Timestamp time.Time `json:"timestamp"`

	// Retry information.
	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// HandlerFunc processes one message. A non-nil error triggers a retry until
// MaxRetries is exhausted.
type HandlerFunc func(ctx context.Context, message *Message) error

// SubscribeOptions configures one subscription.
type SubscribeOptions struct {
	// ConsumerGroup is the broker consumer group name.
	ConsumerGroup string

	// Concurrency sets the number of concurrent workers. Keep it at 1
	// when message order matters.
	Concurrency int

	// MaxRetries sets the maximum number of retries for failed messages.
	MaxRetries int

	// RetryDelay sets the delay between retries.
	RetryDelay time.Duration
}

// SetDefaults fills zero option fields.
func (o *SubscribeOptions) SetDefaults() {
	if o.Concurrency == 0 {
		o.Concurrency = 1
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = time.Second
	}
}

// NewMessage creates a new message with the given body.
func NewMessage(body []byte) *Message {
	return &Message{
		Body:       body,
		Headers:    make(map[string]string),
		Timestamp:  time.Now(),
		MaxRetries: 3,
	}
}

// SetHeader sets a header value.
func (m *Message) SetHeader(key, value string) {
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[key] = value
}

// GetHeader retrieves a header value.
func (m *Message) GetHeader(key string) (string, bool) {
	if m.Headers == nil {
		return "", false
	}
	val, ok := m.Headers[key]
	return val, ok
}
