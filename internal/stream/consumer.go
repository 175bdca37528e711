package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/AnikaLegal/caseflow/internal/dispatch"
	"github.com/AnikaLegal/caseflow/internal/metrics"
)

// Message is a single record pulled off a topic.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
}

// TopicHandler handles messages from a specific topic.
type TopicHandler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Router dispatches messages to topic-specific handlers.
type Router struct {
	handlers map[string]TopicHandler
	logger   *slog.Logger
}

// NewRouter creates a topic router.
func NewRouter(logger *slog.Logger) *Router {
	return &Router{
		handlers: make(map[string]TopicHandler),
		logger:   logger,
	}
}

// Register adds a handler for a specific topic.
func (r *Router) Register(topic string, handler TopicHandler) {
	r.handlers[topic] = handler
}

// Topics returns the registered topic names.
func (r *Router) Topics() []string {
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	return topics
}

// Handle routes the message to the appropriate topic handler.
func (r *Router) Handle(ctx context.Context, msg *Message) error {
	handler, ok := r.handlers[msg.Topic]
	if !ok {
		r.logger.Warn("no handler for topic, skipping message",
			"topic", msg.Topic,
			"key", string(msg.Key),
		)
		return nil // Commit to avoid redelivery
	}
	return handler.Handle(ctx, msg)
}

// Consumer reads case mutation and change record topics and pushes each
// message through the dispatcher so records for the same key are applied
// in order. Offsets are committed only after every record in a poll has
// been handled.
type Consumer struct {
	client     *kgo.Client
	router     *Router
	dispatcher *dispatch.Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewConsumer connects to the brokers and joins the consumer group.
func NewConsumer(
	brokers []string,
	group string,
	router *Router,
	dispatcher *dispatch.Dispatcher,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(router.Topics()...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Consumer{
		client:     client,
		router:     router,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}, nil
}

// Run polls until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started", "topics", c.router.Topics())
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("fetch error", "topic", topic, "partition", partition, "error", err)
		})

		records := fetches.Records()
		if len(records) == 0 {
			continue
		}
		if err := c.processBatch(ctx, records); err != nil {
			// Leave offsets uncommitted so the batch is redelivered.
			c.logger.Error("batch processing failed, offsets not committed", "error", err)
			continue
		}
		if err := c.client.CommitRecords(ctx, records...); err != nil {
			c.logger.Error("commit failed", "error", err)
		}
	}
}

// processBatch dispatches every record and waits for all of them. Records
// sharing a key run on the same dispatcher shard, in fetch order. Every
// record that fails counts as a processing failure for its topic.
func (c *Consumer) processBatch(ctx context.Context, records []*kgo.Record) error {
	type pending struct {
		topic string
		done  <-chan error
	}

	results := make([]pending, 0, len(records))
	for _, rec := range records {
		msg := &Message{
			Topic:     rec.Topic,
			Partition: rec.Partition,
			Offset:    rec.Offset,
			Key:       rec.Key,
			Value:     rec.Value,
		}
		done, err := c.dispatcher.Submit(ctx, string(rec.Key), func(ctx context.Context) error {
			return c.router.Handle(ctx, msg)
		})
		if err != nil {
			for _, p := range results {
				<-p.done
			}
			c.metrics.ProcessingFailures.WithLabelValues(rec.Topic).Inc()
			return fmt.Errorf("dispatch record %s/%d@%d: %w", rec.Topic, rec.Partition, rec.Offset, err)
		}
		results = append(results, pending{topic: rec.Topic, done: done})
	}

	var firstErr error
	for _, p := range results {
		if err := <-p.done; err != nil {
			c.metrics.ProcessingFailures.WithLabelValues(p.topic).Inc()
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Close leaves the group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}
