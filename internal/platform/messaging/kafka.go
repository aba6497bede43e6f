package messaging

import (
	"context"
	"log/slog"
	"sync"

	"asamblea/contexts/governance/assembly-engine/ports"
)

const subscriberBuffer = 128

type subscriber struct {
	group string
	ch    chan ports.EventEnvelope
}

// Kafka carries assembly notifications from the outbox relay to consumers.
// The current transport is in-process; the constructor keeps the broker
// list so switching to a real client stays a local change.
type Kafka struct {
	mu      sync.RWMutex
	brokers []string
	topics  map[string][]subscriber
	logger  *slog.Logger
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	return &Kafka{
		brokers: brokers,
		topics:  make(map[string][]subscriber),
		logger:  logger,
	}, nil
}

// Publish fans the envelope out to every subscriber of the topic. A full
// subscriber buffer drops the event for that consumer instead of blocking
// the relay loop.
func (k *Kafka) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	k.mu.RLock()
	subs := append([]subscriber(nil), k.topics[topic]...)
	k.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub.ch <- event:
			delivered++
		default:
			k.log().Warn("event dropped for slow consumer",
				"event", "bus_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", sub.group,
				"event_id", event.EventID,
			)
		}
	}

	k.log().Info("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"delivered", delivered,
	)
	return nil
}

// Subscribe registers a handler for the topic and consumes until ctx ends.
func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	sub := subscriber{group: consumerGroup, ch: make(chan ports.EventEnvelope, subscriberBuffer)}

	k.mu.Lock()
	k.topics[topic] = append(k.topics[topic], sub)
	k.mu.Unlock()

	go k.consume(ctx, topic, sub, handler)
	return nil
}

func (k *Kafka) consume(
	ctx context.Context,
	topic string,
	sub subscriber,
	handler func(context.Context, ports.EventEnvelope) error,
) {
	for {
		select {
		case <-ctx.Done():
			k.unsubscribe(topic, sub)
			return
		case event := <-sub.ch:
			if err := handler(ctx, event); err != nil {
				k.log().Error("consumer handler failed",
					"event", "bus_consume_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"consumer_group", sub.group,
					"event_id", event.EventID,
					"event_type", event.EventType,
					"error", err.Error(),
				)
			}
		}
	}
}

func (k *Kafka) unsubscribe(topic string, target subscriber) {
	k.mu.Lock()
	defer k.mu.Unlock()

	current := k.topics[topic]
	remaining := current[:0]
	for _, sub := range current {
		if sub.ch != target.ch {
			remaining = append(remaining, sub)
		}
	}
	if len(remaining) == 0 {
		delete(k.topics, topic)
		return
	}
	k.topics[topic] = remaining
}

func (k *Kafka) log() *slog.Logger {
	if k.logger != nil {
		return k.logger
	}
	return slog.Default()
}
