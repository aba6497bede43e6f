package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"asamblea/contexts/governance/assembly-engine/adapters/memory"
	"asamblea/contexts/governance/assembly-engine/application/workers"
	"asamblea/contexts/governance/assembly-engine/ports"
)

type capturingPublisher struct {
	topics  []string
	events  []ports.EventEnvelope
	failAll bool
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.failAll {
		return errors.New("bus unavailable")
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, eventID string, eventType string, at time.Time) {
	t.Helper()
	envelope := ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    at,
		SourceService: "asamblea",
		SchemaVersion: 1,
		PartitionKey:  "assembly-1",
	}
	payload, err := json.Marshal(map[string]string{"assembly_id": "assembly-1"})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	envelope.Data = payload
	if err := store.AppendOutbox(context.Background(), envelope); err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}
}

func TestRelayPublishesPendingRows(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	appendEnvelope(t, store, "evt-1", "assembly.quorum_reached", base)
	appendEnvelope(t, store, "evt-2", "assembly.voting_closed", base.Add(time.Minute))

	publisher := &capturingPublisher{}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	if len(publisher.topics) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.topics))
	}
	if publisher.topics[0] != "assembly.quorum_reached" || publisher.topics[1] != "assembly.voting_closed" {
		t.Fatalf("unexpected topics: %v", publisher.topics)
	}
	if publisher.events[0].EventID != "evt-1" {
		t.Fatalf("unexpected envelope order: %+v", publisher.events)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows after relay, got %d", len(pending))
	}
}

func TestRelaySecondRunIsNoop(t *testing.T) {
	store := memory.NewStore()
	appendEnvelope(t, store, "evt-1", "assembly.started", time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC))

	publisher := &capturingPublisher{}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(publisher.topics) != 1 {
		t.Fatalf("expected row published exactly once, got %d", len(publisher.topics))
	}
}

func TestRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	appendEnvelope(t, store, "evt-1", "assembly.started", time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC))

	publisher := &capturingPublisher{failAll: true}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected relay to surface publish failure")
	}

	// The row stays pending so the next cycle can retry.
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected row retained for retry, got %d pending", len(pending))
	}

	publisher.failAll = false
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry run failed: %v", err)
	}
	if len(publisher.topics) != 1 {
		t.Fatalf("expected single successful publish after retry, got %d", len(publisher.topics))
	}
}
