package commands

import (
	"encoding/json"
	"time"

	domainevents "asamblea/contexts/governance/assembly-engine/domain/events"
	"asamblea/contexts/governance/assembly-engine/ports"
)

func newEngineEnvelope(
	eventID string,
	event domainevents.Event,
	occurredAt time.Time,
) (ports.EventEnvelope, error) {
	// Events are partitioned by assembly so assembly-scoped consumers see a
	// stable order.
	payload, err := json.Marshal(event)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     event.EventType(),
		OccurredAt:    occurredAt.UTC(),
		SourceService: "assembly-engine",
		SchemaVersion: 1,
		PartitionKey:  event.PartitionKey(),
		Data:          payload,
	}, nil
}
