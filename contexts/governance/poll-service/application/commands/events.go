package commands

import (
	"context"
	"encoding/json"
	"time"

	"plenum/contexts/governance/poll-service/ports"
	"plenum/internal/shared/events"
	"plenum/internal/shared/outbox"
)

const sourceModule = "governance/poll-service"

func appendEvent(
	ctx context.Context,
	writer ports.OutboxWriter,
	idGen ports.IDGenerator,
	now time.Time,
	eventType string,
	entityType string,
	entityID string,
	payload any,
) error {
	if writer == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceModule:   sourceModule,
		OccurredAtUTC:  now.UTC(),
		EntityType:     entityType,
		EntityID:       entityID,
		PayloadVersion: 1,
		Payload:        payload,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return writer.AppendOutbox(ctx, outbox.Message{
		OutboxID:     eventID,
		EventType:    eventType,
		PartitionKey: entityID,
		Payload:      raw,
		Status:       outbox.StatusPending,
		CreatedAt:    now.UTC(),
	})
}
