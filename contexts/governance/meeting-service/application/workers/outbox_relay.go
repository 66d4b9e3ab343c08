package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "plenum/contexts/governance/meeting-service/application"
	"plenum/contexts/governance/meeting-service/ports"
	"plenum/internal/shared/events"
)

// OutboxRelay publishes persisted meeting outbox records to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("meeting outbox list failed",
			"event", "meeting_outbox_list_failed",
			"module", "governance/meeting-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event events.Envelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("meeting outbox decode failed",
				"event", "meeting_outbox_decode_failed",
				"module", "governance/meeting-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}

	logger.Info("meeting outbox relay cycle completed",
		"event", "meeting_outbox_relay_completed",
		"module", "governance/meeting-service",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
