package notify

import (
	"context"
	"log/slog"

	"plenum/internal/shared/events"
)

// Subscriber is the bus surface the dispatcher consumes from.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, events.Envelope) error) error
}

// Notifier delivers a user-facing notification for one governance event.
type Notifier interface {
	Notify(ctx context.Context, event events.Envelope) error
}

// Topics the dispatcher listens on. One consumer group keeps delivery
// single-shot per event across worker replicas.
var governanceTopics = []string{
	"governance.meeting.updated",
	"governance.participant.updated",
	"governance.motion.transitioned",
	"governance.poll.created",
	"governance.poll.opened",
	"governance.poll.closed",
	"governance.vote.cast",
}

// Dispatcher fans governance events out to the notifier.
type Dispatcher struct {
	Bus      Subscriber
	Notifier Notifier
	Logger   *slog.Logger
}

func (d Dispatcher) Run(ctx context.Context) error {
	notifier := d.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: d.Logger}
	}
	for _, topic := range governanceTopics {
		if err := d.Bus.Subscribe(ctx, topic, "governance-notifications", notifier.Notify); err != nil {
			return err
		}
	}
	return nil
}

// LogNotifier is the default notifier: it records the notification via slog.
// Mail/push delivery plugs in behind the Notifier interface.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, event events.Envelope) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("governance notification",
		"event", "notification_dispatched",
		"module", "internal/platform/notify",
		"layer", "platform",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
	)
	return nil
}
