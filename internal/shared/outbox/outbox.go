package outbox

import "time"

// Message is one outbox row persisted in the same transaction as the state
// change that produced it. Worker relays read pending rows and publish them.
type Message struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	Status       string // pending, published, failed
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFailed    = "failed"
)
