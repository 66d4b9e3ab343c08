package entities

import "time"

type AgendaItemStatus string

const (
	AgendaPending    AgendaItemStatus = "pending"
	AgendaInProgress AgendaItemStatus = "in_progress"
	AgendaCompleted  AgendaItemStatus = "completed"
	AgendaSkipped    AgendaItemStatus = "skipped"
)

// AgendaItem is one entry in a meeting's ordered agenda. Items are walked in
// (Order, CreatedAt, AgendaItemID) order so equal Order values still yield a
// stable sequence.
type AgendaItem struct {
	AgendaItemID string
	MeetingID    string
	Title        string
	ItemType     string
	Order        int
	Status       AgendaItemStatus
	DurationMin  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Before reports whether a sorts ahead of b in agenda order.
func (a AgendaItem) Before(b AgendaItem) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.AgendaItemID < b.AgendaItemID
}
