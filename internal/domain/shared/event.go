package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about one aggregate
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() int64
}

// EventHeader is embedded by every concrete event
type EventHeader struct {
	ID     uuid.UUID `json:"id"`
	Type   string    `json:"type"`
	At     time.Time `json:"occurred_at"`
	Source int64     `json:"aggregate_id"`
}

// NewEventHeader stamps a fresh event id and the current time
func NewEventHeader(eventType string, aggregateID int64) EventHeader {
	return EventHeader{ID: uuid.New(), Type: eventType, At: time.Now(), Source: aggregateID}
}

func (h EventHeader) EventID() uuid.UUID    { return h.ID }
func (h EventHeader) EventType() string     { return h.Type }
func (h EventHeader) OccurredAt() time.Time { return h.At }
func (h EventHeader) AggregateID() int64    { return h.Source }
