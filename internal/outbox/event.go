package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatus_Pending  EventStatus = "pending"
	EventStatus_Produced EventStatus = "produced"
)

// Event is one row of the transactional outbox. It is written in the same
// transaction as the audit event it mirrors and relayed to the broker later.
type Event struct {
	ID        uuid.UUID       `db:"id"`
	EventType string          `db:"event_type"`
	PaymentID uuid.UUID       `db:"payment_id"`
	Payload   json.RawMessage `db:"payload"`
	Status    EventStatus     `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
}

func NewEvent(eventType string, paymentID uuid.UUID, payload json.RawMessage) *Event {
	return &Event{
		ID:        uuid.New(),
		EventType: eventType,
		PaymentID: paymentID,
		Payload:   payload,
		Status:    EventStatus_Pending,
		CreatedAt: time.Now().UTC(),
	}
}
