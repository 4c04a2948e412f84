package payment

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var supportedCurrencies = map[string]struct{}{
	"USD": {},
	"EUR": {},
	"GBP": {},
	"COP": {},
}

func IsSupportedCurrency(currency string) bool {
	_, ok := supportedCurrencies[currency]
	return ok
}

type Payment struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Reference     string          `db:"reference" json:"reference"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Currency      string          `db:"currency" json:"currency"`
	Description   string          `db:"description" json:"description,omitempty"`
	CustomerEmail string          `db:"customer_email" json:"customerEmail,omitempty"`
	WebhookURL    string          `db:"webhook_url" json:"webhookUrl,omitempty"`
	OwnerID       string          `db:"owner_id" json:"ownerId,omitempty"`

	Status        Status  `db:"status" json:"status"`
	FailureReason *string `db:"failure_reason" json:"failureReason,omitempty"`
	RuleTriggered *string `db:"rule_triggered" json:"ruleTriggered,omitempty"`
	RetryCount    int     `db:"retry_count" json:"retryCount"`
	FraudFlag     bool    `db:"fraud_flag" json:"fraudFlag"`

	ProcessingStartedAt *time.Time `db:"processing_started_at" json:"processingStartedAt,omitempty"`
	CompletedAt         *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`

	Events []*Event `db:"-" json:"events,omitempty"`
}

func New(reference string, amount decimal.Decimal, currency, ownerID string) *Payment {
	now := time.Now().UTC()
	return &Payment{
		ID:        uuid.New(),
		Reference: reference,
		Amount:    amount,
		Currency:  currency,
		OwnerID:   ownerID,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Payload is the opaque diagnostic context attached to an audit event,
// stored as JSONB.
type Payload map[string]any

func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *Payload) Scan(src any) error {
	if src == nil {
		*p = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported payload type %T", src)
	}
	return json.Unmarshal(b, p)
}

// Event is an immutable audit record. Events are append-only and are never
// updated or deleted independently of the owning payment.
type Event struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PaymentID  uuid.UUID `db:"payment_id" json:"paymentId"`
	FromStatus Status    `db:"from_status" json:"fromStatus"`
	ToStatus   Status    `db:"to_status" json:"toStatus"`
	Reason     string    `db:"reason" json:"reason,omitempty"`
	Payload    Payload   `db:"payload" json:"payload,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

func NewEvent(paymentID uuid.UUID, from, to Status, reason string, payload Payload) *Event {
	return &Event{
		ID:         uuid.New(),
		PaymentID:  paymentID,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
}
