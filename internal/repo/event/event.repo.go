package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ledgerline/payment-engine/internal/domain/payment"
	"github.com/ledgerline/payment-engine/internal/outbox"
	_ "github.com/lib/pq"
)

// EventRepo persists audit events and their mirrored outbox rows. Audit rows
// are append-only; nothing here updates or deletes them.
type EventRepo struct {
	db          *sqlx.DB
	tableName   string
	outboxTable string
}

func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{
		db:          db,
		tableName:   "payment_events",
		outboxTable: "outbox_events",
	}
}

func (r *EventRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, e *payment.Event) error {
	_, err := tx.NamedExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, payment_id, from_status, to_status, reason, payload, created_at)
		 VALUES (:id, :payment_id, :from_status, :to_status, :reason, :payload, :created_at)`, r.tableName), e)
	return err
}

func (r *EventRepo) InsertOutboxTx(ctx context.Context, tx *sqlx.Tx, e *outbox.Event) error {
	_, err := tx.NamedExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, event_type, payment_id, payload, status, created_at)
		 VALUES (:id, :event_type, :payment_id, :payload, :status, :created_at)`, r.outboxTable), e)
	return err
}

func (r *EventRepo) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*payment.Event, error) {
	events := []*payment.Event{}
	err := r.db.SelectContext(ctx, &events, fmt.Sprintf(
		`SELECT * FROM %s WHERE payment_id = $1 ORDER BY created_at, id`, r.tableName), paymentID)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// FetchPending implements outbox.Source. Re-reading a row the relay already
// produced but failed to mark is fine; delivery is at-least-once.
func (r *EventRepo) FetchPending(ctx context.Context, limit int) ([]*outbox.Event, error) {
	events := []*outbox.Event{}
	err := r.db.SelectContext(ctx, &events, fmt.Sprintf(
		`SELECT * FROM %s WHERE status = $1 ORDER BY created_at LIMIT $2`, r.outboxTable),
		outbox.EventStatus_Pending, limit)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepo) MarkProduced(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(
		`UPDATE %s SET status = ? WHERE id IN (?)`, r.outboxTable), outbox.EventStatus_Produced, ids)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}
