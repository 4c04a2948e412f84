package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	domain "github.com/ledgerline/payment-engine/internal/domain/payment"
	"github.com/ledgerline/payment-engine/internal/outbox"
	eventrepo "github.com/ledgerline/payment-engine/internal/repo/event"
	reposhared "github.com/ledgerline/payment-engine/internal/repo/repo-shared"
	"github.com/ledgerline/payment-engine/pkg/db/postgres"
	pkgerrors "github.com/ledgerline/payment-engine/pkg/errors"
	_ "github.com/lib/pq"
)

const statusChangedEventType = "payment.status_changed"

// PaymentRepo is the Postgres-backed ledger store. Every mutation commits the
// payment row, its audit event and the mirrored outbox row in one transaction.
type PaymentRepo struct {
	db        *sqlx.DB
	tableName string
	eventRepo *eventrepo.EventRepo
}

func NewPaymentRepo(db *sqlx.DB, eventRepo *eventrepo.EventRepo) *PaymentRepo {
	return &PaymentRepo{
		db:        db,
		tableName: "payments",
		eventRepo: eventRepo,
	}
}

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	_, err := reposhared.TxClosure(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) (struct{}, error) {
		_, err := tx.NamedExecContext(ctx, fmt.Sprintf(
			`INSERT INTO %s
			 (id, reference, amount, currency, description, customer_email, webhook_url, owner_id,
			  status, failure_reason, rule_triggered, retry_count, fraud_flag,
			  processing_started_at, completed_at, created_at, updated_at)
			 VALUES
			 (:id, :reference, :amount, :currency, :description, :customer_email, :webhook_url, :owner_id,
			  :status, :failure_reason, :rule_triggered, :retry_count, :fraud_flag,
			  :processing_started_at, :completed_at, :created_at, :updated_at)`, r.tableName), p)
		return struct{}{}, err
	})
	if postgres.IsDuplicateKeyErr(err) {
		return pkgerrors.NewDuplicateReferenceError(p.Reference, err)
	}
	return err
}

// Find resolves a payment by internal id or human-facing reference, scoped to
// its owner, with the full event history attached.
func (r *PaymentRepo) Find(ctx context.Context, idOrReference, ownerID string) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := r.db.GetContext(ctx, p, fmt.Sprintf(
		`SELECT * FROM %s WHERE (id::text = $1 OR reference = $1) AND owner_id = $2`, r.tableName),
		idOrReference, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.NewNotFoundError(idOrReference)
		}
		return nil, err
	}

	events, err := r.eventRepo.ListByPayment(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Events = events
	return p, nil
}

func (r *PaymentRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Payment, error) {
	payments := []*domain.Payment{}
	err := r.db.SelectContext(ctx, &payments, fmt.Sprintf(
		`SELECT * FROM %s WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, r.tableName),
		ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentRepo) Summary(ctx context.Context, ownerID string) (*domain.Summary, error) {
	s := domain.NewSummary()

	rows, err := r.db.QueryxContext(ctx, fmt.Sprintf(
		`SELECT status, COUNT(id) FROM %s WHERE owner_id = $1 GROUP BY status`, r.tableName), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status domain.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		s.StatusCounts[status] = count
		s.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	frows, err := r.db.QueryxContext(ctx, fmt.Sprintf(
		`SELECT failure_reason, COUNT(id) FROM %s
		 WHERE owner_id = $1 AND failure_reason IS NOT NULL GROUP BY failure_reason`, r.tableName), ownerID)
	if err != nil {
		return nil, err
	}
	defer frows.Close()
	for frows.Next() {
		var reason string
		var count int
		if err := frows.Scan(&reason, &count); err != nil {
			return nil, err
		}
		s.FailureBreakdown[reason] = count
	}
	return s, frows.Err()
}

// statusMutation adds the expected prior status to the payment's named
// parameters for the compare-and-swap update.
type statusMutation struct {
	domain.Payment
	PriorStatus domain.Status `db:"prior_status"`
}

// AppendEventAndMutate implements engine.Store: the audit event, its outbox
// mirror and the status mutation land in a single transaction, so a crash
// between them is never observable. The update is guarded on the event's
// from-status; a stale snapshot rolls the whole transaction back with a
// conflict error, keeping the audit chain contiguous.
func (r *PaymentRepo) AppendEventAndMutate(ctx context.Context, p *domain.Payment, ev *domain.Event) error {
	_, err := reposhared.TxClosure(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) (struct{}, error) {
		if err := r.eventRepo.InsertTx(ctx, tx, ev); err != nil {
			return struct{}{}, err
		}
		if err := r.insertOutboxTx(ctx, tx, ev); err != nil {
			return struct{}{}, err
		}
		res, err := tx.NamedExecContext(ctx, fmt.Sprintf(
			`UPDATE %s SET
			   status = :status,
			   failure_reason = :failure_reason,
			   rule_triggered = :rule_triggered,
			   retry_count = :retry_count,
			   fraud_flag = :fraud_flag,
			   processing_started_at = :processing_started_at,
			   completed_at = :completed_at,
			   updated_at = :updated_at
			 WHERE id = :id AND status = :prior_status`, r.tableName),
			statusMutation{Payment: *p, PriorStatus: ev.FromStatus})
		if err != nil {
			return struct{}{}, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return struct{}{}, err
		}
		if affected == 0 {
			return struct{}{}, pkgerrors.NewConflictError(string(ev.FromStatus))
		}
		return struct{}{}, nil
	})
	return err
}

func (r *PaymentRepo) insertOutboxTx(ctx context.Context, tx *sqlx.Tx, ev *domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.eventRepo.InsertOutboxTx(ctx, tx, outbox.NewEvent(statusChangedEventType, ev.PaymentID, payload))
}
