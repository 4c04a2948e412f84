package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
	domain "github.com/ledgerline/payment-engine/internal/domain/payment"
	"github.com/ledgerline/payment-engine/internal/outbox"
	pkgerrors "github.com/ledgerline/payment-engine/pkg/errors"
)

// Store is an in-memory ledger store with the same contract as the Postgres
// repo: mutations are atomic per payment, events are append-only. It backs the
// engine tests and lets the server run without a database.
type Store struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment
	events   map[uuid.UUID][]*domain.Event
	outbox   []*outbox.Event
}

func NewStore() *Store {
	return &Store{
		payments: map[uuid.UUID]*domain.Payment{},
		events:   map[uuid.UUID][]*domain.Event{},
	}
}

func clonePayment(p *domain.Payment) *domain.Payment {
	c := *p
	if p.FailureReason != nil {
		v := *p.FailureReason
		c.FailureReason = &v
	}
	if p.RuleTriggered != nil {
		v := *p.RuleTriggered
		c.RuleTriggered = &v
	}
	if p.ProcessingStartedAt != nil {
		v := *p.ProcessingStartedAt
		c.ProcessingStartedAt = &v
	}
	if p.CompletedAt != nil {
		v := *p.CompletedAt
		c.CompletedAt = &v
	}
	c.Events = nil
	return &c
}

func (s *Store) Create(ctx context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.payments {
		if existing.Reference == p.Reference && existing.OwnerID == p.OwnerID {
			return pkgerrors.NewDuplicateReferenceError(p.Reference, nil)
		}
	}
	s.payments[p.ID] = clonePayment(p)
	return nil
}

func (s *Store) Find(ctx context.Context, idOrReference, ownerID string) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.payments {
		if p.OwnerID != ownerID {
			continue
		}
		if p.ID.String() == idOrReference || p.Reference == idOrReference {
			c := clonePayment(p)
			c.Events = append([]*domain.Event{}, s.events[p.ID]...)
			return c, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError(idOrReference)
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := []*domain.Payment{}
	for _, p := range s.payments {
		if p.OwnerID == ownerID {
			payments = append(payments, clonePayment(p))
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	if offset >= len(payments) {
		return []*domain.Payment{}, nil
	}
	payments = payments[offset:]
	if limit > 0 && limit < len(payments) {
		payments = payments[:limit]
	}
	return payments, nil
}

func (s *Store) Summary(ctx context.Context, ownerID string) (*domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.NewSummary()
	for _, p := range s.payments {
		if p.OwnerID != ownerID {
			continue
		}
		summary.Total++
		summary.StatusCounts[p.Status]++
		if p.FailureReason != nil {
			summary.FailureBreakdown[*p.FailureReason]++
		}
	}
	return summary, nil
}

func (s *Store) AppendEventAndMutate(ctx context.Context, p *domain.Payment, ev *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.payments[p.ID]
	if !ok {
		return pkgerrors.NewNotFoundError(p.ID.String())
	}
	// Same compare-and-swap guard as the Postgres repo: a stale snapshot
	// must not overwrite a newer transition.
	if current.Status != ev.FromStatus {
		return pkgerrors.NewConflictError(string(ev.FromStatus))
	}
	s.payments[p.ID] = clonePayment(p)
	s.appendEventLocked(ev)
	return nil
}

func (s *Store) appendEventLocked(ev *domain.Event) {
	s.events[ev.PaymentID] = append(s.events[ev.PaymentID], ev)
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	s.outbox = append(s.outbox, outbox.NewEvent("payment.status_changed", ev.PaymentID, payload))
}

// Events returns the append-only audit trail for a payment in insertion order.
func (s *Store) Events(paymentID uuid.UUID) []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Event{}, s.events[paymentID]...)
}

// FetchPending and MarkProduced implement outbox.Source.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]*outbox.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := []*outbox.Event{}
	for _, e := range s.outbox {
		if e.Status == outbox.EventStatus_Pending {
			pending = append(pending, e)
			if limit > 0 && len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (s *Store) MarkProduced(ctx context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		marked[id] = struct{}{}
	}
	for _, e := range s.outbox {
		if _, ok := marked[e.ID]; ok {
			e.Status = outbox.EventStatus_Produced
		}
	}
	return nil
}
