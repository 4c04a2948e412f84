package service

import (
	"context"
	"fmt"

	"github.com/ledgerline/payment-engine/internal/domain/payment"
	"github.com/ledgerline/payment-engine/internal/engine"
	pkgerrors "github.com/ledgerline/payment-engine/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Store is the full persistence contract the service needs; it embeds the
// narrower flush contract the engine depends on.
type Store interface {
	engine.Store
	Create(ctx context.Context, p *payment.Payment) error
	Find(ctx context.Context, idOrReference, ownerID string) (*payment.Payment, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*payment.Payment, error)
	Summary(ctx context.Context, ownerID string) (*payment.Summary, error)
}

type CreateInput struct {
	Reference     string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CustomerEmail string
	WebhookURL    string
	OwnerID       string
}

type PaymentService struct {
	store  Store
	engine *engine.Engine
}

func NewPaymentService(store Store, eng *engine.Engine) *PaymentService {
	return &PaymentService{
		store:  store,
		engine: eng,
	}
}

// Create initialises a payment in CREATED state. A reference already used by
// the same owner is a conflict. The audit trail starts with the first
// transition; creation itself is not a transition.
func (s *PaymentService) Create(ctx context.Context, in CreateInput) (*payment.Payment, error) {
	if in.Reference == "" {
		return nil, pkgerrors.NewInvalidArgumentError("payment reference is required")
	}
	if in.Amount.Sign() <= 0 {
		return nil, pkgerrors.NewInvalidArgumentError("amount must be positive")
	}
	if in.Amount.Exponent() < -2 {
		return nil, pkgerrors.NewInvalidArgumentError("amount supports at most 2 fractional digits")
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if !payment.IsSupportedCurrency(in.Currency) {
		return nil, pkgerrors.NewInvalidArgumentError(fmt.Sprintf("unsupported currency '%s'", in.Currency))
	}

	p := payment.New(in.Reference, in.Amount, in.Currency, in.OwnerID)
	p.Description = in.Description
	p.CustomerEmail = in.CustomerEmail
	p.WebhookURL = in.WebhookURL

	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"REF":    p.Reference,
		"AMOUNT": p.Amount,
	}).Info("PAYMENT:CREATED")
	return p, nil
}

func (s *PaymentService) Get(ctx context.Context, idOrReference, ownerID string) (*payment.Payment, error) {
	return s.store.Find(ctx, idOrReference, ownerID)
}

func (s *PaymentService) List(ctx context.Context, ownerID string, limit, offset int) ([]*payment.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListByOwner(ctx, ownerID, limit, offset)
}

func (s *PaymentService) Summary(ctx context.Context, ownerID string) (*payment.Summary, error) {
	return s.store.Summary(ctx, ownerID)
}

func (s *PaymentService) Process(ctx context.Context, idOrReference, ownerID, trigger string) (*payment.Payment, error) {
	p, err := s.store.Find(ctx, idOrReference, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Process(ctx, p, trigger); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) Retry(ctx context.Context, idOrReference, ownerID string) (*payment.Payment, error) {
	p, err := s.store.Find(ctx, idOrReference, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Retry(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) Refund(ctx context.Context, idOrReference, ownerID string) (*payment.Payment, error) {
	p, err := s.store.Find(ctx, idOrReference, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Refund(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
