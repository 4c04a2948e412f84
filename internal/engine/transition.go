package engine

import (
	"context"

	"github.com/ledgerline/payment-engine/internal/domain/payment"
	pkgerrors "github.com/ledgerline/payment-engine/pkg/errors"
)

// Refund marker pair recorded on the payment when it enters REFUNDED.
const (
	refundReasonMarker = "Refunded"
	refundRuleMarker   = "REFUND"
)

// Store is the persistence collaborator contract the engine depends on. The
// event append and the status mutation must commit as one atomic unit.
type Store interface {
	AppendEventAndMutate(ctx context.Context, p *payment.Payment, e *payment.Event) error
}

type transitionOpts struct {
	failureReason string
	ruleCode      string
	fraudFlag     bool
}

// transition enforces the legal-edge table, mutates the payment and appends
// the audit event through a single transactional flush.
func (e *Engine) transition(ctx context.Context, p *payment.Payment, to payment.Status, reason string, payload payment.Payload, opts transitionOpts) error {
	from := p.Status
	if !payment.CanTransition(from, to) {
		return pkgerrors.NewInvalidTransitionError(string(from), string(to))
	}

	now := e.clock.Now()
	ev := payment.NewEvent(p.ID, from, to, reason, payload)
	ev.CreatedAt = now

	switch to {
	case payment.StatusProcessing:
		p.ProcessingStartedAt = &now
		p.CompletedAt = nil
		p.FailureReason = nil
		p.RuleTriggered = nil
		p.FraudFlag = false
	case payment.StatusSuccess:
		p.CompletedAt = &now
		p.FailureReason = nil
		p.RuleTriggered = nil
	case payment.StatusFailed:
		p.CompletedAt = &now
		p.FailureReason = &opts.failureReason
		p.RuleTriggered = &opts.ruleCode
		p.FraudFlag = opts.fraudFlag
	case payment.StatusRefunded:
		p.CompletedAt = &now
		marker := refundReasonMarker
		rule := refundRuleMarker
		p.FailureReason = &marker
		p.RuleTriggered = &rule
	}

	p.Status = to
	p.UpdatedAt = now

	if err := e.store.AppendEventAndMutate(ctx, p, ev); err != nil {
		return err
	}
	p.Events = append(p.Events, ev)
	return nil
}
