package engine

import (
	"context"
	"fmt"

	"github.com/ledgerline/payment-engine/internal/domain/payment"
	"github.com/ledgerline/payment-engine/internal/metrics"
	pkgerrors "github.com/ledgerline/payment-engine/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Trigger records what started a processing run in the audit trail.
const (
	TriggerAuto   = "auto"
	TriggerManual = "manual"
	TriggerRetry  = "retry"
)

// Notifier receives a fire-and-forget status-change message. Implementations
// must never block the caller and never return delivery failures.
type Notifier interface {
	Notify(p *payment.Payment, ev *payment.Event)
}

type Engine struct {
	cfg      Config
	store    Store
	notifier Notifier
	clock    Clock
	rnd      Rand
}

func New(cfg Config, store Store, notifier Notifier) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		clock:    systemClock{},
		rnd:      newDefaultRand(),
	}
}

func (e *Engine) WithClock(c Clock) *Engine {
	e.clock = c
	return e
}

func (e *Engine) WithRand(r Rand) *Engine {
	e.rnd = r
	return e
}

// Process runs the full pipeline: CREATED|FAILED -> PROCESSING -> SUCCESS|FAILED.
// A declined payment is a normal terminal outcome, not an error; errors signal
// precondition violations or persistence failures only.
func (e *Engine) Process(ctx context.Context, p *payment.Payment, trigger string) error {
	if p.Status != payment.StatusCreated && p.Status != payment.StatusFailed {
		return pkgerrors.NewIllegalStateError(fmt.Sprintf(
			"payment in status '%s' cannot be processed, only CREATED or FAILED payments may be (re-)processed", p.Status))
	}

	err := e.transition(ctx, p, payment.StatusProcessing, trigger, payment.Payload{"trigger": trigger}, transitionOpts{})
	if err != nil {
		return err
	}

	verdict := EvaluateRules(e.cfg, p, e.clock.Now())
	if verdict.ShouldFail {
		metrics.RuleHits.WithLabelValues(verdict.RuleCode).Inc()
		err = e.transition(ctx, p, payment.StatusFailed, verdict.FailureReason, nil, transitionOpts{
			failureReason: verdict.FailureReason,
			ruleCode:      verdict.RuleCode,
			fraudFlag:     verdict.FraudFlag,
		})
	} else {
		outcome := Simulate(e.cfg, e.rnd)
		if outcome.Success {
			err = e.transition(ctx, p, payment.StatusSuccess, "Gateway approved the transaction", nil, transitionOpts{})
		} else {
			err = e.transition(ctx, p, payment.StatusFailed, outcome.FailureReason, nil, transitionOpts{
				failureReason: outcome.FailureReason,
				ruleCode:      outcome.RuleCode,
			})
		}
	}
	if err != nil {
		return err
	}

	metrics.PaymentOutcomes.WithLabelValues(string(p.Status)).Inc()
	logrus.WithFields(logrus.Fields{
		"REF":     p.Reference,
		"STATUS":  p.Status,
		"TRIGGER": trigger,
	}).Info("PAYMENT:PROCESSED")

	// Fire only after the terminal state is durably committed.
	e.notifier.Notify(p, p.Events[len(p.Events)-1])
	return nil
}

// Retry re-enters the state machine for a FAILED payment, capped by config.
func (e *Engine) Retry(ctx context.Context, p *payment.Payment) error {
	if p.Status != payment.StatusFailed {
		return pkgerrors.NewIllegalStateError(fmt.Sprintf(
			"only FAILED payments can be retried (current: %s)", p.Status))
	}
	if p.RetryCount >= e.cfg.MaxRetryCount {
		return pkgerrors.NewRetryLimitError(e.cfg.MaxRetryCount)
	}
	p.RetryCount++
	return e.Process(ctx, p, TriggerRetry)
}

// Refund transitions a SUCCESS payment to the REFUNDED terminal state.
func (e *Engine) Refund(ctx context.Context, p *payment.Payment) error {
	if p.Status != payment.StatusSuccess {
		return pkgerrors.NewIllegalStateError(fmt.Sprintf(
			"only SUCCESS payments can be refunded (current: %s)", p.Status))
	}
	err := e.transition(ctx, p, payment.StatusRefunded, "Customer-initiated refund", nil, transitionOpts{})
	if err != nil {
		return err
	}

	metrics.PaymentOutcomes.WithLabelValues(string(p.Status)).Inc()
	logrus.WithFields(logrus.Fields{
		"REF":    p.Reference,
		"STATUS": p.Status,
	}).Info("PAYMENT:REFUNDED")

	e.notifier.Notify(p, p.Events[len(p.Events)-1])
	return nil
}
