package service

import (
	"context"
	"testing"

	domain "github.com/ledgerline/payment-engine/internal/domain/payment"
	"github.com/ledgerline/payment-engine/internal/engine"
	"github.com/ledgerline/payment-engine/internal/repo/memory"
	pkgerrors "github.com/ledgerline/payment-engine/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRand struct {
	value float64
}

func (r stubRand) Float64() float64 { return r.value }

type nopNotifier struct{}

func (nopNotifier) Notify(p *domain.Payment, ev *domain.Event) {}

func newTestService(t *testing.T, rnd engine.Rand) (*PaymentService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	eng := engine.New(engine.DefaultConfig(), store, nopNotifier{}).WithRand(rnd)
	return NewPaymentService(store, eng), store
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t, stubRand{0.1})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Amount: decimal.RequireFromString("10.00"), OwnerID: "user-1"})
	assert.True(t, pkgerrors.IsInvalidArgumentError(err), "missing reference")

	_, err = svc.Create(ctx, CreateInput{Reference: "R1", Amount: decimal.Zero, OwnerID: "user-1"})
	assert.True(t, pkgerrors.IsInvalidArgumentError(err), "non-positive amount")

	_, err = svc.Create(ctx, CreateInput{Reference: "R1", Amount: decimal.RequireFromString("10.001"), OwnerID: "user-1"})
	assert.True(t, pkgerrors.IsInvalidArgumentError(err), "too many fractional digits")

	_, err = svc.Create(ctx, CreateInput{Reference: "R1", Amount: decimal.RequireFromString("10.00"), Currency: "XXX", OwnerID: "user-1"})
	assert.True(t, pkgerrors.IsInvalidArgumentError(err), "unsupported currency")
}

func TestCreateDefaultsAndDuplicate(t *testing.T) {
	svc, _ := newTestService(t, stubRand{0.1})
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{Reference: "R1", Amount: decimal.RequireFromString("50.00"), OwnerID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, domain.StatusCreated, p.Status)
	assert.Empty(t, p.Events)

	_, err = svc.Create(ctx, CreateInput{Reference: "R1", Amount: decimal.RequireFromString("60.00"), OwnerID: "user-1"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDuplicateReferenceError(err))
}

func TestCreateThenProcessScenario(t *testing.T) {
	svc, _ := newTestService(t, stubRand{0.1})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Reference: "R1", Amount: decimal.RequireFromString("50.00"), Currency: "USD", OwnerID: "user-1"})
	require.NoError(t, err)

	p, err := svc.Process(ctx, "R1", "user-1", engine.TriggerManual)
	require.NoError(t, err)
	assert.Contains(t, []domain.Status{domain.StatusSuccess, domain.StatusFailed}, p.Status)
	require.Len(t, p.Events, 2)
	assert.Equal(t, domain.StatusCreated, p.Events[0].FromStatus)
	assert.Equal(t, domain.StatusProcessing, p.Events[0].ToStatus)
	assert.Equal(t, domain.StatusProcessing, p.Events[1].FromStatus)
	assert.True(t, p.Events[1].ToStatus.IsTerminal())
}

func TestProcessFraudScenario(t *testing.T) {
	svc, _ := newTestService(t, stubRand{0.1})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Reference: "R2", Amount: decimal.RequireFromString("20000.00"), OwnerID: "user-1"})
	require.NoError(t, err)

	p, err := svc.Process(ctx, "R2", "user-1", engine.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, p.Status)
	require.NotNil(t, p.RuleTriggered)
	assert.Equal(t, engine.RuleFraudHighAmount, *p.RuleTriggered)
	assert.True(t, p.FraudFlag)
}

func TestProcessUnknownPayment(t *testing.T) {
	svc, _ := newTestService(t, stubRand{0.1})

	_, err := svc.Process(context.Background(), "missing", "user-1", engine.TriggerManual)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFoundError(err))
}

func TestRetryAndRefundDelegation(t *testing.T) {
	// Decline every attempt so the payment stays FAILED.
	svc, _ := newTestService(t, stubRand{0.99})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Reference: "R3", Amount: decimal.RequireFromString("50.00"), OwnerID: "user-1"})
	require.NoError(t, err)
	p, err := svc.Process(ctx, "R3", "user-1", engine.TriggerManual)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFailed, p.Status)

	p, err = svc.Retry(ctx, "R3", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.RetryCount)

	_, err = svc.Refund(ctx, "R3", "user-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsIllegalStateError(err))
}

func TestSummaryThroughService(t *testing.T) {
	svc, _ := newTestService(t, stubRand{0.99})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Reference: "R4", Amount: decimal.RequireFromString("50.00"), OwnerID: "user-1"})
	require.NoError(t, err)
	_, err = svc.Process(ctx, "R4", "user-1", engine.TriggerManual)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.StatusCounts[domain.StatusFailed])
	assert.Equal(t, 1, summary.FailureBreakdown["Gateway declined the transaction"])
}
