package engine

import (
	"testing"
	"time"

	domain "github.com/ledgerline/payment-engine/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func paymentWithAmount(amount string) *domain.Payment {
	return domain.New("ref", decimal.RequireFromString(amount), "USD", "user-1")
}

func TestEvaluateRulesPriorityOrder(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		amount   string
		wantFail bool
		wantRule string
	}{
		{"above fraud threshold", "10000.01", true, RuleFraudHighAmount},
		{"at fraud threshold passes", "10000.00", false, ""},
		{"below minimum", "0.99", true, RuleInvalidAmount},
		{"at minimum passes", "1.00", false, ""},
		{"typical amount passes", "250.00", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := EvaluateRules(cfg, paymentWithAmount(tt.amount), now)
			assert.Equal(t, tt.wantFail, v.ShouldFail)
			assert.Equal(t, tt.wantRule, v.RuleCode)
		})
	}
}

func TestEvaluateRulesFraudFlagOnlyForThreshold(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now().UTC()

	v := EvaluateRules(cfg, paymentWithAmount("20000.00"), now)
	assert.True(t, v.ShouldFail)
	assert.True(t, v.FraudFlag)

	v = EvaluateRules(cfg, paymentWithAmount("0.10"), now)
	assert.True(t, v.ShouldFail)
	assert.False(t, v.FraudFlag)
}

func TestEvaluateRulesMaintenanceWindowDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Maintenance = &MaintenanceWindow{StartMinute: 10, EndMinute: 20}
	p := paymentWithAmount("50.00")

	open := time.Date(2025, 6, 1, 8, 10, 0, 0, time.UTC)
	v := EvaluateRules(cfg, p, open)
	assert.True(t, v.ShouldFail)
	assert.Equal(t, RuleMaintenanceWindow, v.RuleCode)
	assert.False(t, v.FraudFlag)

	closed := time.Date(2025, 6, 1, 8, 20, 0, 0, time.UTC)
	v = EvaluateRules(cfg, p, closed)
	assert.False(t, v.ShouldFail)

	// Disabled unless explicitly configured.
	cfg.Maintenance = nil
	v = EvaluateRules(cfg, p, open)
	assert.False(t, v.ShouldFail)
}

func TestSimulateBoundary(t *testing.T) {
	cfg := DefaultConfig()

	o := Simulate(cfg, &scriptRand{values: []float64{0.6999}})
	assert.True(t, o.Success)
	assert.Empty(t, o.RuleCode)

	o = Simulate(cfg, &scriptRand{values: []float64{0.70}})
	assert.False(t, o.Success)
	assert.Equal(t, RuleRandomFail, o.RuleCode)
	assert.Equal(t, "Gateway declined the transaction", o.FailureReason)
}
