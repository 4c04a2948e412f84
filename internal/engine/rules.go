package engine

import (
	"fmt"
	"time"

	"github.com/ledgerline/payment-engine/internal/domain/payment"
)

const (
	RuleFraudHighAmount   = "FRAUD_HIGH_AMOUNT"
	RuleInvalidAmount     = "INVALID_AMOUNT"
	RuleMaintenanceWindow = "MAINTENANCE_WINDOW"
	RuleRandomFail        = "RANDOM_FAIL"
)

type Verdict struct {
	ShouldFail    bool
	FailureReason string
	RuleCode      string
	FraudFlag     bool
}

var passVerdict = Verdict{}

// EvaluateRules maps a payment's attributes to a fail/pass decision. Rules run
// in priority order, first match wins. Pure function of the payment, the
// config, and the supplied instant.
func EvaluateRules(cfg Config, p *payment.Payment, now time.Time) Verdict {
	if p.Amount.GreaterThan(cfg.FraudThreshold) {
		return Verdict{
			ShouldFail:    true,
			FailureReason: fmt.Sprintf("FRAUD_DETECTED - amount %s exceeds threshold of %s", p.Amount, cfg.FraudThreshold),
			RuleCode:      RuleFraudHighAmount,
			FraudFlag:     true,
		}
	}

	// Upstream validation rejects non-positive amounts already; the engine
	// enforces it independently.
	if p.Amount.Sign() <= 0 || p.Amount.LessThan(cfg.MinAmount) {
		return Verdict{
			ShouldFail:    true,
			FailureReason: fmt.Sprintf("INVALID_AMOUNT - amount %s is below the processable minimum of %s", p.Amount, cfg.MinAmount),
			RuleCode:      RuleInvalidAmount,
		}
	}

	if cfg.Maintenance != nil && inMaintenanceWindow(cfg.Maintenance, now) {
		return Verdict{
			ShouldFail:    true,
			FailureReason: "SERVICE_UNAVAILABLE - gateway is in a scheduled maintenance window",
			RuleCode:      RuleMaintenanceWindow,
		}
	}

	return passVerdict
}

func inMaintenanceWindow(w *MaintenanceWindow, now time.Time) bool {
	m := now.UTC().Minute()
	return m >= w.StartMinute && m < w.EndMinute
}
