package engine

import "github.com/shopspring/decimal"

// MaintenanceWindow is a deterministic periodic unavailability window:
// processing fails while the clock's minute-of-hour is in [StartMinute, EndMinute).
type MaintenanceWindow struct {
	StartMinute int
	EndMinute   int
}

// Config carries every tunable the engine needs. There are no package-level
// thresholds; per-test overrides go through here.
type Config struct {
	FraudThreshold     decimal.Decimal
	MinAmount          decimal.Decimal
	SuccessProbability float64
	MaxRetryCount      int

	// Optional rule, disabled when nil.
	Maintenance *MaintenanceWindow
}

func DefaultConfig() Config {
	return Config{
		FraudThreshold:     decimal.RequireFromString("10000.00"),
		MinAmount:          decimal.RequireFromString("1.00"),
		SuccessProbability: 0.70,
		MaxRetryCount:      3,
	}
}
