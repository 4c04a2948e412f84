package config

import (
	"testing"

	"github.com/ledgerline/payment-engine/internal/engine"
	"github.com/stretchr/testify/assert"
)

func TestMaintenanceWindowParsing(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  *engine.MaintenanceWindow
	}{
		{"valid", "45-50", &engine.MaintenanceWindow{StartMinute: 45, EndMinute: 50}},
		{"closes the hour", "55-60", &engine.MaintenanceWindow{StartMinute: 55, EndMinute: 60}},
		{"out of range", "70-80", nil},
		{"end past the hour", "50-61", nil},
		{"reversed", "50-45", nil},
		{"empty window", "45-45", nil},
		{"negative start", "-5-10", nil},
		{"not numeric", "always-never", nil},
		{"missing separator", "45", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("MAINTENANCE_WINDOW", tc.value)
			cfg := Load()
			assert.Equal(t, tc.want, cfg.Engine.Maintenance)
		})
	}
}

func TestMaintenanceWindowUnsetDisablesRule(t *testing.T) {
	t.Setenv("MAINTENANCE_WINDOW", "")
	cfg := Load()
	assert.Nil(t, cfg.Engine.Maintenance)
}
