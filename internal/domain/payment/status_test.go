package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusCreated, StatusProcessing},
		{StatusProcessing, StatusSuccess},
		{StatusProcessing, StatusFailed},
		{StatusSuccess, StatusRefunded},
		{StatusFailed, StatusProcessing},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be legal", tt.from, tt.to)
	}

	statuses := []Status{StatusCreated, StatusProcessing, StatusSuccess, StatusFailed, StatusRefunded}
	legal := map[[2]Status]bool{}
	for _, tt := range allowed {
		legal[[2]Status{tt.from, tt.to}] = true
	}
	for _, from := range statuses {
		for _, to := range statuses {
			if !legal[[2]Status{from, to}] {
				assert.False(t, CanTransition(from, to), "%s -> %s should be illegal", from, to)
			}
		}
	}

	// REFUNDED has no outgoing edges at all.
	for _, to := range statuses {
		assert.False(t, CanTransition(StatusRefunded, to))
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusCreated.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusSuccess.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
}
