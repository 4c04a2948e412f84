package engine

import (
	"math/rand"
	"time"
)

// Clock and Rand are injectable so the maintenance-window rule and the outcome
// simulator stay reproducible under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type Rand interface {
	Float64() float64
}

func newDefaultRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
