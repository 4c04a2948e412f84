package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerline/payment-engine/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Source hands out pending outbox rows and marks them after a successful
// produce. Marking after producing gives at-least-once delivery.
type Source interface {
	FetchPending(ctx context.Context, limit int) ([]*Event, error)
	MarkProduced(ctx context.Context, ids []uuid.UUID) error
}

type Producer interface {
	Produce(msg []byte) error
}

type Relay struct {
	src      Source
	producer Producer
	interval time.Duration
	batch    int
	stopCH   chan struct{}
}

func NewRelay(src Source, producer Producer, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{
		src:      src,
		producer: producer,
		interval: interval,
		batch:    100,
		stopCH:   make(chan struct{}),
	}
}

func (r *Relay) Run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := r.Flush(context.Background()); err != nil {
				logrus.Warnf("outbox flush failed: %v", err)
			}
		case <-r.stopCH:
			return
		}
	}
}

func (r *Relay) Stop() {
	close(r.stopCH)
}

// Flush relays one batch of pending events. Exported for tests and for a final
// drain on shutdown.
func (r *Relay) Flush(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	events, err := r.src.FetchPending(ctx, r.batch)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	produced := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			logrus.WithField("EVENT_ID", e.ID).Warnf("outbox event marshal failed: %v", err)
			continue
		}
		if err := r.producer.Produce(b); err != nil {
			logrus.WithField("EVENT_ID", e.ID).Warnf("outbox produce failed: %v", err)
			continue
		}
		produced = append(produced, e.ID)
	}

	if len(produced) == 0 {
		return nil
	}
	if err := r.src.MarkProduced(ctx, produced); err != nil {
		return err
	}
	metrics.OutboxProduced.Add(float64(len(produced)))
	return nil
}
