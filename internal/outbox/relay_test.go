package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	events []*Event
	marked []uuid.UUID
}

func (s *fakeSource) FetchPending(ctx context.Context, limit int) ([]*Event, error) {
	pending := []*Event{}
	for _, e := range s.events {
		if e.Status == EventStatus_Pending {
			pending = append(pending, e)
			if limit > 0 && len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (s *fakeSource) MarkProduced(ctx context.Context, ids []uuid.UUID) error {
	s.marked = append(s.marked, ids...)
	for _, e := range s.events {
		for _, id := range ids {
			if e.ID == id {
				e.Status = EventStatus_Produced
			}
		}
	}
	return nil
}

type fakeProducer struct {
	msgs    [][]byte
	failFor map[uuid.UUID]bool
}

func (p *fakeProducer) Produce(msg []byte) error {
	var e Event
	if err := json.Unmarshal(msg, &e); err == nil && p.failFor[e.ID] {
		return errors.New("broker unavailable")
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestFlushMarksProducedEvents(t *testing.T) {
	src := &fakeSource{events: []*Event{
		NewEvent("payment.status_changed", uuid.New(), json.RawMessage(`{"a":1}`)),
		NewEvent("payment.status_changed", uuid.New(), json.RawMessage(`{"b":2}`)),
	}}
	producer := &fakeProducer{}
	relay := NewRelay(src, producer, time.Second)

	require.NoError(t, relay.Flush(context.Background()))
	assert.Len(t, producer.msgs, 2)
	assert.Len(t, src.marked, 2)
	for _, e := range src.events {
		assert.Equal(t, EventStatus_Produced, e.Status)
	}

	// Nothing pending on the second pass.
	require.NoError(t, relay.Flush(context.Background()))
	assert.Len(t, producer.msgs, 2)
}

func TestFlushKeepsFailedProducesPending(t *testing.T) {
	ok := NewEvent("payment.status_changed", uuid.New(), json.RawMessage(`{}`))
	bad := NewEvent("payment.status_changed", uuid.New(), json.RawMessage(`{}`))
	src := &fakeSource{events: []*Event{ok, bad}}
	producer := &fakeProducer{failFor: map[uuid.UUID]bool{bad.ID: true}}
	relay := NewRelay(src, producer, time.Second)

	require.NoError(t, relay.Flush(context.Background()))
	assert.Equal(t, EventStatus_Produced, ok.Status)
	assert.Equal(t, EventStatus_Pending, bad.Status)
}
