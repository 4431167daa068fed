package notifier

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepay/internal/domain"
	"tablepay/internal/feed"
	"tablepay/internal/logger"
)

type countingSound struct {
	plays int
	err   error
}

func (s *countingSound) Play() error {
	s.plays++
	return s.err
}

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.New("test", "error")
	require.NoError(t, err)
	return log
}

func readyEvent(id uuid.UUID) domain.OrderEvent {
	return domain.OrderEvent{
		Type:        domain.EventOrderUpdated,
		OrderID:     id,
		OrderNumber: "TP12345678",
		TableNumber: "4",
		OldStatus:   domain.StatusCooking,
		NewStatus:   domain.StatusReady,
	}
}

func TestHandleEventFiresOnReadyUpdate(t *testing.T) {
	var out bytes.Buffer
	sound := &countingSound{}
	n := New(testLogger(t), WithOutput(&out), WithSound(sound))

	n.HandleEvent(readyEvent(uuid.New()))

	assert.Contains(t, out.String(), "Order #TP12345678 (Table 4) is ready to serve!")
	assert.Equal(t, 1, sound.plays)
}

func TestHandleEventIgnoresInsertsAndOtherStatuses(t *testing.T) {
	var out bytes.Buffer
	sound := &countingSound{}
	n := New(testLogger(t), WithOutput(&out), WithSound(sound))

	id := uuid.New()
	n.HandleEvent(domain.OrderEvent{
		Type:        domain.EventOrderInserted,
		OrderID:     id,
		NewStatus:   domain.StatusReady, // inserts never alert, even at ready
		OrderNumber: "TP1",
	})
	n.HandleEvent(domain.OrderEvent{
		Type:      domain.EventOrderUpdated,
		OrderID:   id,
		NewStatus: domain.StatusCompleted,
	})

	assert.Empty(t, out.String())
	assert.Zero(t, sound.plays)
}

func TestHandleEventDedupesPerOrder(t *testing.T) {
	var out bytes.Buffer
	sound := &countingSound{}
	n := New(testLogger(t), WithOutput(&out), WithSound(sound))

	id := uuid.New()
	ev := readyEvent(id)
	n.HandleEvent(ev)
	n.HandleEvent(ev) // re-delivered
	n.HandleEvent(readyEvent(uuid.New()))

	assert.Equal(t, 2, strings.Count(out.String(), "ready to serve"))
	assert.Equal(t, 2, sound.plays)
}

func TestHandleEventSwallowsAudioFailure(t *testing.T) {
	var out bytes.Buffer
	sound := &countingSound{err: errors.New("no audio device")}
	n := New(testLogger(t), WithOutput(&out), WithSound(sound))

	assert.NotPanics(t, func() {
		n.HandleEvent(readyEvent(uuid.New()))
	})
	assert.Contains(t, out.String(), "ready to serve")
}

func TestAttachOnlySeesReadyUpdates(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	n := New(testLogger(t), WithOutput(&out), WithSound(&countingSound{}))

	fd := feed.NewMemory()
	sub, err := n.Attach(ctx, fd)
	require.NoError(t, err)
	defer sub.Close()

	id := uuid.New()
	require.NoError(t, fd.Publish(ctx, domain.OrderEvent{
		Type: domain.EventOrderInserted, OrderID: id, NewStatus: domain.StatusPending,
	}))
	require.NoError(t, fd.Publish(ctx, domain.OrderEvent{
		Type: domain.EventOrderUpdated, OrderID: id, OrderNumber: "TP9", TableNumber: "2",
		OldStatus: domain.StatusCooking, NewStatus: domain.StatusReady,
	}))
	require.NoError(t, fd.Publish(ctx, domain.OrderEvent{
		Type: domain.EventOrderUpdated, OrderID: id,
		OldStatus: domain.StatusReady, NewStatus: domain.StatusCompleted,
	}))

	assert.Equal(t, 1, strings.Count(out.String(), "ready to serve"))
}
