package eventbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryEventBus_DispatchesByType(t *testing.T) {
	bus := NewWithMemory(discardLogger())

	var completed, removed int
	bus.Register(events.EventTypeGoalCompleted.String(), func(ctx context.Context, e events.Event) error {
		completed++
		_, ok := e.(events.GoalCompleted)
		assert.True(t, ok)
		return nil
	})
	bus.Register(events.EventTypeTransactionRemoved.String(), func(ctx context.Context, e events.Event) error {
		removed++
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), events.GoalCompleted{GoalID: uuid.New()}))
	require.NoError(t, bus.Emit(context.Background(), events.GoalCompleted{GoalID: uuid.New()}))

	assert.Equal(t, 2, completed)
	assert.Equal(t, 0, removed)
	assert.Len(t, bus.Published(), 2)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}

func TestMemoryEventBus_HandlerFailureDoesNotFailEmit(t *testing.T) {
	bus := NewWithMemory(discardLogger())
	calls := 0
	bus.Register(events.EventTypeGroupMemberJoined.String(), func(ctx context.Context, e events.Event) error {
		calls++
		return errors.New("handler down")
	})
	bus.Register(events.EventTypeGroupMemberJoined.String(), func(ctx context.Context, e events.Event) error {
		calls++
		panic("boom")
	})

	err := bus.Emit(context.Background(), events.GroupMemberJoined{GroupID: uuid.New()})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}
