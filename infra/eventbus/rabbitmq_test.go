package eventbus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRoutingNames(t *testing.T) {
	assert.Equal(t, "events.goal.completed", routingKeyFor(events.EventTypeGoalCompleted))
	assert.Equal(t, "events.ledger.driftcorrected", routingKeyFor(events.EventTypeBalanceDriftCorrected))
	assert.Equal(t, "finshare.events.queue.group.memberjoined",
		queueNameFor("finshare.events", events.EventTypeGroupMemberJoined))
	assert.Equal(t, "events.custom", routingKeyFor(events.EventType("Custom")))
}

func TestEnvelopeDecodeRestoresConcreteType(t *testing.T) {
	in := events.GoalCompleted{
		Meta:    events.NewMeta(uuid.New()),
		GoalID:  uuid.New(),
		Current: decimal.NewFromInt(1000),
		Target:  decimal.NewFromInt(1000),
	}
	body, err := encode(in)
	require.NoError(t, err)

	out, err := decode(body, DefaultDecoders())
	require.NoError(t, err)
	got, ok := out.(events.GoalCompleted)
	require.True(t, ok)
	assert.Equal(t, in.GoalID, got.GoalID)
	assert.True(t, in.Current.Equal(got.Current))
}

func TestEnvelopeDecodeUnknownType(t *testing.T) {
	_, err := decode([]byte(`{"type":"Nope.Nope","payload":{}}`), DefaultDecoders())
	assert.Error(t, err)

	_, err = decode([]byte(`not json`), DefaultDecoders())
	assert.Error(t, err)
}

func TestRabbitMQEventBus_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping rabbitmq integration test in short mode")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672")
	require.NoError(t, err)

	url := fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
	bus, err := NewWithRabbitMQ(url, "finshare.test", DefaultDecoders(), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan events.Event, 1)
	bus.Register(events.EventTypeTransactionRemoved.String(), func(ctx context.Context, e events.Event) error {
		received <- e
		return nil
	})

	want := events.TransactionRemoved{Meta: events.NewMeta(uuid.New()), TransactionID: uuid.New()}
	require.NoError(t, bus.Emit(ctx, want))

	select {
	case e := <-received:
		got, ok := e.(events.TransactionRemoved)
		require.True(t, ok)
		assert.Equal(t, want.TransactionID, got.TransactionID)
	case <-time.After(10 * time.Second):
		t.Fatal("event not delivered")
	}
}
