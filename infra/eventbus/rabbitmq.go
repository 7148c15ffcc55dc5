package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/amirasaad/finshare/pkg/eventbus"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decoder rebuilds a typed event from its JSON payload.
type Decoder func(payload json.RawMessage) (events.Event, error)

func decodeAs[T events.Event](payload json.RawMessage) (events.Event, error) {
	var e T
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, err
	}
	return e, nil
}

// DefaultDecoders covers every event type the services emit.
func DefaultDecoders() map[string]Decoder {
	return map[string]Decoder{
		events.EventTypeGoalCompleted.String():         decodeAs[events.GoalCompleted],
		events.EventTypeGoalReopened.String():          decodeAs[events.GoalReopened],
		events.EventTypeTransactionPosted.String():     decodeAs[events.TransactionPosted],
		events.EventTypeTransactionRemoved.String():    decodeAs[events.TransactionRemoved],
		events.EventTypeGroupMemberJoined.String():     decodeAs[events.GroupMemberJoined],
		events.EventTypeBalanceDriftCorrected.String(): decodeAs[events.BalanceDriftCorrected],
	}
}

func encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return json.Marshal(envelope{Type: event.Type(), Payload: data})
}

func decode(body []byte, decoders map[string]Decoder) (events.Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	dec, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	return dec(env.Payload)
}

// RabbitMQEventBus publishes events to a direct exchange, one routing key per
// event type. Register binds a durable queue per event type and consumes it.
type RabbitMQEventBus struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	decoders map[string]Decoder
	logger   *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWithRabbitMQ dials url and declares the exchange.
func NewWithRabbitMQ(
	url, exchange string,
	decoders map[string]Decoder,
	logger *slog.Logger,
) (*RabbitMQEventBus, error) {
	if url == "" || exchange == "" {
		return nil, fmt.Errorf("rabbitmq event bus: url and exchange are required")
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq event bus: dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq event bus: open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq event bus: declare exchange: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RabbitMQEventBus{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		decoders: decoders,
		logger:   logger.With("component", "rabbitmq-event-bus"),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Emit publishes the event as a persistent JSON envelope.
func (b *RabbitMQEventBus) Emit(ctx context.Context, event events.Event) error {
	body, err := encode(event)
	if err != nil {
		b.logger.Error("failed to encode event", "error", err, "type", event.Type())
		return fmt.Errorf("rabbitmq event bus: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	b.mu.Lock()
	err = b.channel.PublishWithContext(
		ctx,
		b.exchange,
		routingKeyFor(events.EventType(event.Type())),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         event.Type(),
			Body:         body,
		},
	)
	b.mu.Unlock()
	if err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("rabbitmq event bus: publish: %w", err)
	}

	b.logger.Debug("event emitted", "type", event.Type())
	return nil
}

// Register declares and binds the queue for eventType and consumes it in the
// background until Close.
func (b *RabbitMQEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	et := events.EventType(eventType)
	queue := queueNameFor(b.exchange, et)

	ch, err := b.conn.Channel()
	if err != nil {
		b.logger.Error("failed to open consumer channel", "error", err, "event_type", eventType)
		return
	}
	if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		b.logger.Error("failed to declare queue", "error", err, "queue", queue)
		_ = ch.Close()
		return
	}
	if err = ch.QueueBind(queue, routingKeyFor(et), b.exchange, false, nil); err != nil {
		b.logger.Error("failed to bind queue", "error", err, "queue", queue)
		_ = ch.Close()
		return
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		b.logger.Error("failed to start consuming", "error", err, "queue", queue)
		_ = ch.Close()
		return
	}

	go b.consume(ch, msgs, eventType, handler)
	b.logger.Info("handler registered", "event_type", eventType, "queue", queue)
}

func (b *RabbitMQEventBus) consume(
	ch *amqp091.Channel,
	msgs <-chan amqp091.Delivery,
	eventType string,
	handler eventbus.HandlerFunc,
) {
	defer ch.Close() //nolint:errcheck
	for {
		select {
		case <-b.ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}
			b.deliver(d, eventType, handler)
		}
	}
}

func (b *RabbitMQEventBus) deliver(d amqp091.Delivery, eventType string, handler eventbus.HandlerFunc) {
	evt, err := decode(d.Body, b.decoders)
	if err != nil {
		b.logger.Error("failed to decode delivery", "error", err, "event_type", eventType)
		_ = d.Nack(false, false)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panic recovered", "panic", r, "event_type", eventType)
			_ = d.Nack(false, false)
		}
	}()
	if err := handler(b.ctx, evt); err != nil {
		b.logger.Error("handler error", "error", err, "event_type", eventType)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// Close stops the consumers and closes the connection.
func (b *RabbitMQEventBus) Close() error {
	b.cancel()
	if b.channel != nil {
		_ = b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

var _ eventbus.Bus = (*RabbitMQEventBus)(nil)
