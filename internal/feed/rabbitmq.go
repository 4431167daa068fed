package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tablepay/internal/apperr"
	"tablepay/internal/config"
	"tablepay/internal/domain"
	"tablepay/internal/logger"
)

// Exchange carrying every order change event. Fanout: each subscriber
// gets its own server-named exclusive queue and filters client-side.
const exchangeName = "order_events"

// RabbitMQ is the broker-backed Feed shared by all staff clients.
type RabbitMQ struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  logger.Logger
}

// ConnectRabbitMQ dials the broker and declares the order_events exchange.
func ConnectRabbitMQ(cfg *config.RabbitMQ, log logger.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMBConn, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", apperr.ErrMBCh, err)
	}

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitMQ{conn: conn, ch: ch, log: log}, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, ev domain.OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = r.ch.PublishWithContext(pubCtx,
		exchangeName, // exchange
		"",           // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	r.log.Action("event_published").Debug("order event published",
		"type", string(ev.Type), "order_number", ev.OrderNumber, "new_status", string(ev.NewStatus))
	return nil
}

// Subscribe binds a fresh exclusive queue to the exchange and pumps
// matching events into the handler until the subscription is closed or
// the context is cancelled.
func (r *RabbitMQ) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMBCh, err)
	}

	q, err := ch.QueueDeclare(
		"",    // name (let server generate)
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", exchangeName, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	sub := &rabbitSub{ch: ch, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-deliveries:
				if !ok {
					return
				}
				var ev domain.OrderEvent
				if err := json.Unmarshal(msg.Body, &ev); err != nil {
					r.log.Action("event_decode_failed").Error("Failed to decode order event", err)
					continue
				}
				if f.Matches(ev) {
					h(ev)
				}
			}
		}
	}()

	return sub, nil
}

func (r *RabbitMQ) Close() error {
	if err := r.ch.Close(); err != nil {
		return fmt.Errorf("mb channel close: %w", err)
	}
	if err := r.conn.Close(); err != nil {
		return fmt.Errorf("mb close: %w", err)
	}
	return nil
}

type rabbitSub struct {
	ch   *amqp.Channel
	done chan struct{}
}

func (s *rabbitSub) Close() error {
	err := s.ch.Close()
	<-s.done
	return err
}
