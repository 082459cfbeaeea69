package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// EventsExchange is the topic exchange every subject is routed through.
	EventsExchange = "chargehub.events"

	publishTimeout = 5 * time.Second
	reconnectDelay = 5 * time.Second
)

// RabbitMQQueue publishes subjects as routing keys on one topic exchange.
// Subscriptions are remembered and bound again after a reconnect.
type RabbitMQQueue struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
	subs    map[string][]func(data []byte) error
	closed  bool
	mu      sync.RWMutex
	log     *zap.Logger
}

func NewRabbitMQQueue(url string, log *zap.Logger) (MessageQueue, error) {
	q := &RabbitMQQueue{
		url:  url,
		subs: make(map[string][]func(data []byte) error),
		log:  log,
	}
	if err := q.connect(); err != nil {
		return nil, err
	}

	go q.monitorConnection()

	log.Info("Successfully connected to RabbitMQ", zap.String("exchange", EventsExchange))
	return q, nil
}

func (q *RabbitMQQueue) connect() error {
	conn, err := amqp.Dial(q.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("rabbitmq: declare exchange: %w", err)
	}

	q.mu.Lock()
	q.conn = conn
	q.channel = ch
	q.mu.Unlock()
	return nil
}

func (q *RabbitMQQueue) Publish(subject string, data []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.channel == nil || q.channel.IsClosed() {
		return fmt.Errorf("rabbitmq: channel not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := q.channel.PublishWithContext(ctx, EventsExchange, subject, false, false, amqp.Publishing{
		ContentType:  "application/json",
		AppId:        "chargehub-api",
		Type:         subject,
		DeliveryMode: amqp.Persistent,
		Body:         data,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe binds an exclusive queue to subject, so every replica receives
// its own copy of each event.
func (q *RabbitMQQueue) Subscribe(subject string, handler func(data []byte) error) error {
	q.mu.Lock()
	q.subs[subject] = append(q.subs[subject], handler)
	ch := q.channel
	q.mu.Unlock()

	return q.consume(ch, subject, handler)
}

func (q *RabbitMQQueue) consume(ch *amqp.Channel, subject string, handler func(data []byte) error) error {
	if ch == nil {
		return fmt.Errorf("rabbitmq: channel not available")
	}

	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: declare queue: %w", err)
	}
	if err := ch.QueueBind(queue.Name, subject, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: bind %s: %w", subject, err)
	}
	msgs, err := ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume %s: %w", subject, err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg.Body); err != nil {
				q.log.Error("Error processing message",
					zap.String("subject", subject),
					zap.Error(err),
				)
			}
		}
	}()

	q.log.Debug("Subscribed to RabbitMQ subject", zap.String("subject", subject))
	return nil
}

func (q *RabbitMQQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

func (q *RabbitMQQueue) monitorConnection() {
	for {
		q.mu.RLock()
		conn := q.conn
		q.mu.RUnlock()

		reason, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if !ok || q.isClosed() {
			return
		}
		q.log.Warn("RabbitMQ connection lost, reconnecting", zap.String("reason", reason.Reason))

		for !q.isClosed() {
			time.Sleep(reconnectDelay)
			if err := q.connect(); err != nil {
				q.log.Error("Failed to reconnect to RabbitMQ", zap.Error(err))
				continue
			}
			q.resubscribe()
			q.log.Info("Reconnected to RabbitMQ")
			break
		}
	}
}

func (q *RabbitMQQueue) resubscribe() {
	q.mu.RLock()
	ch := q.channel
	subs := make(map[string][]func(data []byte) error, len(q.subs))
	for subject, handlers := range q.subs {
		subs[subject] = append([]func(data []byte) error(nil), handlers...)
	}
	q.mu.RUnlock()

	for subject, handlers := range subs {
		for _, handler := range handlers {
			if err := q.consume(ch, subject, handler); err != nil {
				q.log.Error("Failed to restore subscription", zap.String("subject", subject), zap.Error(err))
			}
		}
	}
}

func (q *RabbitMQQueue) isClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
