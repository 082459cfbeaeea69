package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/pkg/config"
)

// MessageQueue defines the interface for a message queue adapter
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

// New picks the adapter named by cfg.Driver. Driver "local" (or none) keeps
// events inside this process, which is enough for a single replica.
func New(cfg config.QueueConfig, log *zap.Logger) (MessageQueue, error) {
	switch cfg.Driver {
	case "nats":
		return NewNATSQueue(cfg.NATSURL, log)
	case "rabbitmq":
		return NewRabbitMQQueue(cfg.RabbitMQURL, log)
	case "local", "none", "":
		log.Warn("No message broker configured, domain events will not leave this process")
		return NewLocalQueue(log), nil
	}
	return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
}

// PublishEvent serializes evt and publishes it on subject.
func PublishEvent(mq MessageQueue, subject string, evt domain.Event) error {
	if mq == nil {
		return nil
	}
	if evt.SentAt.IsZero() {
		evt.SentAt = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", evt.Type, err)
	}
	return mq.Publish(subject, data)
}

// DecodeEvent is the inverse of PublishEvent.
func DecodeEvent(data []byte) (domain.Event, error) {
	var evt domain.Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return evt, fmt.Errorf("failed to decode event: %w", err)
	}
	return evt, nil
}
