package queue

import (
	"sync"

	"go.uber.org/zap"
)

// LocalQueue delivers published messages to in-process subscribers,
// synchronously and in subscription order.
type LocalQueue struct {
	mu       sync.RWMutex
	handlers map[string][]func(data []byte) error
	closed   bool
	log      *zap.Logger
}

func NewLocalQueue(log *zap.Logger) *LocalQueue {
	return &LocalQueue{
		handlers: make(map[string][]func(data []byte) error),
		log:      log,
	}
}

func (q *LocalQueue) Publish(subject string, data []byte) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil
	}
	handlers := append([]func(data []byte) error(nil), q.handlers[subject]...)
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(data); err != nil {
			q.log.Error("Local subscriber failed", zap.String("subject", subject), zap.Error(err))
		}
	}
	return nil
}

func (q *LocalQueue) Subscribe(subject string, handler func(data []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[subject] = append(q.handlers[subject], handler)
	q.log.Info("Subscribed to local subject", zap.String("subject", subject))
	return nil
}

func (q *LocalQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.handlers = make(map[string][]func(data []byte) error)
	return nil
}
