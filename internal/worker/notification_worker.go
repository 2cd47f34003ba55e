package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/notify"
)

const sendTimeout = 30 * time.Second

// NotificationWorker delivers mail off the request path. Enqueue never
// blocks; when the queue is full or the worker is stopped the message is
// dropped and logged.
type NotificationWorker struct {
	sender notify.Sender
	logger *zap.Logger

	mu     sync.Mutex
	queue  chan notify.Message
	closed bool

	startOnce sync.Once
	done      chan struct{}
}

// NewNotificationWorker builds a worker with a queue of queueSize messages.
func NewNotificationWorker(sender notify.Sender, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &NotificationWorker{
		sender: sender,
		logger: logger,
		queue:  make(chan notify.Message, queueSize),
		done:   make(chan struct{}),
	}
}

// Start launches the delivery goroutine.
func (w *NotificationWorker) Start() {
	w.startOnce.Do(func() {
		go w.run()
	})
}

// Enqueue schedules msg for delivery and reports whether it was accepted.
func (w *NotificationWorker) Enqueue(msg notify.Message) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Warn("notification worker stopped; dropping message",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return false
	}
	select {
	case w.queue <- msg:
		return true
	default:
		w.logger.Warn("notification queue full; dropping message",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return false
	}
}

// Stop closes the queue and waits until pending messages are delivered or
// ctx expires. Later Enqueue calls drop their message.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.Start()
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for msg := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := w.sender.Send(ctx, msg); err != nil {
			w.logger.Error("notification delivery failed",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
		cancel()
	}
}
