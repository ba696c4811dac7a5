package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/iux-juridico/invitaciones/backend/internal/confirmations"
	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

// Worker drains fire-and-forget notifications on a background goroutine
// so a slow or failing transport never stalls a submission. The queue is
// bounded; when it is full the notification is dropped with a log line,
// never blocking the caller.
type Worker struct {
	dispatcher confirmations.Dispatcher
	queue      chan confirmations.Message
	logger     *zap.Logger
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewWorker starts the drain goroutine. Close must be called on shutdown
// to flush queued notifications.
func NewWorker(dispatcher confirmations.Dispatcher, buffer int, logger *zap.Logger) *Worker {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	worker := &Worker{
		dispatcher: dispatcher,
		queue:      make(chan confirmations.Message, buffer),
		logger:     logger,
	}
	worker.wg.Add(1)
	go worker.run()
	return worker
}

// Enqueue hands a notification to the background drain. Never blocks.
func (w *Worker) Enqueue(msg confirmations.Message) {
	select {
	case w.queue <- msg:
	default:
		w.logger.Warn("notification queue full, dropping message",
			zap.String("to", msg.ToEmail))
	}
}

// Close stops accepting work and waits for queued notifications to drain.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		close(w.queue)
	})
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for msg := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		result := w.dispatcher.SendConfirmationEmail(ctx, msg)
		cancel()
		if !result.Success {
			w.logger.Warn("background notification failed",
				zap.String("to", msg.ToEmail),
				zap.String("message", result.Message))
		}
	}
}
