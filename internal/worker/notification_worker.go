package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hirelane/job-board/internal/domain"
	"github.com/hirelane/job-board/internal/notification"
	"github.com/hirelane/job-board/internal/observability"
	"github.com/hirelane/job-board/internal/repository"
)

// Sender delivers one notification message and reports the attempts made.
type Sender interface {
	Send(ctx context.Context, msg notification.Message) (int, error)
}

// NotificationWorker drains the notification queue with a fixed number of
// goroutines and records each outcome on its attempt row.
type NotificationWorker struct {
	queue       notification.Queue
	sender      Sender
	attempts    repository.NotificationRepository
	workers     int
	sendTimeout time.Duration
	metrics     *observability.Metrics
	logger      *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NotificationWorkerConfig configures the worker pool.
type NotificationWorkerConfig struct {
	Queue       notification.Queue
	Sender      Sender
	Attempts    repository.NotificationRepository
	Workers     int
	SendTimeout time.Duration
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewNotificationWorker builds the pool. It does nothing until Start.
func NewNotificationWorker(cfg NotificationWorkerConfig) *NotificationWorker {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		queue:       cfg.Queue,
		sender:      cfg.Sender,
		attempts:    cfg.Attempts,
		workers:     workers,
		sendTimeout: cfg.SendTimeout,
		metrics:     cfg.Metrics,
		logger:      logger,
	}
}

// Start launches the goroutines. Cancelling ctx or calling Stop ends them.
func (w *NotificationWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
	w.logger.Info("notification worker started", zap.Int("workers", w.workers))
}

// Stop stops dequeuing and waits for in-flight sends to finish.
func (w *NotificationWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("notification worker stopped")
}

func (w *NotificationWorker) run(ctx context.Context, id int) {
	defer w.wg.Done()
	for {
		msg, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, notification.ErrQueueClosed) {
				return
			}
			w.logger.Warn("dequeue failed", zap.Int("worker", id), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		w.process(msg)
	}
}

// process sends outside the pool context so shutdown lets a send finish
// within its own timeout.
func (w *NotificationWorker) process(msg notification.Message) {
	ctx := context.Background()
	if w.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.sendTimeout)
		defer cancel()
	}

	start := time.Now()
	attempts, err := w.sender.Send(ctx, msg)

	state := domain.NotificationSent
	lastError := ""
	if err != nil {
		state = domain.NotificationFailed
		lastError = err.Error()
		w.logger.Warn("notification failed",
			zap.String("notification_id", msg.ID),
			zap.String("application_id", msg.ApplicationID),
			zap.Int("attempts", attempts),
			zap.Error(err))
	} else {
		w.logger.Info("notification sent",
			zap.String("notification_id", msg.ID),
			zap.String("application_id", msg.ApplicationID),
			zap.Int("attempts", attempts),
			zap.Duration("latency", time.Since(start)))
	}
	w.metrics.RecordNotification(string(state))

	markCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if markErr := w.attempts.MarkResult(markCtx, msg.ID, state, attempts, lastError); markErr != nil {
		w.logger.Error("notification attempt not updated",
			zap.String("notification_id", msg.ID),
			zap.Error(markErr))
	}
}
