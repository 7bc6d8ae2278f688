package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

const maxAttempts = 2

// Dispatcher renders and sends status-change emails, retrying a transient
// failure once.
type Dispatcher struct {
	transport      Transport
	from           string
	attemptTimeout time.Duration
	logger         *zap.Logger
}

// NewDispatcher builds a dispatcher. attemptTimeout bounds each send.
func NewDispatcher(transport Transport, from string, attemptTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{transport: transport, from: from, attemptTimeout: attemptTimeout, logger: logger}
}

// Send delivers msg and returns how many attempts were made. A failure is
// returned as a NotificationError.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (int, error) {
	email, err := Render(d.from, msg)
	if err != nil {
		return 0, apperrors.NewNotificationError(err)
	}

	attempts := 0
	for attempts < maxAttempts {
		attempts++
		err = d.sendOnce(ctx, email)
		if err == nil {
			return attempts, nil
		}
		if !IsTransient(err) || ctx.Err() != nil {
			break
		}
		d.logger.Warn("transient mail failure, retrying",
			zap.String("notification_id", msg.ID),
			zap.Int("attempt", attempts),
			zap.Error(err))
	}
	return attempts, apperrors.NewNotificationError(err)
}

func (d *Dispatcher) sendOnce(ctx context.Context, email Email) error {
	if d.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.attemptTimeout)
		defer cancel()
	}
	return d.transport.Send(ctx, email)
}
