package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hirelane/job-board/internal/domain"
	"github.com/hirelane/job-board/internal/events"
	"github.com/hirelane/job-board/internal/notification"
	"github.com/hirelane/job-board/internal/observability"
	"github.com/hirelane/job-board/internal/repository"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

// NotificationService turns status changes into queued notification messages.
type NotificationService struct {
	dispatcher events.Dispatcher
	attempts   repository.NotificationRepository
	queue      notification.Queue
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher       events.Dispatcher
	NotificationRepo repository.NotificationRepository
	Queue            notification.Queue
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		attempts:   deps.NotificationRepo,
		queue:      deps.Queue,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventJobCreated, n.logEvent)
	n.dispatcher.Subscribe(events.EventApplicationSubmitted, n.logEvent)
	n.dispatcher.Subscribe(events.EventApplicationStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("actor_id", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	return nil
}

// handleStatusChanged records a queued attempt, then hands the message to the
// queue. It never waits for delivery.
func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApplicationStatusChangedPayload)
	if !ok {
		return apperrors.NewInternalError(fmt.Errorf("unexpected payload %T", event.Payload))
	}
	if payload.NotificationID == "" {
		payload.NotificationID = uuid.NewString()
	}

	attempt := &domain.NotificationAttempt{
		ID:            payload.NotificationID,
		ApplicationID: payload.ApplicationID,
		Recipient:     payload.ApplicantEmail,
		Status:        payload.NewStatus,
		State:         domain.NotificationQueued,
	}
	if strings.TrimSpace(payload.ApplicantEmail) == "" {
		attempt.State = domain.NotificationFailed
		attempt.LastError = "applicant has no email address"
	}
	if err := n.attempts.Create(ctx, attempt); err != nil {
		n.metrics.RecordNotification("dropped")
		return apperrors.NewPersistenceError(err)
	}
	if attempt.State == domain.NotificationFailed {
		n.metrics.RecordNotification("failed")
		return apperrors.NewNotificationError(errors.New(attempt.LastError))
	}

	msg := notification.Message{
		ID:            attempt.ID,
		ApplicationID: payload.ApplicationID,
		Recipient:     payload.ApplicantEmail,
		RecipientName: payload.ApplicantName,
		JobTitle:      payload.JobTitle,
		Company:       payload.Company,
		Status:        payload.NewStatus,
		EnqueuedAt:    time.Now().UTC(),
	}
	if err := n.queue.Enqueue(ctx, msg); err != nil {
		n.metrics.RecordNotification("dropped")
		if markErr := n.attempts.MarkResult(ctx, attempt.ID, domain.NotificationFailed, 0, err.Error()); markErr != nil {
			n.logger.Warn("notification attempt not updated", zap.String("notification_id", attempt.ID), zap.Error(markErr))
		}
		return apperrors.NewNotificationError(err)
	}

	n.metrics.RecordNotification("queued")
	n.logger.Debug("notification queued",
		zap.String("notification_id", attempt.ID),
		zap.String("application_id", payload.ApplicationID),
		zap.String("status", string(payload.NewStatus)))
	return nil
}
