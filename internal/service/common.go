package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hirelane/job-board/internal/events"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// storeError maps a repository failure onto the error taxonomy. Missing rows
// become NotFound for resource; anything else is an opaque persistence error.
func storeError(err error, resource string, id string) error {
	if isNoRows(err) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.NewPersistenceError(err)
}

// validID rejects ids that can never match a row so they fail as NotFound
// instead of as a database cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) error {
	if dispatcher == nil {
		return nil
	}
	err := dispatcher.Publish(ctx, event)
	if err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
	return err
}
