package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/job-board/internal/domain"
)

// NotificationRepository records status-change email attempts.
type NotificationRepository interface {
	Create(ctx context.Context, attempt *domain.NotificationAttempt) error
	MarkResult(ctx context.Context, id string, state domain.NotificationState, attempts int, lastError string) error
	ListByApplication(ctx context.Context, applicationID string) ([]domain.NotificationAttempt, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository constructs repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

// Create inserts the attempt. The caller assigns the id so it can travel
// with the queued message.
func (r *notificationRepository) Create(ctx context.Context, attempt *domain.NotificationAttempt) error {
	const query = `
        INSERT INTO notification_attempts (id, application_id, recipient, status, state, attempts, last_error)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		attempt.ID,
		attempt.ApplicationID,
		attempt.Recipient,
		attempt.Status,
		attempt.State,
		attempt.Attempts,
		attempt.LastError,
	).Scan(&attempt.CreatedAt, &attempt.UpdatedAt)
}

func (r *notificationRepository) MarkResult(ctx context.Context, id string, state domain.NotificationState, attempts int, lastError string) error {
	const query = `
        UPDATE notification_attempts SET state=$1, attempts=$2, last_error=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, state, attempts, lastError, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) ListByApplication(ctx context.Context, applicationID string) ([]domain.NotificationAttempt, error) {
	const query = `
        SELECT id, application_id, recipient, status, state, attempts, last_error, created_at, updated_at
        FROM notification_attempts WHERE application_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.NotificationAttempt{}
	for rows.Next() {
		var attempt domain.NotificationAttempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.ApplicationID,
			&attempt.Recipient,
			&attempt.Status,
			&attempt.State,
			&attempt.Attempts,
			&attempt.LastError,
			&attempt.CreatedAt,
			&attempt.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attempt)
	}
	return result, rows.Err()
}
