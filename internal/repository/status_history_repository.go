package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/job-board/internal/domain"
)

// StatusHistoryRepository stores application status audit entries.
type StatusHistoryRepository interface {
	Create(ctx context.Context, change *domain.ApplicationStatusChange) error
	ListByApplication(ctx context.Context, applicationID string) ([]domain.ApplicationStatusChange, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) Create(ctx context.Context, change *domain.ApplicationStatusChange) error {
	const query = `
        INSERT INTO application_status_history (application_id, changed_by, old_status, new_status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		change.ApplicationID,
		change.ChangedBy,
		change.OldStatus,
		change.NewStatus,
	).Scan(&change.ID, &change.CreatedAt)
}

func (r *statusHistoryRepository) ListByApplication(ctx context.Context, applicationID string) ([]domain.ApplicationStatusChange, error) {
	const query = `
        SELECT id, application_id, changed_by, old_status, new_status, created_at
        FROM application_status_history WHERE application_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ApplicationStatusChange{}
	for rows.Next() {
		var change domain.ApplicationStatusChange
		if err := rows.Scan(
			&change.ID,
			&change.ApplicationID,
			&change.ChangedBy,
			&change.OldStatus,
			&change.NewStatus,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, change)
	}
	return result, rows.Err()
}
