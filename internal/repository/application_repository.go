package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/job-board/internal/domain"
)

// ApplicationRepository persists applications. Status is only ever written
// through CompareAndSetStatus.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetDetail(ctx context.Context, id string) (*domain.ApplicationDetail, error)
	GetDetailByResumeKey(ctx context.Context, key string) (*domain.ApplicationDetail, error)
	// CompareAndSetStatus writes next only while the stored status still
	// equals expected. It reports whether a row was changed.
	CompareAndSetStatus(ctx context.Context, id string, expected, next domain.ApplicationStatus) (bool, time.Time, error)
	// ListApplicantsByEmployer joins every application on the employer's
	// jobs with the applicant profile in one query.
	ListApplicantsByEmployer(ctx context.Context, employerID string) ([]domain.Applicant, error)
	// ListByCandidate joins the candidate's applications with their jobs.
	// Job fields are nil when the job row is gone.
	ListByCandidate(ctx context.Context, userID string) ([]domain.CandidateApplication, error)
}

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository constructs repository.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

const applicationColumns = `a.id, a.job_id, a.user_id, a.resume_key, a.resume_name, a.resume_mime, a.resume_size, a.status, a.created_at, a.updated_at`

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	const query = `
        INSERT INTO applications (job_id, user_id, resume_key, resume_name, resume_mime, resume_size, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		app.JobID,
		app.UserID,
		app.ResumeKey,
		app.ResumeName,
		app.ResumeMIME,
		app.ResumeSize,
		app.Status,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
}

const detailQuery = `
        SELECT ` + applicationColumns + `,
               COALESCE(j.title, ''), COALESCE(j.company, ''), COALESCE(j.posted_by::text, ''),
               COALESCE(u.name, ''), COALESCE(u.email, '')
        FROM applications a
        LEFT JOIN jobs j ON j.id = a.job_id
        LEFT JOIN users u ON u.id = a.user_id`

func (r *applicationRepository) GetDetail(ctx context.Context, id string) (*domain.ApplicationDetail, error) {
	return r.fetchDetail(ctx, detailQuery+` WHERE a.id=$1`, id)
}

func (r *applicationRepository) GetDetailByResumeKey(ctx context.Context, key string) (*domain.ApplicationDetail, error) {
	return r.fetchDetail(ctx, detailQuery+` WHERE a.resume_key=$1`, key)
}

func (r *applicationRepository) fetchDetail(ctx context.Context, query string, arg any) (*domain.ApplicationDetail, error) {
	var detail domain.ApplicationDetail
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&detail.ID,
		&detail.JobID,
		&detail.UserID,
		&detail.ResumeKey,
		&detail.ResumeName,
		&detail.ResumeMIME,
		&detail.ResumeSize,
		&detail.Status,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.JobTitle,
		&detail.JobCompany,
		&detail.JobPostedBy,
		&detail.ApplicantName,
		&detail.ApplicantEmail,
	); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *applicationRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.ApplicationStatus) (bool, time.Time, error) {
	const query = `
        UPDATE applications SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3
        RETURNING updated_at`
	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, query, next, id, expected).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, time.Time{}, nil
	}
	if err != nil {
		return false, time.Time{}, err
	}
	return true, updatedAt, nil
}

func (r *applicationRepository) ListApplicantsByEmployer(ctx context.Context, employerID string) ([]domain.Applicant, error) {
	const query = `
        SELECT a.id, a.job_id, a.user_id, u.name, u.email, a.resume_key, a.status, a.created_at
        FROM applications a
        JOIN jobs j ON j.id = a.job_id
        LEFT JOIN users u ON u.id = a.user_id
        WHERE j.posted_by = $1
        ORDER BY a.created_at ASC`
	rows, err := r.pool.Query(ctx, query, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Applicant{}
	for rows.Next() {
		var applicant domain.Applicant
		if err := rows.Scan(
			&applicant.ApplicationID,
			&applicant.JobID,
			&applicant.UserID,
			&applicant.Name,
			&applicant.Email,
			&applicant.ResumeKey,
			&applicant.Status,
			&applicant.AppliedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, applicant)
	}
	return result, rows.Err()
}

func (r *applicationRepository) ListByCandidate(ctx context.Context, userID string) ([]domain.CandidateApplication, error) {
	query := `
        SELECT ` + applicationColumns + `, j.id::text, j.title, j.company, j.location
        FROM applications a
        LEFT JOIN jobs j ON j.id = a.job_id
        WHERE a.user_id = $1
        ORDER BY a.created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.CandidateApplication{}
	for rows.Next() {
		var entry domain.CandidateApplication
		app := &entry.Application
		if err := rows.Scan(
			&app.ID,
			&app.JobID,
			&app.UserID,
			&app.ResumeKey,
			&app.ResumeName,
			&app.ResumeMIME,
			&app.ResumeSize,
			&app.Status,
			&app.CreatedAt,
			&app.UpdatedAt,
			&entry.Job.ID,
			&entry.Job.Title,
			&entry.Job.Company,
			&entry.Job.Location,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
