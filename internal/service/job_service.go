package service

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/hirelane/job-board/internal/auth"
	"github.com/hirelane/job-board/internal/domain"
	"github.com/hirelane/job-board/internal/events"
	"github.com/hirelane/job-board/internal/repository"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

// JobService handles job postings.
type JobService struct {
	jobs       repository.JobRepository
	dispatcher events.Dispatcher
	policy     *bluemonday.Policy
	logger     *zap.Logger
}

// JobDependencies bundles collaborators for the job service.
type JobDependencies struct {
	JobRepo    repository.JobRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// JobInput is the job creation payload.
type JobInput struct {
	Title        string
	Company      string
	Description  string
	Location     string
	Salary       string
	Requirements string
	Type         string
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{
		jobs:       deps.JobRepo,
		dispatcher: deps.Dispatcher,
		policy:     bluemonday.StrictPolicy(),
		logger:     logger,
	}
}

// ListJobs returns every posting, newest first.
func (s *JobService) ListJobs(ctx context.Context) ([]domain.Job, error) {
	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return jobs, nil
}

// GetJob returns one posting.
func (s *JobService) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound("job", map[string]any{"id": id})
	}
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "job", id)
	}
	return job, nil
}

// CreateJob posts a job owned by the calling employer.
func (s *JobService) CreateJob(ctx context.Context, identity domain.Identity, input JobInput) (*domain.Job, error) {
	if err := auth.CheckRole(identity, domain.RoleEmployer); err != nil {
		return nil, err
	}

	job := &domain.Job{
		Title:        s.clean(input.Title),
		Company:      s.clean(input.Company),
		Description:  s.clean(input.Description),
		Location:     s.clean(input.Location),
		Salary:       s.clean(input.Salary),
		Requirements: s.clean(input.Requirements),
		Type:         domain.JobTypeFullTime,
		PostedBy:     identity.UserID,
	}

	details := map[string]any{}
	required := map[string]string{
		"title":        job.Title,
		"company":      job.Company,
		"description":  job.Description,
		"location":     job.Location,
		"salary":       job.Salary,
		"requirements": job.Requirements,
	}
	for field, value := range required {
		if value == "" {
			details[field] = "required"
		}
	}
	if strings.TrimSpace(input.Type) != "" {
		jobType, ok := domain.ParseJobType(input.Type)
		if !ok {
			details["type"] = "must be one of Full-time, Part-time, Contract, Internship, Remote"
		}
		job.Type = jobType
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid job", details)
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	_ = publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:  events.EventJobCreated,
		Actor: identity,
		Payload: events.JobCreatedPayload{
			JobID:   job.ID,
			Title:   job.Title,
			Company: job.Company,
		},
	})
	return job, nil
}

// clean strips markup from free text. The result is plain text.
func (s *JobService) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}
