package service

import (
	"context"

	"github.com/hirelane/job-board/internal/auth"
	"github.com/hirelane/job-board/internal/domain"
	"github.com/hirelane/job-board/internal/repository"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

// DashboardService builds the read-only employer and candidate views.
type DashboardService struct {
	jobs         repository.JobRepository
	applications repository.ApplicationRepository
}

// NewDashboardService constructs the service.
func NewDashboardService(jobs repository.JobRepository, applications repository.ApplicationRepository) *DashboardService {
	return &DashboardService{jobs: jobs, applications: applications}
}

// EmployerDashboard returns the employer's jobs, each with its applicants.
// It issues two queries regardless of how many jobs the employer has.
func (s *DashboardService) EmployerDashboard(ctx context.Context, identity domain.Identity) ([]domain.JobWithApplicants, error) {
	if err := auth.CheckRole(identity, domain.RoleEmployer); err != nil {
		return nil, err
	}

	jobs, err := s.jobs.ListByPoster(ctx, identity.UserID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if len(jobs) == 0 {
		return []domain.JobWithApplicants{}, nil
	}
	applicants, err := s.applications.ListApplicantsByEmployer(ctx, identity.UserID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	byJob := make(map[string][]domain.Applicant, len(jobs))
	for _, applicant := range applicants {
		byJob[applicant.JobID] = append(byJob[applicant.JobID], applicant)
	}

	result := make([]domain.JobWithApplicants, 0, len(jobs))
	for _, job := range jobs {
		entry := domain.JobWithApplicants{Job: job, Applicants: byJob[job.ID]}
		if entry.Applicants == nil {
			entry.Applicants = []domain.Applicant{}
		}
		result = append(result, entry)
	}
	return result, nil
}

// CandidateDashboard returns the candidate's applications with a summary of
// each job. Missing jobs leave the summary fields nil.
func (s *DashboardService) CandidateDashboard(ctx context.Context, identity domain.Identity) ([]domain.CandidateApplication, error) {
	if err := auth.CheckRole(identity, domain.RoleCandidate); err != nil {
		return nil, err
	}
	entries, err := s.applications.ListByCandidate(ctx, identity.UserID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return entries, nil
}
