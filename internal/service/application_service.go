package service

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hirelane/job-board/internal/auth"
	"github.com/hirelane/job-board/internal/domain"
	"github.com/hirelane/job-board/internal/events"
	"github.com/hirelane/job-board/internal/observability"
	"github.com/hirelane/job-board/internal/repository"
	"github.com/hirelane/job-board/internal/storage"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

// maxStatusAttempts bounds compare-and-swap retries for one status update.
const maxStatusAttempts = 3

// NotifyOutcome reports what happened to the notification for a status
// update. Delivery itself is tracked on the notification attempt.
type NotifyOutcome string

const (
	NotifyQueued  NotifyOutcome = "queued"
	NotifySkipped NotifyOutcome = "skipped"
	NotifyError   NotifyOutcome = "error"
)

var resumeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ApplicationService runs the application lifecycle.
type ApplicationService struct {
	applications   repository.ApplicationRepository
	jobs           repository.JobRepository
	history        repository.StatusHistoryRepository
	notifications  repository.NotificationRepository
	resumes        storage.ResumeStore
	dispatcher     events.Dispatcher
	metrics        *observability.Metrics
	logger         *zap.Logger
	maxResumeBytes int64
}

// ApplicationDependencies bundles collaborators for the application service.
type ApplicationDependencies struct {
	ApplicationRepo  repository.ApplicationRepository
	JobRepo          repository.JobRepository
	HistoryRepo      repository.StatusHistoryRepository
	NotificationRepo repository.NotificationRepository
	Resumes          storage.ResumeStore
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
	MaxResumeBytes   int64
}

// ResumeUpload describes the uploaded resume file.
type ResumeUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// StatusUpdateResult separates the status write from the notification.
type StatusUpdateResult struct {
	Application    domain.Application
	Updated        bool
	Notified       NotifyOutcome
	NotificationID string
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		applications:   deps.ApplicationRepo,
		jobs:           deps.JobRepo,
		history:        deps.HistoryRepo,
		notifications:  deps.NotificationRepo,
		resumes:        deps.Resumes,
		dispatcher:     deps.Dispatcher,
		metrics:        deps.Metrics,
		logger:         logger,
		maxResumeBytes: deps.MaxResumeBytes,
	}
}

// Submit stores the resume and creates a pending application. A rejected
// file leaves no stored resume and no row.
func (s *ApplicationService) Submit(ctx context.Context, identity domain.Identity, jobID string, resume ResumeUpload) (*domain.Application, error) {
	if err := auth.CheckRole(identity, domain.RoleCandidate); err != nil {
		return nil, err
	}
	if err := s.validateResume(resume); err != nil {
		return nil, err
	}
	if !validID(jobID) {
		return nil, apperrors.NewNotFound("job", map[string]any{"id": jobID})
	}
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, storeError(err, "job", jobID)
	}

	key, err := s.resumes.Save(ctx, resume.FileName, io.LimitReader(resume.Content, s.maxResumeBytes))
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	app := &domain.Application{
		JobID:      jobID,
		UserID:     identity.UserID,
		ResumeKey:  key,
		ResumeName: filepath.Base(resume.FileName),
		ResumeMIME: resumeTypes[strings.ToLower(filepath.Ext(resume.FileName))],
		ResumeSize: resume.Size,
		Status:     domain.StatusPending,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		if delErr := s.resumes.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned resume", zap.String("resume_key", key), zap.Error(delErr))
		}
		return nil, apperrors.NewPersistenceError(err)
	}

	s.metrics.RecordApplication()
	_ = publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:  events.EventApplicationSubmitted,
		Actor: identity,
		Payload: events.ApplicationSubmittedPayload{
			ApplicationID: app.ID,
			JobID:         app.JobID,
			UserID:        app.UserID,
		},
	})
	return app, nil
}

func (s *ApplicationService) validateResume(resume ResumeUpload) error {
	if resume.Content == nil || strings.TrimSpace(resume.FileName) == "" {
		return apperrors.NewValidationError("resume file is required", map[string]any{"resume": "required"})
	}
	ext := strings.ToLower(filepath.Ext(resume.FileName))
	expected, ok := resumeTypes[ext]
	if !ok {
		return apperrors.NewValidationError("resume must be a pdf, doc or docx file",
			map[string]any{"resume": "unsupported file type", "extension": ext})
	}
	if resume.Size <= 0 {
		return apperrors.NewValidationError("resume file is empty", map[string]any{"resume": "empty"})
	}
	if resume.Size > s.maxResumeBytes {
		return apperrors.NewValidationError("resume file is too large",
			map[string]any{"resume": "too large", "max_bytes": s.maxResumeBytes, "size": resume.Size})
	}
	if declared := strings.TrimSpace(resume.ContentType); declared != "" {
		mediaType, _, err := mime.ParseMediaType(declared)
		if err != nil || (mediaType != "application/octet-stream" && mediaType != expected) {
			return apperrors.NewValidationError("resume content type does not match its extension",
				map[string]any{"resume": "content type mismatch", "content_type": declared})
		}
	}
	return nil
}

// UpdateStatus moves an application along the transition table. The write is
// a compare-and-swap on the status that was read; a lost race re-reads and
// re-validates. Asking for the current status changes nothing.
func (s *ApplicationService) UpdateStatus(ctx context.Context, identity domain.Identity, applicationID, rawStatus string) (*StatusUpdateResult, error) {
	if err := auth.CheckRole(identity, domain.RoleEmployer); err != nil {
		return nil, err
	}

	var current domain.ApplicationStatus
	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		detail, err := s.loadDetail(ctx, applicationID)
		if err != nil {
			return nil, err
		}
		if err := auth.CheckJobOwner(identity, detail.JobPostedBy); err != nil {
			return nil, err
		}
		next, ok := domain.ParseApplicationStatus(rawStatus)
		if !ok {
			return nil, apperrors.NewValidationError("unknown application status",
				map[string]any{"status": rawStatus})
		}

		current = detail.Status
		if current == next {
			return &StatusUpdateResult{Application: detail.Application, Notified: NotifySkipped}, nil
		}
		if !current.CanTransitionTo(next) {
			return nil, apperrors.NewInvalidTransition(string(current), string(next))
		}

		swapped, updatedAt, err := s.applications.CompareAndSetStatus(ctx, detail.ID, current, next)
		if err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		if !swapped {
			s.logger.Debug("status changed concurrently, retrying",
				zap.String("application_id", detail.ID),
				zap.Int("attempt", attempt))
			continue
		}

		detail.Status = next
		detail.UpdatedAt = updatedAt
		s.metrics.RecordTransition(string(current), string(next))
		s.recordStatusChange(ctx, identity, detail.ID, current, next)

		result := &StatusUpdateResult{Application: detail.Application, Updated: true, Notified: NotifySkipped}
		if s.dispatcher != nil {
			result.NotificationID = uuid.NewString()
			err := publishEvent(ctx, s.dispatcher, s.logger, events.Event{
				Type:  events.EventApplicationStatusChanged,
				Actor: identity,
				Payload: events.ApplicationStatusChangedPayload{
					NotificationID: result.NotificationID,
					ApplicationID:  detail.ID,
					OldStatus:      current,
					NewStatus:      next,
					JobTitle:       detail.JobTitle,
					Company:        detail.JobCompany,
					ApplicantName:  detail.ApplicantName,
					ApplicantEmail: detail.ApplicantEmail,
				},
			})
			result.Notified = NotifyQueued
			if err != nil {
				result.Notified = NotifyError
			}
		}
		return result, nil
	}

	return nil, apperrors.NewInvalidTransition(string(current), rawStatus)
}

func (s *ApplicationService) recordStatusChange(ctx context.Context, identity domain.Identity, applicationID string, oldStatus, newStatus domain.ApplicationStatus) {
	if s.history == nil {
		return
	}
	entry := &domain.ApplicationStatusChange{
		ApplicationID: applicationID,
		ChangedBy:     identity.UserID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("status history not recorded",
			zap.String("application_id", applicationID),
			zap.Error(err))
	}
}

// ListHistory returns the status audit trail of an application.
func (s *ApplicationService) ListHistory(ctx context.Context, identity domain.Identity, applicationID string) ([]domain.ApplicationStatusChange, error) {
	if _, err := s.ownedDetail(ctx, identity, applicationID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.ApplicationStatusChange{}, nil
	}
	entries, err := s.history.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return entries, nil
}

// ListNotifications returns the notification attempts of an application.
func (s *ApplicationService) ListNotifications(ctx context.Context, identity domain.Identity, applicationID string) ([]domain.NotificationAttempt, error) {
	if _, err := s.ownedDetail(ctx, identity, applicationID); err != nil {
		return nil, err
	}
	attempts, err := s.notifications.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return attempts, nil
}

// OpenResume streams a stored resume to the employer who owns the job or the
// candidate who uploaded it.
func (s *ApplicationService) OpenResume(ctx context.Context, identity domain.Identity, key string) (io.ReadCloser, *domain.ApplicationDetail, error) {
	if err := auth.CheckRole(identity, domain.RoleEmployer, domain.RoleCandidate); err != nil {
		return nil, nil, err
	}
	if !storage.ValidKey(key) {
		return nil, nil, apperrors.NewNotFound("resume", map[string]any{"key": key})
	}
	detail, err := s.applications.GetDetailByResumeKey(ctx, key)
	if err != nil {
		return nil, nil, storeError(err, "resume", key)
	}
	if err := auth.CheckResumeReader(identity, detail.UserID, detail.JobPostedBy); err != nil {
		return nil, nil, err
	}
	rc, err := s.resumes.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, nil, apperrors.NewNotFound("resume", map[string]any{"key": key})
		}
		return nil, nil, apperrors.NewPersistenceError(err)
	}
	return rc, detail, nil
}

func (s *ApplicationService) ownedDetail(ctx context.Context, identity domain.Identity, applicationID string) (*domain.ApplicationDetail, error) {
	if err := auth.CheckRole(identity, domain.RoleEmployer); err != nil {
		return nil, err
	}
	detail, err := s.loadDetail(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckJobOwner(identity, detail.JobPostedBy); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *ApplicationService) loadDetail(ctx context.Context, applicationID string) (*domain.ApplicationDetail, error) {
	if !validID(applicationID) {
		return nil, apperrors.NewNotFound("application", map[string]any{"id": applicationID})
	}
	detail, err := s.applications.GetDetail(ctx, applicationID)
	if err != nil {
		return nil, storeError(err, "application", applicationID)
	}
	return detail, nil
}
