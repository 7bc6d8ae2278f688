package dto

import (
	"time"

	"github.com/hirelane/job-board/internal/domain"
	"github.com/hirelane/job-board/internal/service"
	"github.com/hirelane/job-board/internal/storage"
)

// StatusUpdateRequest is the status change payload.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// ApplicationResponse exposes an application to its owner or the employer.
type ApplicationResponse struct {
	ID         string                   `json:"id"`
	JobID      string                   `json:"job_id"`
	UserID     string                   `json:"user_id"`
	Status     domain.ApplicationStatus `json:"status"`
	Final      bool                     `json:"final"`
	ResumeKey  string                   `json:"resume_key"`
	ResumeName string                   `json:"resume_name"`
	ResumeURL  string                   `json:"resume_url"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// StatusUpdateResponse keeps the write outcome apart from the notification.
type StatusUpdateResponse struct {
	Updated        bool                  `json:"updated"`
	Notified       service.NotifyOutcome `json:"notified"`
	NotificationID string                `json:"notification_id,omitempty"`
	Application    ApplicationResponse   `json:"application"`
}

// ApplicantUser is the applicant's public profile. Fields are null when the
// user row is gone.
type ApplicantUser struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// ApplicantResponse is one applicant on the employer dashboard.
type ApplicantResponse struct {
	ID        string                   `json:"id"`
	User      ApplicantUser            `json:"user"`
	ResumeURL string                   `json:"resume_url"`
	Status    domain.ApplicationStatus `json:"status"`
	AppliedAt time.Time                `json:"applied_at"`
}

// EmployerDashboardEntry is a job with its applicants.
type EmployerDashboardEntry struct {
	JobResponse
	Applicants []ApplicantResponse `json:"applicants"`
}

// JobSummaryResponse is the job part of a candidate dashboard entry.
type JobSummaryResponse struct {
	ID       *string `json:"id"`
	Title    *string `json:"title"`
	Company  *string `json:"company"`
	Location *string `json:"location"`
}

// CandidateDashboardEntry is an application with its job summary.
type CandidateDashboardEntry struct {
	ApplicationResponse
	Job JobSummaryResponse `json:"job"`
}

// NotificationAttemptResponse reports one status-change email.
type NotificationAttemptResponse struct {
	ID        string                   `json:"id"`
	Recipient string                   `json:"recipient"`
	Status    domain.ApplicationStatus `json:"status"`
	State     domain.NotificationState `json:"state"`
	Attempts  int                      `json:"attempts"`
	LastError string                   `json:"last_error,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// StatusChangeResponse is one audit entry.
type StatusChangeResponse struct {
	OldStatus domain.ApplicationStatus `json:"old_status"`
	NewStatus domain.ApplicationStatus `json:"new_status"`
	ChangedBy string                   `json:"changed_by"`
	CreatedAt time.Time                `json:"created_at"`
}

// NewApplicationResponse maps an application; baseURL roots the resume URL.
func NewApplicationResponse(app domain.Application, baseURL string) ApplicationResponse {
	return ApplicationResponse{
		ID:         app.ID,
		JobID:      app.JobID,
		UserID:     app.UserID,
		Status:     app.Status,
		Final:      app.Status.Terminal(),
		ResumeKey:  app.ResumeKey,
		ResumeName: app.ResumeName,
		ResumeURL:  storage.DownloadURL(baseURL, app.ResumeKey),
		CreatedAt:  app.CreatedAt,
		UpdatedAt:  app.UpdatedAt,
	}
}

// NewStatusUpdateResponse maps a status update result.
func NewStatusUpdateResponse(result *service.StatusUpdateResult, baseURL string) StatusUpdateResponse {
	return StatusUpdateResponse{
		Updated:        result.Updated,
		Notified:       result.Notified,
		NotificationID: result.NotificationID,
		Application:    NewApplicationResponse(result.Application, baseURL),
	}
}

// NewEmployerDashboard maps the employer view.
func NewEmployerDashboard(entries []domain.JobWithApplicants, baseURL string) []EmployerDashboardEntry {
	result := make([]EmployerDashboardEntry, 0, len(entries))
	for _, entry := range entries {
		applicants := make([]ApplicantResponse, 0, len(entry.Applicants))
		for _, a := range entry.Applicants {
			applicants = append(applicants, ApplicantResponse{
				ID:        a.ApplicationID,
				User:      ApplicantUser{ID: a.UserID, Name: a.Name, Email: a.Email},
				ResumeURL: storage.DownloadURL(baseURL, a.ResumeKey),
				Status:    a.Status,
				AppliedAt: a.AppliedAt,
			})
		}
		result = append(result, EmployerDashboardEntry{
			JobResponse: NewJobResponse(entry.Job),
			Applicants:  applicants,
		})
	}
	return result
}

// NewCandidateDashboard maps the candidate view.
func NewCandidateDashboard(entries []domain.CandidateApplication, baseURL string) []CandidateDashboardEntry {
	result := make([]CandidateDashboardEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, CandidateDashboardEntry{
			ApplicationResponse: NewApplicationResponse(entry.Application, baseURL),
			Job: JobSummaryResponse{
				ID:       entry.Job.ID,
				Title:    entry.Job.Title,
				Company:  entry.Job.Company,
				Location: entry.Job.Location,
			},
		})
	}
	return result
}

// NewNotificationAttempts maps notification attempts.
func NewNotificationAttempts(attempts []domain.NotificationAttempt) []NotificationAttemptResponse {
	result := make([]NotificationAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		result = append(result, NotificationAttemptResponse{
			ID:        a.ID,
			Recipient: a.Recipient,
			Status:    a.Status,
			State:     a.State,
			Attempts:  a.Attempts,
			LastError: a.LastError,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		})
	}
	return result
}

// NewStatusHistory maps audit entries.
func NewStatusHistory(changes []domain.ApplicationStatusChange) []StatusChangeResponse {
	result := make([]StatusChangeResponse, 0, len(changes))
	for _, ch := range changes {
		result = append(result, StatusChangeResponse{
			OldStatus: ch.OldStatus,
			NewStatus: ch.NewStatus,
			ChangedBy: ch.ChangedBy,
			CreatedAt: ch.CreatedAt,
		})
	}
	return result
}
