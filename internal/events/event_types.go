package events

import (
	"time"

	"github.com/hirelane/job-board/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobCreated               EventType = "job_created"
	EventApplicationSubmitted     EventType = "application_submitted"
	EventApplicationStatusChanged EventType = "application_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Actor     domain.Identity `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload"`
}

// JobCreatedPayload payload.
type JobCreatedPayload struct {
	JobID   string `json:"job_id"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
	UserID        string `json:"user_id"`
}

// ApplicationStatusChangedPayload carries everything the notification step
// needs so handlers never re-read the store.
type ApplicationStatusChangedPayload struct {
	NotificationID string                   `json:"notification_id"`
	ApplicationID  string                   `json:"application_id"`
	OldStatus      domain.ApplicationStatus `json:"old_status"`
	NewStatus      domain.ApplicationStatus `json:"new_status"`
	JobTitle       string                   `json:"job_title"`
	Company        string                   `json:"company"`
	ApplicantName  string                   `json:"applicant_name"`
	ApplicantEmail string                   `json:"applicant_email"`
}
