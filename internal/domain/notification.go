package domain

import "time"

// NotificationState tracks delivery of a status-change email.
type NotificationState string

const (
	NotificationQueued NotificationState = "queued"
	NotificationSent   NotificationState = "sent"
	NotificationFailed NotificationState = "failed"
)

// NotificationAttempt records one status-change email and its outcome.
type NotificationAttempt struct {
	ID            string
	ApplicationID string
	Recipient     string
	Status        ApplicationStatus
	State         NotificationState
	Attempts      int
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
