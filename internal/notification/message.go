// Package notification sends the templated email that follows an application
// status change.
package notification

import (
	"time"

	"github.com/hirelane/job-board/internal/domain"
)

// Message is one queued status-change notification. ID matches the
// notification attempt row that tracks its outcome.
type Message struct {
	ID            string                   `json:"id"`
	ApplicationID string                   `json:"application_id"`
	Recipient     string                   `json:"recipient"`
	RecipientName string                   `json:"recipient_name"`
	JobTitle      string                   `json:"job_title"`
	Company       string                   `json:"company"`
	Status        domain.ApplicationStatus `json:"status"`
	EnqueuedAt    time.Time                `json:"enqueued_at"`
}

// Email is a rendered message ready for a transport.
type Email struct {
	From    string
	To      string
	Subject string
	Body    string
}
