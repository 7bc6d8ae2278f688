package domain

import (
	"strings"
	"time"
)

// ApplicationStatus enumerates lifecycle states for applications. The string
// values are the ones stored and returned on the wire.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusInterview ApplicationStatus = "Accepted for interview"
	StatusRejected  ApplicationStatus = "Rejected"
	StatusAccepted  ApplicationStatus = "Accepted"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:   {StatusInterview, StatusRejected, StatusAccepted},
	StatusInterview: {StatusAccepted, StatusRejected},
	StatusAccepted:  {},
	StatusRejected:  {},
}

var statusAliases = map[string]ApplicationStatus{
	"pending":                StatusPending,
	"accepted for interview": StatusInterview,
	"interview":              StatusInterview,
	"rejected":               StatusRejected,
	"accepted":               StatusAccepted,
	"hired":                  StatusAccepted,
}

// ParseApplicationStatus maps user input onto a known status.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return status, ok
}

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s ApplicationStatus) Terminal() bool {
	next, ok := applicationTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the table permits s -> next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, candidate := range applicationTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Application is a candidate's submission against one Job.
type Application struct {
	ID         string
	JobID      string
	UserID     string
	ResumeKey  string
	ResumeName string
	ResumeMIME string
	ResumeSize int64
	Status     ApplicationStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ApplicationDetail joins an application with its job and applicant.
type ApplicationDetail struct {
	Application
	JobTitle       string
	JobCompany     string
	JobPostedBy    string
	ApplicantName  string
	ApplicantEmail string
}

// ApplicationStatusChange is an audit entry for one successful transition.
type ApplicationStatusChange struct {
	ID            string
	ApplicationID string
	ChangedBy     string
	OldStatus     ApplicationStatus
	NewStatus     ApplicationStatus
	CreatedAt     time.Time
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
