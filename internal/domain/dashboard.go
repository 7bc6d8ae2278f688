package domain

import "time"

// Applicant is one application row joined with the applicant's public profile.
type Applicant struct {
	ApplicationID string
	JobID         string
	UserID        string
	Name          *string
	Email         *string
	ResumeKey     string
	Status        ApplicationStatus
	AppliedAt     time.Time
}

// JobWithApplicants is one employer dashboard entry.
type JobWithApplicants struct {
	Job        Job
	Applicants []Applicant
}

// JobSummary holds the public job fields shown on the candidate dashboard.
// Every field is nil when the job no longer exists.
type JobSummary struct {
	ID       *string
	Title    *string
	Company  *string
	Location *string
}

// CandidateApplication is one candidate dashboard entry.
type CandidateApplication struct {
	Application Application
	Job         JobSummary
}
