package domain

import "time"

// JobType enumerates employment arrangements offered by a posting.
type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
	JobTypeRemote     JobType = "Remote"
)

// JobTypes lists every accepted job type.
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote}

// ParseJobType matches s against the known job types, ignoring case.
func ParseJobType(s string) (JobType, bool) {
	for _, t := range JobTypes {
		if equalFoldTrim(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// Job is a posting created by an employer. It is never updated once created.
type Job struct {
	ID           string
	Title        string
	Company      string
	Description  string
	Location     string
	Salary       string
	Requirements string
	Type         JobType
	PostedBy     string
	CreatedAt    time.Time
}
