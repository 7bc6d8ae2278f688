package dto

import (
	"time"

	"github.com/hirelane/job-board/internal/domain"
)

// JobCreateRequest is the job posting payload.
type JobCreateRequest struct {
	Title        string `json:"title"`
	Company      string `json:"company"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	Salary       string `json:"salary"`
	Requirements string `json:"requirements"`
	Type         string `json:"type"`
}

// JobResponse exposes the public fields of a job.
type JobResponse struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Company      string         `json:"company"`
	Description  string         `json:"description"`
	Location     string         `json:"location"`
	Salary       string         `json:"salary"`
	Requirements string         `json:"requirements"`
	Type         domain.JobType `json:"type"`
	PostedBy     string         `json:"posted_by"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewJobResponse maps a domain job.
func NewJobResponse(job domain.Job) JobResponse {
	return JobResponse{
		ID:           job.ID,
		Title:        job.Title,
		Company:      job.Company,
		Description:  job.Description,
		Location:     job.Location,
		Salary:       job.Salary,
		Requirements: job.Requirements,
		Type:         job.Type,
		PostedBy:     job.PostedBy,
		CreatedAt:    job.CreatedAt,
	}
}

// NewJobList maps a slice of jobs; an empty input yields an empty list.
func NewJobList(jobs []domain.Job) []JobResponse {
	result := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		result = append(result, NewJobResponse(job))
	}
	return result
}
