package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hirelane/job-board/internal/api/dto"
	"github.com/hirelane/job-board/internal/auth"
	"github.com/hirelane/job-board/internal/service"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

// JobsHandler exposes job listing, posting and applying.
type JobsHandler struct {
	jobs         *service.JobService
	applications *service.ApplicationService
	baseURL      string
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobs *service.JobService, applications *service.ApplicationService, baseURL string) *JobsHandler {
	return &JobsHandler{jobs: jobs, applications: applications, baseURL: baseURL}
}

// List handles GET /api/jobs.
func (h *JobsHandler) List(c *fiber.Ctx) error {
	jobs, err := h.jobs.ListJobs(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewJobList(jobs)})
}

// Get handles GET /api/jobs/:id.
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	job, err := h.jobs.GetJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewJobResponse(*job)})
}

// Create handles POST /api/jobs.
func (h *JobsHandler) Create(c *fiber.Ctx) error {
	var req dto.JobCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	identity, _ := auth.IdentityFromContext(c)
	job, err := h.jobs.CreateJob(c.UserContext(), identity, service.JobInput{
		Title:        req.Title,
		Company:      req.Company,
		Description:  req.Description,
		Location:     req.Location,
		Salary:       req.Salary,
		Requirements: req.Requirements,
		Type:         req.Type,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewJobResponse(*job)})
}

// Apply handles POST /api/jobs/:id/apply with a multipart "resume" file.
func (h *JobsHandler) Apply(c *fiber.Ctx) error {
	upload := service.ResumeUpload{}
	if fh, err := c.FormFile("resume"); err == nil {
		file, err := fh.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable resume upload", nil)
		}
		defer file.Close()
		upload = service.ResumeUpload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Content:     file,
		}
	}

	identity, _ := auth.IdentityFromContext(c)
	app, err := h.applications.Submit(c.UserContext(), identity, c.Params("id"), upload)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"message":     "Application submitted successfully",
			"application": dto.NewApplicationResponse(*app, h.baseURL),
		},
	})
}
