package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/hirelane/job-board/internal/api/dto"
	"github.com/hirelane/job-board/internal/auth"
	"github.com/hirelane/job-board/internal/service"
)

// ApplicationsHandler exposes employer views of a single application.
type ApplicationsHandler struct {
	applications *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applications *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{applications: applications}
}

// Notifications handles GET /api/applications/:id/notifications.
func (h *ApplicationsHandler) Notifications(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	attempts, err := h.applications.ListNotifications(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewNotificationAttempts(attempts)})
}

// History handles GET /api/applications/:id/history.
func (h *ApplicationsHandler) History(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	changes, err := h.applications.ListHistory(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatusHistory(changes)})
}

// DownloadResume handles GET /api/resumes/:key.
func (h *ApplicationsHandler) DownloadResume(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	rc, detail, err := h.applications.OpenResume(c.UserContext(), identity, c.Params("key"))
	if err != nil {
		return err
	}

	contentType := detail.ResumeMIME
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", detail.ResumeName))
	return c.SendStream(rc)
}
