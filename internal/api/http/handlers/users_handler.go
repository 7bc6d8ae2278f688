package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hirelane/job-board/internal/api/dto"
	"github.com/hirelane/job-board/internal/auth"
	"github.com/hirelane/job-board/internal/service"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

// UsersHandler exposes account, dashboard and status endpoints under /api/users.
type UsersHandler struct {
	auth         *service.AuthService
	dashboards   *service.DashboardService
	applications *service.ApplicationService
	baseURL      string
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, dashboards *service.DashboardService, applications *service.ApplicationService, baseURL string) *UsersHandler {
	return &UsersHandler{auth: authService, dashboards: dashboards, applications: applications, baseURL: baseURL}
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewUserResponse(user),
	})
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{
			Token:     result.Token.Value,
			ExpiresAt: result.Token.ExpiresAt,
			User:      dto.LoginUser{Email: result.User.Email, Role: result.User.Role},
		},
	})
}

// Me handles GET /api/users/user-details.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	user, err := h.auth.CurrentUser(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// EmployerDashboard handles GET /api/users/dashboard.
func (h *UsersHandler) EmployerDashboard(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	entries, err := h.dashboards.EmployerDashboard(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployerDashboard(entries, h.baseURL)})
}

// CandidateDashboard handles GET /api/users/candidate-dashboard.
func (h *UsersHandler) CandidateDashboard(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	entries, err := h.dashboards.CandidateDashboard(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidateDashboard(entries, h.baseURL)})
}

// UpdateApplicationStatus handles PUT /api/users/application/status/:applicationId.
func (h *UsersHandler) UpdateApplicationStatus(c *fiber.Ctx) error {
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status is required", map[string]any{"status": "required"})
	}

	identity, _ := auth.IdentityFromContext(c)
	result, err := h.applications.UpdateStatus(c.UserContext(), identity, c.Params("applicationId"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatusUpdateResponse(result, h.baseURL)})
}
