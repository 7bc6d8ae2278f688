package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hirelane/job-board/internal/api/http/handlers"
	"github.com/hirelane/job-board/internal/auth"
	"github.com/hirelane/job-board/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Jobs           *handlers.JobsHandler
	Applications   *handlers.ApplicationsHandler
	AuthMiddleware *auth.AuthMiddleware
	// AuthLimiter throttles register and login. Optional.
	AuthLimiter fiber.Handler
	// Gatherer backs /metrics. Optional.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authn := cfg.AuthMiddleware.Handle
	employer := auth.RequireRole(domain.RoleEmployer)
	candidate := auth.RequireRole(domain.RoleCandidate)
	limited := func(h fiber.Handler) []fiber.Handler {
		if cfg.AuthLimiter == nil {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{cfg.AuthLimiter, h}
	}

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", limited(cfg.Users.Register)...)
	users.Post("/login", limited(cfg.Users.Login)...)
	users.Get("/user-details", authn, auth.RequireAnyRole(), cfg.Users.Me)
	users.Get("/dashboard", authn, employer, cfg.Users.EmployerDashboard)
	users.Get("/candidate-dashboard", authn, candidate, cfg.Users.CandidateDashboard)
	users.Put("/application/status/:applicationId", authn, employer, cfg.Users.UpdateApplicationStatus)

	jobs := api.Group("/jobs")
	jobs.Get("/", cfg.Jobs.List)
	jobs.Get("/:id", cfg.Jobs.Get)
	jobs.Post("/", authn, employer, cfg.Jobs.Create)
	jobs.Post("/:id/apply", authn, candidate, cfg.Jobs.Apply)

	applications := api.Group("/applications")
	applications.Get("/:id/notifications", authn, employer, cfg.Applications.Notifications)
	applications.Get("/:id/history", authn, employer, cfg.Applications.History)

	api.Get("/resumes/:key", authn, auth.RequireAnyRole(), cfg.Applications.DownloadResume)
}
