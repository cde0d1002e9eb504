package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-search-service/internal/api/http/handlers"
	"github.com/spec-kit/job-search-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Jobs           *handlers.JobsHandler
	Account        *handlers.AccountHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	RoleLookup     auth.RoleLookup
}

// NewApp builds the fiber app. Route params and query values outlive the request
// (they are cached in session state), so the app runs in immutable mode.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		Immutable:             true,
		DisableStartupMessage: true,
	})
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, auth.RequireSession(), cfg.Auth.Logout)

	jobs := app.Group("/jobs")
	jobs.Get("", cfg.Jobs.List)
	jobs.Get("/:id", cfg.Jobs.Get)

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireSession())
	me.Get("", cfg.Account.Me)
	me.Patch("", cfg.Account.UpdateProfile)
	me.Delete("", cfg.Account.Delete)
	me.Post("/password", cfg.Account.ChangePassword)
	me.Get("/saved", cfg.Account.SavedJobs)
	me.Post("/saved/:jobId", cfg.Account.SaveJob)
	me.Get("/applied", cfg.Account.AppliedJobs)
	me.Post("/applied/:jobId", cfg.Account.Apply)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin(cfg.RoleLookup))
	admin.Get("/stats", cfg.Admin.Stats)
}
