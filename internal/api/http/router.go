package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/api/http/handlers"
	"github.com/supportdesk/support-portal/internal/auth"
	"github.com/supportdesk/support-portal/internal/observability"
	"github.com/supportdesk/support-portal/internal/upload"
)

// multipartOverhead is added to the upload limit to size the request body limit.
const multipartOverhead = 1 << 20

// AppConfig configures the fiber application.
type AppConfig struct {
	Name           string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// NewApp builds a fiber app with the global middlewares attached.
func NewApp(cfg AppConfig) *fiber.App {
	bodyLimit := fiber.DefaultBodyLimit
	if limit := int(cfg.MaxUploadBytes) + multipartOverhead; limit > bodyLimit {
		bodyLimit = limit
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler(cfg.Logger, cfg.Metrics),
	})
	RegisterMiddlewares(app, cfg.Logger, cfg.Metrics, cfg.RequestTimeout)
	return app
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Articles       *handlers.ArticlesHandler
	Profile        *handlers.ProfileHandler
	AuthMiddleware *auth.AuthMiddleware
	UploadDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	app.Static(upload.URLPrefix, cfg.UploadDir, fiber.Static{Browse: false})

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	api.Post("/register", cfg.Auth.Register)
	api.Post("/login", cfg.Auth.Login)
	api.Post("/logout", cfg.Auth.Logout)
	api.Get("/articles", cfg.Articles.ListArticles)

	authed := auth.RequireAuthenticated()
	agent := auth.RequireAgent()

	api.Get("/user", authed, cfg.Auth.CurrentUser)
	api.Post("/user/password", authed, cfg.Auth.ChangePassword)
	api.Patch("/user/profile", authed, cfg.Profile.UpdateProfile)
	api.Post("/user/profile-photo", authed, cfg.Profile.UploadPhoto)

	api.Get("/tickets", authed, cfg.Tickets.ListTickets)
	api.Post("/tickets", authed, cfg.Tickets.CreateTicket)
	api.Patch("/tickets/:id", agent, cfg.Tickets.UpdateTicket)

	api.Post("/articles", agent, cfg.Articles.CreateArticle)
}
