package http

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/observability"
)

// NewApp builds the fiber application with the shared codec, error handler
// and global middlewares.
func NewApp(name string, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler(logger),
	})
	RegisterMiddlewares(app, logger, metrics, timeout)
	return app
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Users          *handlers.UsersHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Policy         auth.AccessPolicy
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	app.Use(cfg.AuthMiddleware.PageGate(cfg.Policy))

	api := app.Group("/api", cfg.AuthMiddleware.Load)
	session := auth.RequireSession()
	admin := auth.RequireRole(domain.RoleAdmin)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", session, cfg.Auth.Logout)
	authGroup.Get("/session", cfg.Auth.Session)

	// Static segments go before /:id.
	tickets := api.Group("/tickets")
	tickets.Get("/admin/all", admin, cfg.Tickets.ListAll)
	tickets.Post("/public", cfg.Tickets.CreatePublic)
	tickets.Get("/my-tickets", cfg.Tickets.MyTickets)
	tickets.Get("/", session, cfg.Tickets.List)
	tickets.Post("/", session, cfg.Tickets.Create)
	tickets.Get("/:id", session, cfg.Tickets.Get)
	tickets.Put("/:id", admin, cfg.Tickets.Update)
	tickets.Delete("/:id", admin, cfg.Tickets.Delete)

	comments := api.Group("/comments", session)
	comments.Post("/import", admin, cfg.Comments.Import)
	comments.Get("/", cfg.Comments.List)
	comments.Post("/", cfg.Comments.Create)
	comments.Get("/:id", cfg.Comments.Get)
	comments.Put("/:id", cfg.Comments.Update)
	comments.Delete("/:id", cfg.Comments.Delete)

	users := api.Group("/users", session)
	users.Get("/", admin, cfg.Users.List)
	users.Post("/", admin, cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", admin, cfg.Users.Delete)

	api.Get("/admin/stats", admin, cfg.Admin.Stats)
	api.Post("/mail/send", admin, cfg.Admin.SendEmail)
}
