// Package api wires the HTTP surface of the ProjectHub messaging backend.
package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/welldanyogia/projecthub-backend/internal/api/handlers"
	"github.com/welldanyogia/projecthub-backend/internal/api/middleware"
	"github.com/welldanyogia/projecthub-backend/internal/logger"
	"github.com/welldanyogia/projecthub-backend/internal/metrics"
	"github.com/welldanyogia/projecthub-backend/internal/models"
	"github.com/welldanyogia/projecthub-backend/internal/repository"
	"github.com/welldanyogia/projecthub-backend/internal/services"
	"github.com/welldanyogia/projecthub-backend/internal/storage"
	"gorm.io/gorm"
)

// sendBodyLimit covers ten full-size attachments plus form fields
const sendBodyLimit = "110M"

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB          *gorm.DB
	Store       *repository.Store
	Mails       services.MailService
	Notifier    services.Notifier
	Resolver    services.RecipientResolver
	FileStorage storage.FileStorage

	// Hub reports live sessions on /health; WebSocket serves /ws
	Hub       handlers.ConnectionCounter
	WebSocket http.Handler

	// Metrics, when set, is exposed on /metrics
	Metrics *metrics.Metrics

	Logger         *slog.Logger
	Security       *logger.SecurityLogger
	JWTSecret      string
	AllowedOrigins []string
	Production     bool
	RateLimiter    *middleware.IPRateLimiter
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.Production))
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Hub)
	mailHandler := handlers.NewMailHandler(cfg.Mails, cfg.FileStorage, cfg.Store.Attachments, cfg.Security, cfg.Logger)
	notificationHandler := handlers.NewNotificationHandler(cfg.Notifier, cfg.Resolver, cfg.Store.Directory)

	// Unauthenticated routes
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics.Handler()))
	}
	if cfg.WebSocket != nil {
		// Authenticates itself from the token query parameter or bearer header
		e.GET("/ws", echo.WrapHandler(cfg.WebSocket))
	}

	api := e.Group("/api")
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimiter(cfg.RateLimiter, cfg.Security))
	}
	api.Use(middleware.JWTAuth(cfg.JWTSecret, cfg.Security))

	superAdmin := middleware.RequireRole(cfg.Store.Directory, cfg.Security, models.RoleSuperAdmin)

	mails := api.Group("/mails")
	mails.POST("", mailHandler.Send, echomw.BodyLimit(sendBodyLimit))
	mails.GET("/inbox", mailHandler.Inbox)
	mails.GET("/sent", mailHandler.Sent)
	mails.GET("/users/suggestions", mailHandler.Suggestions)
	mails.GET("/admin/all", mailHandler.AllThreads, superAdmin)
	mails.GET("/attachments/:id/download", mailHandler.Download)
	mails.GET("/:id", mailHandler.Get)
	mails.PUT("/:id/read", mailHandler.MarkRead)
	mails.DELETE("/:id", mailHandler.Delete)
	mails.POST("/:id/reply", mailHandler.Reply, echomw.BodyLimit(sendBodyLimit))

	notifications := api.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
	notifications.POST("", notificationHandler.Notify, superAdmin)

	return e
}
