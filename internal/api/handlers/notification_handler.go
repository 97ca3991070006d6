package handlers

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/projecthub-backend/internal/api/middleware"
	"github.com/welldanyogia/projecthub-backend/internal/api/response"
	"github.com/welldanyogia/projecthub-backend/internal/models"
	"github.com/welldanyogia/projecthub-backend/internal/services"
	"github.com/welldanyogia/projecthub-backend/internal/validator"
)

// AudienceResolver computes who hears about a project event
type AudienceResolver interface {
	ProjectAudience(ctx context.Context, projectID, actorID uint) ([]uint, error)
}

// NotificationHandler handles the notification HTTP routes
type NotificationHandler struct {
	notifier services.Notifier
	audience AudienceResolver
	roles    middleware.RoleChecker
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifier services.Notifier, audience AudienceResolver, roles middleware.RoleChecker) *NotificationHandler {
	return &NotificationHandler{
		notifier: notifier,
		audience: audience,
		roles:    roles,
	}
}

// NotifyRequest is the body of POST /api/notifications.
// With project_id the targets are the project's members, super admins and
// creator, never the caller. Otherwise an empty user_ids list broadcasts to
// every user.
type NotifyRequest struct {
	ProjectID  uint   `json:"project_id"`
	UserIDs    []uint `json:"user_ids"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	EntityType string `json:"entity_type"`
	EntityID   uint   `json:"entity_id"`
}

// List handles GET /api/notifications. Super admins see every notification.
func (h *NotificationHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	includeAll, err := h.roles.UserHasRole(ctx, userID, models.RoleSuperAdmin)
	if err != nil {
		return response.Error(c, err)
	}

	rows, err := h.notifier.List(ctx, userID, includeAll)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, rows)
}

// MarkRead handles PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := validator.ParseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid notification ID")
	}

	if err := h.notifier.MarkRead(c.Request().Context(), id, middleware.UserID(c)); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, nil, "Notification marked as read")
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	count, err := h.notifier.UnreadCount(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int64{"count": count})
}

// Notify handles POST /api/notifications
func (h *NotificationHandler) Notify(c echo.Context) error {
	var req NotifyRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if req.Type == "" {
		req.Type = models.NotificationTypeAnnouncement
	}

	ctx := c.Request().Context()
	targets := req.UserIDs
	if req.ProjectID != 0 {
		if len(req.UserIDs) > 0 {
			return response.BadRequest(c, "project_id and user_ids are mutually exclusive")
		}
		audience, err := h.audience.ProjectAudience(ctx, req.ProjectID, middleware.UserID(c))
		if err != nil {
			return response.Error(c, err)
		}
		// An empty project audience must not turn into a broadcast
		if len(audience) == 0 {
			return response.Created(c, []models.Notification{})
		}
		targets = audience
		if req.EntityType == "" {
			req.EntityType = "Project"
			req.EntityID = req.ProjectID
		}
	}

	rows, err := h.notifier.Notify(ctx, services.NotifyInput{
		UserIDs:    targets,
		Title:      validator.SanitizeString(req.Title, validator.MaxTitleLength),
		Message:    validator.SanitizeBody(req.Message),
		Type:       req.Type,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, rows)
}
