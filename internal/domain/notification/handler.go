package notification

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mediland/clinic/internal/platform/auth"
	"github.com/mediland/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/notifications", auth.Guard("/notifications"))
	g.GET("", h.ListNotifications)
	g.GET("/unread-count", h.UnreadCount)
	g.PATCH("/:id/read", h.MarkAsRead)
	g.PATCH("/read-all", h.MarkAllAsRead)
}

func (h *Handler) ListNotifications(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	unreadOnly := c.QueryParam("unread") == "true"

	items, total, err := h.svc.List(c.Request().Context(), userID, unreadOnly, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list notifications")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UnreadCount(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	count, err := h.svc.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to count notifications")
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) MarkAsRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.MarkAsRead(c.Request().Context(), id, userID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkAllAsRead(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	updated, err := h.svc.MarkAllAsRead(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to mark notifications read")
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}
