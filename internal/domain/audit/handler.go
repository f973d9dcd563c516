package audit

import (
	"net/http"

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
	g := api.Group("/audit-logs", auth.Guard("/audit-logs"))
	g.GET("", h.ListLogs)
}

func (h *Handler) ListLogs(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := SearchParams{
		UserID:   c.QueryParam("user_id"),
		RecordID: c.QueryParam("record_id"),
		Query:    c.QueryParam("q"),
	}
	items, total, err := h.svc.List(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list audit logs")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
