package billing

import (
	"net/http"
	"time"

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
	// The treating doctor bills the visit; cashiers (staff role) take the
	// money at the desk afterwards.
	g := api.Group("/billing", auth.Guard("/billing"))
	clinician := auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin)
	g.POST("/appointment/:appointmentId/items", h.AddBillItem, clinician)
	g.GET("/appointment/:appointmentId", h.GetByAppointment)
	g.GET("/patient/:patientId", h.ListByPatient)
	g.POST("/:id/generate", h.GenerateBill, clinician)
	g.POST("/:id/payments", h.RecordPayment, auth.RequireRole(auth.RoleStaff, auth.RoleAdmin))
}

type billItemRequest struct {
	ServiceID   string  `json:"serviceId" validate:"required"`
	ServiceDate string  `json:"serviceDate" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	UnitCost    float64 `json:"unitCost" validate:"gte=0"`
}

func (h *Handler) AddBillItem(c echo.Context) error {
	apptID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var req billItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}
	serviceDate, err := time.Parse("2006-01-02", req.ServiceDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "serviceDate must be YYYY-MM-DD")
	}

	actorID := auth.UserIDFromContext(c.Request().Context())
	payment, err := h.svc.AddBillItem(c.Request().Context(), actorID, apptID, serviceID, serviceDate, req.Quantity, req.UnitCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, payment)
}

type generateBillRequest struct {
	Discount float64 `json:"discount" validate:"gte=0,lte=100"`
}

func (h *Handler) GenerateBill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req generateBillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID := auth.UserIDFromContext(c.Request().Context())
	payment, err := h.svc.GenerateBill(c.Request().Context(), actorID, id, req.Discount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, payment)
}

type recordPaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Method string  `json:"method" validate:"omitempty,oneof=CASH CARD"`
}

func (h *Handler) RecordPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req recordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID := auth.UserIDFromContext(c.Request().Context())
	payment, err := h.svc.RecordPayment(c.Request().Context(), actorID, id, req.Amount, req.Method)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *Handler) GetByAppointment(c echo.Context) error {
	apptID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	payment, err := h.svc.GetByAppointment(c.Request().Context(), apptID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "payment not found")
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), c.Param("patientId"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list payments")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
