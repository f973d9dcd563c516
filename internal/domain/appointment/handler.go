package appointment

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
	g := api.Group("/appointments", auth.Guard("/appointments"))
	g.POST("", h.BookAppointment)
	g.GET("", h.ListAppointments)
	g.GET("/:id", h.GetAppointment)
	// Only clinicians decide the outcome of a request; a patient must not be
	// able to approve their own booking.
	g.PATCH("/:id/status", h.UpdateStatus, auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
}

type bookRequest struct {
	DoctorID        string `json:"doctorId" validate:"required"`
	Type            string `json:"type" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required"`
	Time            string `json:"time" validate:"required"`
	Note            string `json:"note" validate:"max=500"`
	// Staff can book on behalf of a patient.
	PatientID string `json:"patientId"`
}

func (h *Handler) BookAppointment(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	date, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "appointmentDate must be YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	patientID := req.PatientID
	roles := auth.RolesFromContext(ctx)
	if patientID == "" || !auth.HasRole(roles, auth.RoleStaff) {
		patientID = auth.UserIDFromContext(ctx)
	}

	a := &Appointment{
		PatientID:       patientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: date,
		Time:            req.Time,
		Type:            req.Type,
		Note:            req.Note,
	}
	created, err := h.svc.Book(ctx, a)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	params := SearchParams{
		PatientID: c.QueryParam("patient_id"),
		DoctorID:  c.QueryParam("doctor_id"),
		Status:    c.QueryParam("status"),
	}

	// Patients and doctors only see their own appointments.
	roles := auth.RolesFromContext(ctx)
	userID := auth.UserIDFromContext(ctx)
	if auth.HasRole(roles, auth.RolePatient) && !auth.HasRole(roles, auth.RoleStaff) {
		params.PatientID = userID
	} else if auth.HasRole(roles, auth.RoleDoctor) && !auth.HasRole(roles, auth.RoleStaff) {
		params.DoctorID = userID
	}

	items, total, err := h.svc.List(ctx, params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list appointments")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type appointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SCHEDULED CANCELLED"`
	Reason string `json:"reason" validate:"max=500"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req appointmentStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID := auth.UserIDFromContext(c.Request().Context())
	a, err := h.svc.UpdateStatus(c.Request().Context(), actorID, id, req.Status, req.Reason)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}
