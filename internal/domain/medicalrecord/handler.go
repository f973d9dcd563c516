package medicalrecord

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
	g := api.Group("/medical-records", auth.Guard("/medical-records"))
	g.GET("/appointment/:appointmentId", h.GetByAppointment)
	g.GET("/patient/:patientId", h.ListByPatient)
	// Nurses record vitals and lab technicians handle tests (both carry the
	// staff role); a diagnosis can only come from the treating doctor.
	g.POST("/appointment/:appointmentId/vital-signs", h.AddVitalSigns)
	g.POST("/appointment/:appointmentId/diagnosis", h.AddDiagnosis, auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
	g.POST("/appointment/:appointmentId/lab-tests", h.AddLabTest)
	g.PATCH("/lab-tests/:id", h.UpdateLabTest)
}

func (h *Handler) GetByAppointment(c echo.Context) error {
	apptID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	rec, err := h.svc.GetByAppointment(c.Request().Context(), apptID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), c.Param("patientId"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list medical records")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type vitalSignsRequest struct {
	BodyTemperature  float64 `json:"bodyTemperature" validate:"required,gt=0"`
	HeartRate        int     `json:"heartRate" validate:"required,gt=0"`
	SystolicBP       int     `json:"systolicBP" validate:"required,gt=0"`
	DiastolicBP      int     `json:"diastolicBP" validate:"required,gt=0"`
	RespiratoryRate  *int    `json:"respiratoryRate"`
	OxygenSaturation *int    `json:"oxygenSaturation"`
	Weight           float64 `json:"weight" validate:"required,gt=0"`
	Height           float64 `json:"height" validate:"required,gt=0"`
}

func (h *Handler) AddVitalSigns(c echo.Context) error {
	apptID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var req vitalSignsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID := auth.UserIDFromContext(c.Request().Context())
	v := &VitalSigns{
		BodyTemperature:  req.BodyTemperature,
		HeartRate:        req.HeartRate,
		SystolicBP:       req.SystolicBP,
		DiastolicBP:      req.DiastolicBP,
		RespiratoryRate:  req.RespiratoryRate,
		OxygenSaturation: req.OxygenSaturation,
		Weight:           req.Weight,
		Height:           req.Height,
	}
	created, err := h.svc.AddVitalSigns(c.Request().Context(), actorID, apptID, v)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

type diagnosisRequest struct {
	Symptoms              string `json:"symptoms" validate:"required"`
	Diagnosis             string `json:"diagnosis" validate:"required"`
	DiagnosisCode         string `json:"diagnosisCode"`
	Notes                 string `json:"notes"`
	PrescribedMedications string `json:"prescribedMedications"`
	FollowUpPlan          string `json:"followUpPlan"`
	Severity              string `json:"severity"`
}

func (h *Handler) AddDiagnosis(c echo.Context) error {
	apptID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var req diagnosisRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	doctorID := auth.UserIDFromContext(c.Request().Context())
	d := &Diagnosis{
		Symptoms:              req.Symptoms,
		Diagnosis:             req.Diagnosis,
		DiagnosisCode:         req.DiagnosisCode,
		Notes:                 req.Notes,
		PrescribedMedications: req.PrescribedMedications,
		FollowUpPlan:          req.FollowUpPlan,
		Severity:              req.Severity,
	}
	created, err := h.svc.AddDiagnosis(c.Request().Context(), doctorID, apptID, d)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

type labTestRequest struct {
	ServiceID string `json:"serviceId"`
	TestDate  string `json:"testDate" validate:"required"`
	Notes     string `json:"notes"`
}

func (h *Handler) AddLabTest(c echo.Context) error {
	apptID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var req labTestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	testDate, err := time.Parse("2006-01-02", req.TestDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "testDate must be YYYY-MM-DD")
	}

	t := &LabTest{TestDate: testDate, Notes: req.Notes}
	if req.ServiceID != "" {
		sid, err := uuid.Parse(req.ServiceID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
		}
		t.ServiceID = &sid
	}

	actorID := auth.UserIDFromContext(c.Request().Context())
	created, err := h.svc.AddLabTest(c.Request().Context(), actorID, apptID, t)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

type labTestUpdateRequest struct {
	Result string `json:"result"`
	Status string `json:"status" validate:"omitempty,oneof=PENDING COMPLETED CANCELLED"`
	Notes  string `json:"notes"`
}

func (h *Handler) UpdateLabTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req labTestUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID := auth.UserIDFromContext(c.Request().Context())
	t, err := h.svc.UpdateLabTest(c.Request().Context(), actorID, id, req.Result, req.Status, req.Notes)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}
