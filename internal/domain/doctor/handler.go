package doctor

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
	// Self-registration happens before the applicant has any role.
	api.POST("/doctors/register", h.RegisterDoctor)

	// Reads are open to every role so patients can browse the directory
	// when booking; lifecycle operations stay with the back office.
	g := api.Group("/doctors", auth.Guard("/doctors"))
	g.GET("", h.ListDoctors)
	g.GET("/:id", h.GetDoctor)

	adminOnly := auth.RequireRole(auth.RoleAdmin)
	g.POST("", h.CreateDoctor, adminOnly)
	g.PATCH("/:id/approve", h.ApproveDoctor, adminOnly)
	g.DELETE("/:id/reject", h.RejectDoctor, adminOnly)
	g.PATCH("/:id/status", h.UpdateStatus, adminOnly)
	g.PUT("/:id/working-days", h.SetWorkingDays, auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
}

type workingDayRequest struct {
	Day       string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"startTime" validate:"required"`
	CloseTime string `json:"closeTime" validate:"required"`
}

type registerRequest struct {
	Email          string              `json:"email" validate:"required,email"`
	Password       string              `json:"password" validate:"required,min=8"`
	Name           string              `json:"name" validate:"required,min=2,max=50"`
	Specialization string              `json:"specialization" validate:"required,min=2"`
	LicenseNumber  string              `json:"licenseNumber" validate:"required,min=2"`
	Phone          string              `json:"phone" validate:"required,min=10,max=15"`
	Address        string              `json:"address" validate:"required,min=5,max=500"`
	Department     string              `json:"department" validate:"required,min=2"`
	JobType        string              `json:"jobType" validate:"required,oneof=FULL PART"`
	Img            string              `json:"img"`
	WorkingDays    []workingDayRequest `json:"workingDays" validate:"dive"`
}

func (r *registerRequest) toInput() RegisterInput {
	days := make([]*WorkingDay, 0, len(r.WorkingDays))
	for _, wd := range r.WorkingDays {
		days = append(days, &WorkingDay{Day: wd.Day, StartTime: wd.StartTime, CloseTime: wd.CloseTime})
	}
	return RegisterInput{
		Email:          r.Email,
		Password:       r.Password,
		Name:           r.Name,
		Specialization: r.Specialization,
		LicenseNumber:  r.LicenseNumber,
		Phone:          r.Phone,
		Address:        r.Address,
		Department:     r.Department,
		JobType:        r.JobType,
		Img:            r.Img,
		WorkingDays:    days,
	}
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	d, err := h.svc.Register(c.Request().Context(), req.toInput())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	d, err := h.svc.CreateByAdmin(c.Request().Context(), req.toInput())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	d, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := SearchParams{
		Status:         c.QueryParam("status"),
		Specialization: c.QueryParam("specialization"),
		Query:          c.QueryParam("q"),
	}
	items, total, err := h.svc.List(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list doctors")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ApproveDoctor(c echo.Context) error {
	adminID := auth.UserIDFromContext(c.Request().Context())
	d, err := h.svc.Approve(c.Request().Context(), adminID, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (h *Handler) RejectDoctor(c echo.Context) error {
	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	adminID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Reject(c.Request().Context(), adminID, c.Param("id"), req.Reason); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE ON_LEAVE"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID := auth.UserIDFromContext(c.Request().Context())
	d, err := h.svc.UpdateStatus(c.Request().Context(), actorID, c.Param("id"), req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

type workingDaysRequest struct {
	WorkingDays []workingDayRequest `json:"workingDays" validate:"required,min=1,dive"`
}

func (h *Handler) SetWorkingDays(c echo.Context) error {
	var req workingDaysRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	days := make([]*WorkingDay, 0, len(req.WorkingDays))
	for _, wd := range req.WorkingDays {
		days = append(days, &WorkingDay{Day: wd.Day, StartTime: wd.StartTime, CloseTime: wd.CloseTime})
	}
	if err := h.svc.SetWorkingDays(c.Request().Context(), c.Param("id"), days); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
