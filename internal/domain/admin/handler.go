package admin

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
	staff := api.Group("/staff", auth.Guard("/staff"))
	staff.POST("", h.CreateStaff)
	staff.GET("", h.ListStaff)
	staff.GET("/:id", h.GetStaff)
	staff.PATCH("/:id/status", h.UpdateStaffStatus)

	services := api.Group("/services", auth.Guard("/services"))
	services.POST("", h.CreateService)
	services.GET("", h.ListServices)
	services.GET("/:id", h.GetService)
	services.PUT("/:id", h.UpdateService)
	services.DELETE("/:id", h.DeleteService)
}

type staffRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Name          string `json:"name" validate:"required,min=2,max=50"`
	Phone         string `json:"phone" validate:"required,min=10,max=15"`
	Address       string `json:"address" validate:"required,min=5,max=500"`
	Department    string `json:"department"`
	LicenseNumber string `json:"licenseNumber"`
	Role          string `json:"role" validate:"required,oneof=NURSE CASHIER LAB_TECHNICIAN"`
	Img           string `json:"img"`
}

func (h *Handler) CreateStaff(c echo.Context) error {
	var req staffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	adminID := auth.UserIDFromContext(c.Request().Context())
	st, err := h.svc.CreateStaff(c.Request().Context(), adminID, StaffInput{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		Department:    req.Department,
		LicenseNumber: req.LicenseNumber,
		Role:          req.Role,
		Img:           req.Img,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *Handler) GetStaff(c echo.Context) error {
	st, err := h.svc.GetStaff(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "staff member not found")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) ListStaff(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListStaff(c.Request().Context(), c.QueryParam("role"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list staff")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type staffStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

func (h *Handler) UpdateStaffStatus(c echo.Context) error {
	var req staffStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	st, err := h.svc.UpdateStaffStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

type serviceRequest struct {
	ServiceName string  `json:"serviceName" validate:"required,min=2,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    string  `json:"category"`
}

func (h *Handler) CreateService(c echo.Context) error {
	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	svc, err := h.svc.CreateService(c.Request().Context(), &CatalogService{
		ServiceName: req.ServiceName,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, svc)
}

func (h *Handler) GetService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}
	svc, err := h.svc.GetService(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) ListServices(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListServices(c.Request().Context(), c.QueryParam("category"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list services")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}

	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	svc, err := h.svc.UpdateService(c.Request().Context(), id, &CatalogService{
		ServiceName: req.ServiceName,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) DeleteService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}
	if err := h.svc.DeleteService(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}
	return c.NoContent(http.StatusNoContent)
}
