package patient

import (
	"net/http"
	"time"

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
	g := api.Group("/patients", auth.Guard("/patients"))
	// Only clinic-side roles may enumerate the register; a patient still
	// reads their own profile by id.
	g.GET("", h.ListPatients, auth.RequireRole(auth.RoleAdmin, auth.RoleStaff, auth.RoleDoctor))
	g.GET("/:id", h.GetPatient)
	g.PUT("/:id", h.UpdatePatient, auth.RequireRole(auth.RolePatient, auth.RoleStaff, auth.RoleAdmin))

	// Registration is by the patient or staff at the desk; reviews come only
	// from patients.
	g.POST("", h.CreatePatient, auth.RequireRole(auth.RolePatient, auth.RoleStaff))
	g.POST("/:id/ratings", h.CreateRating, auth.RequireRole(auth.RolePatient))
}

type patientRequest struct {
	FirstName              string    `json:"firstName" validate:"required,min=2,max=30"`
	LastName               string    `json:"lastName" validate:"required,min=2,max=30"`
	DateOfBirth            time.Time `json:"dateOfBirth" validate:"required"`
	Gender                 string    `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Phone                  string    `json:"phone" validate:"required,min=10,max=15"`
	Email                  string    `json:"email" validate:"required,email"`
	MaritalStatus          string    `json:"maritalStatus" validate:"required,oneof=married single divorced widowed separated"`
	Address                string    `json:"address" validate:"required,min=5,max=500"`
	EmergencyContactName   string    `json:"emergencyContactName" validate:"required,min=2,max=50"`
	EmergencyContactNumber string    `json:"emergencyContactNumber" validate:"required,min=10,max=15"`
	Relation               string    `json:"relation" validate:"required,oneof=mother father husband wife other"`
	BloodGroup             string    `json:"bloodGroup"`
	Allergies              string    `json:"allergies"`
	MedicalConditions      string    `json:"medicalConditions"`
	MedicalHistory         string    `json:"medicalHistory"`
	InsuranceProvider      string    `json:"insuranceProvider"`
	InsuranceNumber        string    `json:"insuranceNumber"`
	PrivacyConsent         bool      `json:"privacyConsent"`
	ServiceConsent         bool      `json:"serviceConsent"`
	MedicalConsent         bool      `json:"medicalConsent"`
	Img                    string    `json:"img"`
}

func (r *patientRequest) toModel(id string) *Patient {
	return &Patient{
		ID:                     id,
		FirstName:              r.FirstName,
		LastName:               r.LastName,
		DateOfBirth:            r.DateOfBirth,
		Gender:                 r.Gender,
		Phone:                  r.Phone,
		Email:                  r.Email,
		MaritalStatus:          r.MaritalStatus,
		Address:                r.Address,
		EmergencyContactName:   r.EmergencyContactName,
		EmergencyContactNumber: r.EmergencyContactNumber,
		Relation:               r.Relation,
		BloodGroup:             r.BloodGroup,
		Allergies:              r.Allergies,
		MedicalConditions:      r.MedicalConditions,
		MedicalHistory:         r.MedicalHistory,
		InsuranceProvider:      r.InsuranceProvider,
		InsuranceNumber:        r.InsuranceNumber,
		PrivacyConsent:         r.PrivacyConsent,
		ServiceConsent:         r.ServiceConsent,
		MedicalConsent:         r.MedicalConsent,
		Img:                    r.Img,
	}
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Patients register their own profile; staff may register on behalf of
	// a user by passing an explicit id.
	id := c.QueryParam("user_id")
	roles := auth.RolesFromContext(c.Request().Context())
	if id == "" || !auth.HasRole(roles, auth.RoleStaff) {
		id = auth.UserIDFromContext(c.Request().Context())
	}

	created, err := h.svc.Create(c.Request().Context(), req.toModel(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.svc.Update(c.Request().Context(), req.toModel(c.Param("id")))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list patients")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type ratingRequest struct {
	DoctorID string `json:"doctorId" validate:"required"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment  string `json:"comment" validate:"max=500"`
}

func (h *Handler) CreateRating(c echo.Context) error {
	var req ratingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	r := &Rating{
		DoctorID:  req.DoctorID,
		PatientID: c.Param("id"),
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	created, err := h.svc.CreateRating(c.Request().Context(), r)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}
