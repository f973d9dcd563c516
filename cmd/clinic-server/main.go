package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mediland/clinic/internal/config"
	"github.com/mediland/clinic/internal/domain/admin"
	"github.com/mediland/clinic/internal/domain/appointment"
	"github.com/mediland/clinic/internal/domain/audit"
	"github.com/mediland/clinic/internal/domain/billing"
	"github.com/mediland/clinic/internal/domain/doctor"
	"github.com/mediland/clinic/internal/domain/medicalrecord"
	"github.com/mediland/clinic/internal/domain/notification"
	"github.com/mediland/clinic/internal/domain/patient"
	"github.com/mediland/clinic/internal/platform/auth"
	"github.com/mediland/clinic/internal/platform/db"
	"github.com/mediland/clinic/internal/platform/identity"
	"github.com/mediland/clinic/internal/platform/mail"
	"github.com/mediland/clinic/internal/platform/middleware"
	"github.com/mediland/clinic/internal/platform/validate"
	"github.com/mediland/clinic/internal/platform/ws"
)

// patientDirectoryAdapter adapts the patient service to the narrow directory
// interface the appointment workflow depends on, avoiding a circular import
// between the two packages.
type patientDirectoryAdapter struct {
	patients *patient.Service
}

func (a *patientDirectoryAdapter) GetPatient(ctx context.Context, id string) (*appointment.PatientInfo, error) {
	p, err := a.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &appointment.PatientInfo{ID: p.ID, Name: p.FullName(), Email: p.Email}, nil
}

type doctorDirectoryAdapter struct {
	doctors *doctor.Service
}

func (a *doctorDirectoryAdapter) GetDoctor(ctx context.Context, id string) (*appointment.DoctorInfo, error) {
	d, err := a.doctors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &appointment.DoctorInfo{ID: d.ID, Name: d.Name, Email: d.Email, Status: d.AvailabilityStatus}, nil
}

// appointmentSourceAdapter lets charting resolve appointments without
// importing the appointment package's full service surface.
type appointmentSourceAdapter struct {
	appointments *appointment.Service
}

func (a *appointmentSourceAdapter) GetAppointment(ctx context.Context, id uuid.UUID) (*medicalrecord.AppointmentInfo, error) {
	appt, err := a.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &medicalrecord.AppointmentInfo{
		ID:        appt.ID,
		PatientID: appt.PatientID,
		DoctorID:  appt.DoctorID,
		Status:    appt.Status,
	}, nil
}

// appointmentGatewayAdapter gives billing read access to appointments plus
// the single completion hook it is allowed to call.
type appointmentGatewayAdapter struct {
	appointments *appointment.Service
}

func (a *appointmentGatewayAdapter) GetAppointment(ctx context.Context, id uuid.UUID) (*billing.AppointmentInfo, error) {
	appt, err := a.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &billing.AppointmentInfo{ID: appt.ID, PatientID: appt.PatientID, Status: appt.Status}, nil
}

func (a *appointmentGatewayAdapter) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return a.appointments.MarkCompleted(ctx, id)
}

type serviceCatalogAdapter struct {
	admin *admin.Service
}

func (a *serviceCatalogAdapter) GetService(ctx context.Context, id uuid.UUID) (*billing.ServiceInfo, error) {
	svc, err := a.admin.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	return &billing.ServiceInfo{ID: svc.ID, Name: svc.ServiceName, Price: svc.Price}, nil
}

// completedVisitAdapter breaks the construction cycle between the patient
// and appointment services: the patient service is built first with this
// adapter, and the appointment service is plugged in afterwards.
type completedVisitAdapter struct {
	appointments *appointment.Service
}

func (a *completedVisitAdapter) HasCompletedVisit(ctx context.Context, patientID, doctorID string) (bool, error) {
	if a.appointments == nil {
		return false, fmt.Errorf("appointment service not initialized")
	}
	return a.appointments.HasCompletedVisit(ctx, patientID, doctorID)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Mediland clinic API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %s\n", "VERSION", "NAME", "STATUS")
			for _, s := range statuses {
				status := "pending"
				if s.Applied {
					status = "applied"
				}
				fmt.Printf("%-10d %-40s %s\n", s.Version, s.Name, status)
			}
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware. The verifier is shared with the websocket upgrade
	// path, which cannot carry an Authorization header.
	jwtCfg := auth.JWTConfig{
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
		JWKSURL:  cfg.AuthJWKSURL,
	}
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(auth.AuthSkipper))
	} else {
		e.Use(auth.JWTMiddleware(jwtCfg, auth.AuthSkipper))
	}

	// Mail: fall back to a logging stub when SendGrid is not configured.
	var mailer mail.Sender = mail.StubSender{}
	if sg := mail.NewSendGridSender(mail.SendGridConfig{
		APIKey:    cfg.SendGridKey,
		FromEmail: cfg.EmailFrom,
		FromName:  cfg.EmailFromName,
	}); sg != nil {
		mailer = sg
	}

	// Identity provider: the in-memory mock keeps local development working
	// without an external account service.
	var idp identity.Provider
	if cfg.IdentityURL != "" {
		idp = identity.NewHTTPProvider(cfg.IdentityURL, cfg.IdentityKey)
	} else {
		if !cfg.IsDev() {
			logger.Warn().Msg("IDENTITY_BASE_URL is not set, using in-memory identity provider")
		}
		idp = identity.NewMock()
	}

	// WebSocket hub for live notification delivery. Outside development the
	// upgrade must present a token issued by the identity provider.
	hub := ws.NewHub()
	var wsVerify ws.TokenVerifier
	if !cfg.IsDev() {
		verifier := auth.NewVerifier(jwtCfg)
		wsVerify = func(token string) (string, error) {
			claims, err := verifier.Verify(token)
			if err != nil {
				return "", err
			}
			return claims.Subject, nil
		}
	}
	wsHandler := ws.NewHandler(hub, wsVerify)
	wsHandler.RegisterRoutes(e.Group(""))

	// Repositories
	auditRepo := audit.NewLogRepoPG(pool)
	notificationRepo := notification.NewNotificationRepoPG(pool)
	patientRepo := patient.NewPatientRepoPG(pool)
	ratingRepo := patient.NewRatingRepoPG(pool)
	doctorRepo := doctor.NewDoctorRepoPG(pool)
	appointmentRepo := appointment.NewAppointmentRepoPG(pool)
	recordRepo := medicalrecord.NewRecordRepoPG(pool)
	paymentRepo := billing.NewPaymentRepoPG(pool)
	staffRepo := admin.NewStaffRepoPG(pool)
	serviceRepo := admin.NewServiceRepoPG(pool)

	// Services. The visits adapter is filled in after the appointment
	// service exists; the two packages depend on each other at runtime but
	// not at compile time.
	auditSvc := audit.NewService(auditRepo)
	notificationSvc := notification.NewService(notificationRepo, hub)
	visits := &completedVisitAdapter{}
	patientSvc := patient.NewService(patientRepo, ratingRepo, idp, auditSvc, visits)
	doctorSvc := doctor.NewService(doctorRepo, idp, auditSvc, notificationSvc)
	appointmentSvc := appointment.NewService(appointmentRepo,
		&patientDirectoryAdapter{patients: patientSvc},
		&doctorDirectoryAdapter{doctors: doctorSvc},
		mailer, notificationSvc, auditSvc)
	visits.appointments = appointmentSvc
	recordSvc := medicalrecord.NewService(recordRepo,
		&appointmentSourceAdapter{appointments: appointmentSvc}, auditSvc)
	adminSvc := admin.NewService(staffRepo, serviceRepo, idp, auditSvc)
	billingSvc := billing.NewService(paymentRepo,
		&appointmentGatewayAdapter{appointments: appointmentSvc},
		&serviceCatalogAdapter{admin: adminSvc},
		notificationSvc, auditSvc)

	// Routes
	api := e.Group("/api/v1")
	// Doctors awaiting approval only see their own profile.
	api.Use(doctor.PendingGate(doctorSvc))
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	doctor.NewHandler(doctorSvc).RegisterRoutes(api)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(api)
	medicalrecord.NewHandler(recordSvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)
	admin.NewHandler(adminSvc).RegisterRoutes(api)
	notification.NewHandler(notificationSvc).RegisterRoutes(api)
	audit.NewHandler(auditSvc).RegisterRoutes(api)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
