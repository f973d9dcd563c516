package doctor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/mediland/clinic/internal/domain/audit"
	"github.com/mediland/clinic/internal/platform/identity"
)

// Notifier delivers an in-app notification to a user. Failures are logged
// and swallowed by callers; notifications never abort the main operation.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) error
}

var validJobTypes = map[string]bool{
	JobTypeFull: true,
	JobTypePart: true,
}

// RegisterInput carries everything needed to onboard a doctor, including the
// credentials for the identity provider account.
type RegisterInput struct {
	Email          string
	Password       string
	Name           string
	Specialization string
	LicenseNumber  string
	Phone          string
	Address        string
	Department     string
	JobType        string
	Img            string
	WorkingDays    []*WorkingDay
}

type Service struct {
	repo     DoctorRepository
	idp      identity.Provider
	auditor  audit.Recorder
	notifier Notifier
}

func NewService(repo DoctorRepository, idp identity.Provider, auditor audit.Recorder, notifier Notifier) *Service {
	return &Service{repo: repo, idp: idp, auditor: auditor, notifier: notifier}
}

// Register onboards a self-registering doctor: an account is created in the
// identity provider, then the local profile is stored with PENDING status.
// If the profile write fails the identity account is deleted again so a
// retry does not collide with a half-created user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Doctor, error) {
	return s.create(ctx, in, StatusPending)
}

// CreateByAdmin onboards a doctor added directly by an administrator. The
// profile starts ACTIVE since the admin has already vetted it.
func (s *Service) CreateByAdmin(ctx context.Context, in RegisterInput) (*Doctor, error) {
	return s.create(ctx, in, StatusActive)
}

func (s *Service) create(ctx context.Context, in RegisterInput, status string) (*Doctor, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByLicense(ctx, in.LicenseNumber); err == nil && existing != nil {
		return nil, fmt.Errorf("license number %s is already registered", in.LicenseNumber)
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("checking license: %w", err)
	}

	user, err := s.idp.CreateUser(ctx, identity.NewUser{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.Name,
		Role:      "doctor",
	})
	if err != nil {
		return nil, fmt.Errorf("creating identity account: %w", err)
	}

	d := &Doctor{
		ID:                 user.ID,
		Email:              in.Email,
		Name:               in.Name,
		Specialization:     in.Specialization,
		LicenseNumber:      in.LicenseNumber,
		Phone:              in.Phone,
		Address:            in.Address,
		Department:         in.Department,
		Img:                in.Img,
		ColorCode:          randomColor(),
		AvailabilityStatus: status,
		JobType:            in.JobType,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		// Compensate so the orphaned account does not block a retry.
		if delErr := s.idp.DeleteUser(ctx, user.ID); delErr != nil {
			log.Error().Err(delErr).Str("user_id", user.ID).Msg("failed to delete identity account after profile write failure")
		}
		return nil, fmt.Errorf("creating doctor profile: %w", err)
	}

	if len(in.WorkingDays) > 0 {
		if err := s.repo.ReplaceWorkingDays(ctx, d.ID, in.WorkingDays); err != nil {
			return nil, fmt.Errorf("saving working days: %w", err)
		}
		d.WorkingDays = in.WorkingDays
	}

	s.auditor.Record(ctx, d.ID, d.ID, audit.ActionDoctorRegistered, map[string]string{"status": status})
	return d, nil
}

// Approve moves a PENDING doctor to ACTIVE and notifies them.
func (s *Service) Approve(ctx context.Context, adminID, doctorID string) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor not found: %w", err)
	}
	if d.AvailabilityStatus == StatusActive {
		return d, nil
	}
	if d.AvailabilityStatus != StatusPending {
		return nil, fmt.Errorf("only pending doctors can be approved, status is %s", d.AvailabilityStatus)
	}

	d.AvailabilityStatus = StatusActive
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("updating doctor: %w", err)
	}

	s.auditor.Record(ctx, adminID, d.ID, audit.ActionDoctorApproved, nil)
	s.notify(ctx, d.ID, "Registration Approved",
		"Your registration has been approved. You can now receive appointments.")
	return d, nil
}

// Reject removes a PENDING doctor entirely: the profile row and the identity
// account both go away so the applicant can register again later.
func (s *Service) Reject(ctx context.Context, adminID, doctorID, reason string) error {
	d, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("doctor not found: %w", err)
	}
	if d.AvailabilityStatus != StatusPending {
		return fmt.Errorf("only pending doctors can be rejected, status is %s", d.AvailabilityStatus)
	}

	if err := s.repo.Delete(ctx, doctorID); err != nil {
		return fmt.Errorf("deleting doctor: %w", err)
	}
	if err := s.idp.DeleteUser(ctx, doctorID); err != nil {
		log.Error().Err(err).Str("user_id", doctorID).Msg("failed to delete identity account for rejected doctor")
	}

	s.auditor.Record(ctx, adminID, doctorID, audit.ActionDoctorRejected, map[string]string{"reason": reason})
	return nil
}

// UpdateStatus toggles an approved doctor between ACTIVE and ON_LEAVE.
func (s *Service) UpdateStatus(ctx context.Context, actorID, doctorID, status string) (*Doctor, error) {
	if status != StatusActive && status != StatusOnLeave {
		return nil, fmt.Errorf("status must be %s or %s", StatusActive, StatusOnLeave)
	}

	d, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor not found: %w", err)
	}
	if d.AvailabilityStatus == StatusPending {
		return nil, fmt.Errorf("doctor is awaiting approval")
	}
	if d.AvailabilityStatus == status {
		return d, nil
	}

	d.AvailabilityStatus = status
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("updating doctor: %w", err)
	}

	s.auditor.Record(ctx, actorID, d.ID, audit.ActionDoctorStatusChanged, map[string]string{"status": status})
	return d, nil
}

// SetWorkingDays replaces the doctor's weekly availability windows.
func (s *Service) SetWorkingDays(ctx context.Context, doctorID string, days []*WorkingDay) error {
	if _, err := s.repo.GetByID(ctx, doctorID); err != nil {
		return fmt.Errorf("doctor not found: %w", err)
	}
	for _, wd := range days {
		if wd.Day == "" || wd.StartTime == "" || wd.CloseTime == "" {
			return fmt.Errorf("day, start time, and close time are required")
		}
	}
	return s.repo.ReplaceWorkingDays(ctx, doctorID, days)
}

func (s *Service) Get(ctx context.Context, id string) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, params SearchParams, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

func (s *Service) notify(ctx context.Context, userID, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, title, message); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("notification delivery failed")
	}
}

func (s *Service) validateInput(in RegisterInput) error {
	if in.Email == "" {
		return fmt.Errorf("email is required")
	}
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	if in.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	if in.LicenseNumber == "" {
		return fmt.Errorf("license number is required")
	}
	if !validJobTypes[in.JobType] {
		return fmt.Errorf("type must be FULL or PART")
	}
	return nil
}

// randomColor picks a muted hex color used as the doctor's calendar badge.
func randomColor() string {
	return fmt.Sprintf("#%02x%02x%02x", 64+rand.Intn(128), 64+rand.Intn(128), 64+rand.Intn(128))
}
