package patient

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/mediland/clinic/internal/domain/audit"
	"github.com/mediland/clinic/internal/platform/identity"
)

// CompletedVisitChecker reports whether the patient has at least one
// completed appointment with the doctor. Ratings are only accepted after a
// completed visit.
type CompletedVisitChecker interface {
	HasCompletedVisit(ctx context.Context, patientID, doctorID string) (bool, error)
}

var validGenders = map[string]bool{
	"MALE":   true,
	"FEMALE": true,
}

type Service struct {
	repo    PatientRepository
	ratings RatingRepository
	idp     identity.Provider
	auditor audit.Recorder
	visits  CompletedVisitChecker
}

func NewService(repo PatientRepository, ratings RatingRepository, idp identity.Provider, auditor audit.Recorder, visits CompletedVisitChecker) *Service {
	return &Service{repo: repo, ratings: ratings, idp: idp, auditor: auditor, visits: visits}
}

// Create registers a patient profile for an existing signed-in user and
// mirrors the patient role into the identity provider. A role mirror failure
// does not undo the profile; the role converges on the next sync.
func (s *Service) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if err := s.validate(p); err != nil {
		return nil, err
	}
	if !p.PrivacyConsent || !p.ServiceConsent || !p.MedicalConsent {
		return nil, fmt.Errorf("all consents must be given")
	}
	if p.ColorCode == "" {
		p.ColorCode = randomColor()
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	if s.idp != nil {
		if err := s.idp.SetRole(ctx, p.ID, "patient"); err != nil {
			log.Warn().Err(err).Str("patient_id", p.ID).Msg("failed to mirror patient role")
		}
	}

	s.auditor.Record(ctx, p.ID, p.ID, audit.ActionPatientCreated, nil)
	return p, nil
}

// Update replaces the patient's editable profile fields. Consent flags are
// immutable once given.
func (s *Service) Update(ctx context.Context, p *Patient) (*Patient, error) {
	if err := s.validate(p); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("patient not found: %w", err)
	}
	p.PrivacyConsent = existing.PrivacyConsent
	p.ServiceConsent = existing.ServiceConsent
	p.MedicalConsent = existing.MedicalConsent
	p.ColorCode = existing.ColorCode
	p.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("updating patient: %w", err)
	}

	s.auditor.Record(ctx, p.ID, p.ID, audit.ActionPatientUpdated, nil)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, query, limit, offset)
}

// CreateRating records a patient's review of a doctor. The patient must
// have at least one completed appointment with that doctor.
func (s *Service) CreateRating(ctx context.Context, r *Rating) (*Rating, error) {
	if r.PatientID == "" {
		return nil, fmt.Errorf("patient id is required")
	}
	if r.DoctorID == "" {
		return nil, fmt.Errorf("doctor id is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	ok, err := s.visits.HasCompletedVisit(ctx, r.PatientID, r.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("checking completed visits: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("rating requires a completed appointment with this doctor")
	}

	if err := s.ratings.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("creating rating: %w", err)
	}
	return r, nil
}

func (s *Service) ListRatings(ctx context.Context, doctorID string, limit, offset int) ([]*Rating, int, error) {
	return s.ratings.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) validate(p *Patient) error {
	if p.ID == "" {
		return fmt.Errorf("patient id is required")
	}
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first and last name are required")
	}
	if !validGenders[p.Gender] {
		return fmt.Errorf("gender must be MALE or FEMALE")
	}
	if p.Email == "" {
		return fmt.Errorf("email is required")
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("date of birth is required")
	}
	return nil
}

// randomColor picks a muted hex color used as the patient's avatar badge.
func randomColor() string {
	return fmt.Sprintf("#%02x%02x%02x", 64+rand.Intn(128), 64+rand.Intn(128), 64+rand.Intn(128))
}
