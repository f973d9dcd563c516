package medicalrecord

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockRecordRepo struct {
	records   map[uuid.UUID]*MedicalRecord
	byAppt    map[uuid.UUID]uuid.UUID
	vitals    map[uuid.UUID][]*VitalSigns
	diagnoses map[uuid.UUID][]*Diagnosis
	labTests  map[uuid.UUID]*LabTest
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{
		records:   make(map[uuid.UUID]*MedicalRecord),
		byAppt:    make(map[uuid.UUID]uuid.UUID),
		vitals:    make(map[uuid.UUID][]*VitalSigns),
		diagnoses: make(map[uuid.UUID][]*Diagnosis),
		labTests:  make(map[uuid.UUID]*LabTest),
	}
}

func (m *mockRecordRepo) Upsert(_ context.Context, r *MedicalRecord) (*MedicalRecord, error) {
	if existingID, ok := m.byAppt[r.AppointmentID]; ok {
		return m.records[existingID], nil
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = time.Now().UTC()
	m.records[r.ID] = r
	m.byAppt[r.AppointmentID] = r.ID
	return r, nil
}

func (m *mockRecordRepo) Update(_ context.Context, r *MedicalRecord) error {
	if _, ok := m.records[r.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.records[r.ID] = r
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockRecordRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*MedicalRecord, error) {
	id, ok := m.byAppt[appointmentID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return m.records[id], nil
}

func (m *mockRecordRepo) ListByPatient(_ context.Context, patientID string, limit, offset int) ([]*MedicalRecord, int, error) {
	var matched []*MedicalRecord
	for _, r := range m.records {
		if r.PatientID == patientID {
			matched = append(matched, r)
		}
	}
	return matched, len(matched), nil
}

func (m *mockRecordRepo) AddVitalSigns(_ context.Context, v *VitalSigns) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.vitals[v.MedicalRecordID] = append(m.vitals[v.MedicalRecordID], v)
	return nil
}

func (m *mockRecordRepo) ListVitalSigns(_ context.Context, recordID uuid.UUID) ([]*VitalSigns, error) {
	return m.vitals[recordID], nil
}

func (m *mockRecordRepo) AddDiagnosis(_ context.Context, d *Diagnosis) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.diagnoses[d.MedicalRecordID] = append(m.diagnoses[d.MedicalRecordID], d)
	return nil
}

func (m *mockRecordRepo) ListDiagnoses(_ context.Context, recordID uuid.UUID) ([]*Diagnosis, error) {
	return m.diagnoses[recordID], nil
}

func (m *mockRecordRepo) AddLabTest(_ context.Context, t *LabTest) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.labTests[t.ID] = t
	return nil
}

func (m *mockRecordRepo) UpdateLabTest(_ context.Context, t *LabTest) error {
	if _, ok := m.labTests[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.labTests[t.ID] = t
	return nil
}

func (m *mockRecordRepo) GetLabTest(_ context.Context, id uuid.UUID) (*LabTest, error) {
	t, ok := m.labTests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockRecordRepo) ListLabTests(_ context.Context, recordID uuid.UUID) ([]*LabTest, error) {
	var matched []*LabTest
	for _, t := range m.labTests {
		if t.MedicalRecordID == recordID {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

type mockApptSource struct {
	appts map[uuid.UUID]*AppointmentInfo
}

func (m *mockApptSource) GetAppointment(_ context.Context, id uuid.UUID) (*AppointmentInfo, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

type mockAuditor struct {
	actions []string
}

func (m *mockAuditor) Record(_ context.Context, userID, recordID, action string, details interface{}) {
	m.actions = append(m.actions, action)
}

func newTestService(status string) (*Service, uuid.UUID, *mockRecordRepo) {
	apptID := uuid.New()
	repo := newMockRecordRepo()
	appts := &mockApptSource{appts: map[uuid.UUID]*AppointmentInfo{
		apptID: {ID: apptID, PatientID: "pat_1", DoctorID: "doc_1", Status: status},
	}}
	return NewService(repo, appts, &mockAuditor{}), apptID, repo
}

func validVitals() *VitalSigns {
	return &VitalSigns{
		BodyTemperature: 37.2,
		HeartRate:       72,
		SystolicBP:      120,
		DiastolicBP:     80,
		Weight:          68,
		Height:          172,
	}
}

func TestGetOrCreate_SameRecordForSameAppointment(t *testing.T) {
	svc, apptID, _ := newTestService("SCHEDULED")

	first, err := svc.GetOrCreate(context.Background(), "doc_1", apptID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GetOrCreate(context.Background(), "staff_1", apptID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected one record per appointment, got %s and %s", first.ID, second.ID)
	}
	if first.PatientID != "pat_1" || first.DoctorID != "doc_1" {
		t.Errorf("record should inherit appointment parties: %+v", first)
	}
}

func TestGetOrCreate_PendingAppointmentRejected(t *testing.T) {
	svc, apptID, _ := newTestService("PENDING")

	if _, err := svc.GetOrCreate(context.Background(), "doc_1", apptID); err == nil {
		t.Fatal("expected error charting a pending appointment")
	}
}

func TestAddVitalSigns_OpensRecordLazily(t *testing.T) {
	svc, apptID, repo := newTestService("SCHEDULED")

	v, err := svc.AddVitalSigns(context.Background(), "staff_1", apptID, validVitals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.MedicalRecordID == uuid.Nil {
		t.Fatal("vitals should be linked to a record")
	}
	if len(repo.records) != 1 {
		t.Errorf("expected 1 record, got %d", len(repo.records))
	}
	if v.PatientID != "pat_1" {
		t.Errorf("vitals should carry the patient id, got %q", v.PatientID)
	}
}

func TestAddVitalSigns_MeasurementsRequired(t *testing.T) {
	svc, apptID, _ := newTestService("SCHEDULED")

	v := validVitals()
	v.HeartRate = 0
	if _, err := svc.AddVitalSigns(context.Background(), "staff_1", apptID, v); err == nil {
		t.Fatal("expected error for missing heart rate")
	}
}

func TestAddDiagnosis_SetsDoctorFromActor(t *testing.T) {
	svc, apptID, _ := newTestService("SCHEDULED")

	d := &Diagnosis{Symptoms: "persistent cough", Diagnosis: "bronchitis"}
	created, err := svc.AddDiagnosis(context.Background(), "doc_1", apptID, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.DoctorID != "doc_1" {
		t.Errorf("expected acting doctor recorded, got %q", created.DoctorID)
	}
}

func TestAddLabTest_StartsPendingAndCompletesWithResult(t *testing.T) {
	svc, apptID, _ := newTestService("SCHEDULED")

	// A test can only be ordered from an open chart.
	if _, err := svc.AddLabTest(context.Background(), "doc_1", apptID, &LabTest{
		TestDate: time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC),
	}); err == nil {
		t.Fatal("expected error when no medical record exists")
	}

	if _, err := svc.GetOrCreate(context.Background(), "doc_1", apptID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ordered, err := svc.AddLabTest(context.Background(), "doc_1", apptID, &LabTest{
		TestDate: time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ordered.Status != LabStatusPending {
		t.Errorf("expected PENDING, got %s", ordered.Status)
	}

	updated, err := svc.UpdateLabTest(context.Background(), "lab_1", ordered.ID, "negative", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != LabStatusCompleted {
		t.Errorf("recording a result should complete the test, got %s", updated.Status)
	}
	if updated.Result != "negative" {
		t.Errorf("expected result stored, got %q", updated.Result)
	}
}

func TestGetByAppointment_AttachesChildren(t *testing.T) {
	svc, apptID, _ := newTestService("SCHEDULED")

	if _, err := svc.AddVitalSigns(context.Background(), "staff_1", apptID, validVitals()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddDiagnosis(context.Background(), "doc_1", apptID, &Diagnosis{
		Symptoms: "fever", Diagnosis: "influenza",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := svc.GetByAppointment(context.Background(), apptID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.VitalSigns) != 1 || len(rec.Diagnoses) != 1 {
		t.Errorf("expected children attached, got %d vitals, %d diagnoses",
			len(rec.VitalSigns), len(rec.Diagnoses))
	}
}
