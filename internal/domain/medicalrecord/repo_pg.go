package medicalrecord

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediland/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type RecordRepoPG struct {
	pool *pgxpool.Pool
}

func NewRecordRepoPG(pool *pgxpool.Pool) *RecordRepoPG {
	return &RecordRepoPG{pool: pool}
}

func (r *RecordRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `id, patient_id, appointment_id, doctor_id, treatment_plan,
	prescriptions, lab_request, notes, created_at, updated_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(
		&m.ID, &m.PatientID, &m.AppointmentID, &m.DoctorID, &m.TreatmentPlan,
		&m.Prescriptions, &m.LabRequest, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
	)
	return &m, err
}

// Upsert relies on the UNIQUE constraint on appointment_id. The no-op
// conflict update lets RETURNING hand back the winning row, so concurrent
// callers converge on one record without a read-then-write race.
func (r *RecordRepoPG) Upsert(ctx context.Context, rec *MedicalRecord) (*MedicalRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now().UTC()
	q := fmt.Sprintf(`INSERT INTO medical_records (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (appointment_id) DO UPDATE SET appointment_id = EXCLUDED.appointment_id
		RETURNING %s`, recordCols, recordCols)
	return scanRecord(r.conn(ctx).QueryRow(ctx, q,
		rec.ID, rec.PatientID, rec.AppointmentID, rec.DoctorID, rec.TreatmentPlan,
		rec.Prescriptions, rec.LabRequest, rec.Notes, now, now,
	))
}

func (r *RecordRepoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	q := `UPDATE medical_records SET
		treatment_plan = $2, prescriptions = $3, lab_request = $4, notes = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q,
		rec.ID, rec.TreatmentPlan, rec.Prescriptions, rec.LabRequest, rec.Notes, rec.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *RecordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM medical_records WHERE id = $1", recordCols)
	return scanRecord(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *RecordRepoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*MedicalRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM medical_records WHERE appointment_id = $1", recordCols)
	return scanRecord(r.conn(ctx).QueryRow(ctx, q, appointmentID))
}

func (r *RecordRepoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM medical_records WHERE patient_id = $1", patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM medical_records WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3", recordCols)
	rows, err := r.conn(ctx).Query(ctx, q, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}

const vitalsCols = `id, medical_record_id, patient_id, body_temperature, heart_rate,
	systolic_bp, diastolic_bp, respiratory_rate, oxygen_saturation, weight, height, created_at`

func (r *RecordRepoPG) AddVitalSigns(ctx context.Context, v *VitalSigns) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	q := fmt.Sprintf(`INSERT INTO vital_signs (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, vitalsCols)
	_, err := r.conn(ctx).Exec(ctx, q,
		v.ID, v.MedicalRecordID, v.PatientID, v.BodyTemperature, v.HeartRate,
		v.SystolicBP, v.DiastolicBP, v.RespiratoryRate, v.OxygenSaturation, v.Weight, v.Height, v.CreatedAt,
	)
	return err
}

func (r *RecordRepoPG) ListVitalSigns(ctx context.Context, recordID uuid.UUID) ([]*VitalSigns, error) {
	q := fmt.Sprintf("SELECT %s FROM vital_signs WHERE medical_record_id = $1 ORDER BY created_at", vitalsCols)
	rows, err := r.conn(ctx).Query(ctx, q, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*VitalSigns
	for rows.Next() {
		var v VitalSigns
		if err := rows.Scan(
			&v.ID, &v.MedicalRecordID, &v.PatientID, &v.BodyTemperature, &v.HeartRate,
			&v.SystolicBP, &v.DiastolicBP, &v.RespiratoryRate, &v.OxygenSaturation, &v.Weight, &v.Height, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &v)
	}
	return items, nil
}

const diagnosisCols = `id, medical_record_id, patient_id, doctor_id, symptoms, diagnosis,
	diagnosis_code, notes, prescribed_medications, follow_up_plan, severity, created_at`

func (r *RecordRepoPG) AddDiagnosis(ctx context.Context, d *Diagnosis) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	q := fmt.Sprintf(`INSERT INTO diagnoses (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, diagnosisCols)
	_, err := r.conn(ctx).Exec(ctx, q,
		d.ID, d.MedicalRecordID, d.PatientID, d.DoctorID, d.Symptoms, d.Diagnosis,
		d.DiagnosisCode, d.Notes, d.PrescribedMedications, d.FollowUpPlan, d.Severity, d.CreatedAt,
	)
	return err
}

func (r *RecordRepoPG) ListDiagnoses(ctx context.Context, recordID uuid.UUID) ([]*Diagnosis, error) {
	q := fmt.Sprintf("SELECT %s FROM diagnoses WHERE medical_record_id = $1 ORDER BY created_at", diagnosisCols)
	rows, err := r.conn(ctx).Query(ctx, q, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Diagnosis
	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(
			&d.ID, &d.MedicalRecordID, &d.PatientID, &d.DoctorID, &d.Symptoms, &d.Diagnosis,
			&d.DiagnosisCode, &d.Notes, &d.PrescribedMedications, &d.FollowUpPlan, &d.Severity, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, nil
}

const labTestCols = `id, medical_record_id, service_id, test_date, result, status, notes, created_at`

func (r *RecordRepoPG) AddLabTest(ctx context.Context, t *LabTest) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	q := fmt.Sprintf(`INSERT INTO lab_tests (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8)`, labTestCols)
	_, err := r.conn(ctx).Exec(ctx, q,
		t.ID, t.MedicalRecordID, t.ServiceID, t.TestDate, t.Result, t.Status, t.Notes, t.CreatedAt,
	)
	return err
}

func (r *RecordRepoPG) UpdateLabTest(ctx context.Context, t *LabTest) error {
	q := `UPDATE lab_tests SET test_date = $2, result = $3, status = $4, notes = $5 WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q, t.ID, t.TestDate, t.Result, t.Status, t.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *RecordRepoPG) GetLabTest(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	q := fmt.Sprintf("SELECT %s FROM lab_tests WHERE id = $1", labTestCols)
	var t LabTest
	err := r.conn(ctx).QueryRow(ctx, q, id).Scan(
		&t.ID, &t.MedicalRecordID, &t.ServiceID, &t.TestDate, &t.Result, &t.Status, &t.Notes, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RecordRepoPG) ListLabTests(ctx context.Context, recordID uuid.UUID) ([]*LabTest, error) {
	q := fmt.Sprintf("SELECT %s FROM lab_tests WHERE medical_record_id = $1 ORDER BY created_at", labTestCols)
	rows, err := r.conn(ctx).Query(ctx, q, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LabTest
	for rows.Next() {
		var t LabTest
		if err := rows.Scan(
			&t.ID, &t.MedicalRecordID, &t.ServiceID, &t.TestDate, &t.Result, &t.Status, &t.Notes, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &t)
	}
	return items, nil
}
