package patient

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

type PatientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepoPG(pool *pgxpool.Pool) *PatientRepoPG {
	return &PatientRepoPG{pool: pool}
}

func (r *PatientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, date_of_birth, gender, phone, email,
	marital_status, address, emergency_contact_name, emergency_contact_number, relation,
	blood_group, allergies, medical_conditions, medical_history,
	insurance_provider, insurance_number,
	privacy_consent, service_consent, medical_consent,
	img, color_code, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &p.Phone, &p.Email,
		&p.MaritalStatus, &p.Address, &p.EmergencyContactName, &p.EmergencyContactNumber, &p.Relation,
		&p.BloodGroup, &p.Allergies, &p.MedicalConditions, &p.MedicalHistory,
		&p.InsuranceProvider, &p.InsuranceNumber,
		&p.PrivacyConsent, &p.ServiceConsent, &p.MedicalConsent,
		&p.Img, &p.ColorCode, &p.CreatedAt, &p.UpdatedAt,
	)
	return &p, err
}

func (r *PatientRepoPG) Create(ctx context.Context, p *Patient) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	q := fmt.Sprintf(`INSERT INTO patients (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		 $17, $18, $19, $20, $21, $22, $23, $24, $25)`, patientCols)
	_, err := r.conn(ctx).Exec(ctx, q,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.Phone, p.Email,
		p.MaritalStatus, p.Address, p.EmergencyContactName, p.EmergencyContactNumber, p.Relation,
		p.BloodGroup, p.Allergies, p.MedicalConditions, p.MedicalHistory,
		p.InsuranceProvider, p.InsuranceNumber,
		p.PrivacyConsent, p.ServiceConsent, p.MedicalConsent,
		p.Img, p.ColorCode, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PatientRepoPG) Update(ctx context.Context, p *Patient) error {
	p.UpdatedAt = time.Now().UTC()
	q := `UPDATE patients SET
		first_name = $2, last_name = $3, date_of_birth = $4, gender = $5, phone = $6, email = $7,
		marital_status = $8, address = $9, emergency_contact_name = $10, emergency_contact_number = $11,
		relation = $12, blood_group = $13, allergies = $14, medical_conditions = $15, medical_history = $16,
		insurance_provider = $17, insurance_number = $18, img = $19, updated_at = $20
		WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.Phone, p.Email,
		p.MaritalStatus, p.Address, p.EmergencyContactName, p.EmergencyContactNumber,
		p.Relation, p.BloodGroup, p.Allergies, p.MedicalConditions, p.MedicalHistory,
		p.InsuranceProvider, p.InsuranceNumber, p.Img, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PatientRepoPG) GetByID(ctx context.Context, id string) (*Patient, error) {
	q := fmt.Sprintf("SELECT %s FROM patients WHERE id = $1", patientCols)
	return scanPatient(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *PatientRepoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	where := ""
	args := []interface{}{}
	idx := 1
	if query != "" {
		where = fmt.Sprintf(`WHERE first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d`,
			idx, idx, idx, idx)
		args = append(args, "%"+query+"%")
		idx++
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM patients %s", where)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM patients %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		patientCols, where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *PatientRepoPG) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM patients").Scan(&count)
	return count, err
}

type RatingRepoPG struct {
	pool *pgxpool.Pool
}

func NewRatingRepoPG(pool *pgxpool.Pool) *RatingRepoPG {
	return &RatingRepoPG{pool: pool}
}

func (r *RatingRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const ratingCols = `id, doctor_id, patient_id, rating, comment, created_at`

func (r *RatingRepoPG) Create(ctx context.Context, rt *Rating) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = time.Now().UTC()
	}
	q := `INSERT INTO ratings (id, doctor_id, patient_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.conn(ctx).Exec(ctx, q, rt.ID, rt.DoctorID, rt.PatientID, rt.Rating, rt.Comment, rt.CreatedAt)
	return err
}

func (r *RatingRepoPG) ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]*Rating, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM ratings WHERE doctor_id = $1", doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM ratings WHERE doctor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3", ratingCols)
	rows, err := r.conn(ctx).Query(ctx, q, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Rating
	for rows.Next() {
		var rt Rating
		if err := rows.Scan(&rt.ID, &rt.DoctorID, &rt.PatientID, &rt.Rating, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &rt)
	}
	return items, total, nil
}
