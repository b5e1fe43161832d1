package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Specialty,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.DateOfBirth,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

const appointmentColumns = `id, doctor_id, patient_id, date, time, duration_minutes, status,
	reason, diagnosis, consultation_notes, reports, prescription_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.Date,
		&a.Time,
		&a.DurationMinutes,
		&a.Status,
		&a.Reason,
		&a.Diagnosis,
		&a.ConsultationNotes,
		&a.Reports,
		&a.PrescriptionID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

// Interface methods

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialty, created_at, updated_at
		FROM doctors
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	return result, rows.Err()
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, date_of_birth, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, email, phone, date_of_birth, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Name, p.Email, p.Phone, p.DateOfBirth, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *PgRepository) ListPatients(ctx context.Context, limit, offset int) ([]Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, date_of_birth, created_at, updated_at
		FROM patients
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	return result, rows.Err()
}

func (r *PgRepository) FindAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.DoctorID != nil {
		conds = append(conds, "doctor_id = "+arg(*f.DoctorID))
	}
	if f.PatientID != nil {
		conds = append(conds, "patient_id = "+arg(*f.PatientID))
	}
	if f.Date != nil {
		conds = append(conds, "date = "+arg(*f.Date))
	}
	if len(f.StatusNotIn) > 0 {
		statuses := make([]string, 0, len(f.StatusNotIn))
		for _, s := range f.StatusNotIn {
			statuses = append(statuses, string(s))
		}
		conds = append(conds, "status != ALL("+arg(statuses)+")")
	}
	if f.ExcludeID != nil {
		conds = append(conds, "id != "+arg(*f.ExcludeID))
	}

	query := "SELECT " + appointmentColumns + " FROM appointments"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date, time"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments
			(id, doctor_id, patient_id, date, time, duration_minutes, status,
			 reason, diagnosis, consultation_notes, reports, prescription_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, a.ID, a.DoctorID, a.PatientID, a.Date, a.Time, a.DurationMinutes, a.Status,
		a.Reason, a.Diagnosis, a.ConsultationNotes, a.Reports, a.PrescriptionID, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET date = $2,
		    time = $3,
		    duration_minutes = $4,
		    reason = $5,
		    diagnosis = $6,
		    consultation_notes = $7,
		    reports = $8,
		    prescription_id = $9,
		    updated_at = $10
		WHERE id = $1
	`, a.ID, a.Date, a.Time, a.DurationMinutes, a.Reason,
		a.Diagnosis, a.ConsultationNotes, a.Reports, a.PrescriptionID, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) FindOverdueScheduled(ctx context.Context, cutoff time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'scheduled'
		  AND date + time::interval + duration_minutes * interval '1 minute' < $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}

func (r *PgRepository) FindPatientHistory(ctx context.Context, patientID uuid.UUID) ([]AppointmentRecord, error) {
	appts, err := r.FindAppointments(ctx, AppointmentFilter{PatientID: &patientID})
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return nil, nil
	}

	doctors := map[uuid.UUID]*Doctor{}
	records := make([]AppointmentRecord, 0, len(appts))

	for _, appt := range appts {
		rec := AppointmentRecord{Appointment: appt}

		doc, ok := doctors[appt.DoctorID]
		if !ok {
			doc, err = r.GetDoctorByID(ctx, appt.DoctorID)
			if err != nil && !errors.Is(err, ErrDoctorNotFound) {
				return nil, err
			}
			doctors[appt.DoctorID] = doc
		}
		rec.Doctor = doc

		rec.Radios, err = r.findRadios(ctx, "appointment_id = $1", appt.ID)
		if err != nil {
			return nil, err
		}
		rec.Operations, err = r.findOperations(ctx, "appointment_id = $1", appt.ID)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, nil
}

func (r *PgRepository) GetPatientMedicalRecord(ctx context.Context, patientID uuid.UUID) (*MedicalRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, blood_type, created_at, updated_at
		FROM medical_records
		WHERE patient_id = $1
	`, patientID)

	var rec MedicalRecord
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.BloodType, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMedicalRecordNotFound
		}
		return nil, err
	}

	rec.Radios, err = r.findRadios(ctx, "medical_record_id = $1 AND appointment_id IS NULL", rec.ID)
	if err != nil {
		return nil, err
	}
	rec.Operations, err = r.findOperations(ctx, "medical_record_id = $1 AND appointment_id IS NULL", rec.ID)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, severity
		FROM allergies
		WHERE medical_record_id = $1
	`, rec.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a Allergy
		if err := rows.Scan(&a.ID, &a.Name, &a.Severity); err != nil {
			return nil, err
		}
		rec.Allergies = append(rec.Allergies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	histRows, err := r.pool.Query(ctx, `
		SELECT id, condition, family, notes
		FROM medical_history
		WHERE medical_record_id = $1
	`, rec.ID)
	if err != nil {
		return nil, err
	}
	defer histRows.Close()

	for histRows.Next() {
		var h MedicalHistoryItem
		if err := histRows.Scan(&h.ID, &h.Condition, &h.Family, &h.Notes); err != nil {
			return nil, err
		}
		rec.History = append(rec.History, h)
	}

	return &rec, histRows.Err()
}

func (r *PgRepository) findRadios(ctx context.Context, where string, arg any) ([]RadioResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, appointment_id, exam, result, date
		FROM radio_results
		WHERE `+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RadioResult
	for rows.Next() {
		var radio RadioResult
		if err := rows.Scan(&radio.ID, &radio.AppointmentID, &radio.Exam, &radio.Result, &radio.Date); err != nil {
			return nil, err
		}
		result = append(result, radio)
	}

	return result, rows.Err()
}

func (r *PgRepository) findOperations(ctx context.Context, where string, arg any) ([]Operation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, appointment_id, name, notes, date
		FROM operations
		WHERE `+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Operation
	for rows.Next() {
		var op Operation
		if err := rows.Scan(&op.ID, &op.AppointmentID, &op.Name, &op.Notes, &op.Date); err != nil {
			return nil, err
		}
		result = append(result, op)
	}

	return result, rows.Err()
}
