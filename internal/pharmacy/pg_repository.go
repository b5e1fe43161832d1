package pharmacy

import (
	"context"
	"errors"
	"fmt"

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

func (r *PgRepository) GetMedicationByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	var m Medication
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, form, strength
		FROM medications
		WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Form, &m.Strength)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMedicationNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PgRepository) CreateMedication(ctx context.Context, m *Medication) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medications (id, name, form, strength)
		VALUES ($1, $2, $3, $4)
	`, m.ID, m.Name, m.Form, m.Strength)
	if err != nil {
		return fmt.Errorf("insert medication: %w", err)
	}
	return nil
}

func (r *PgRepository) CreatePrescription(ctx context.Context, p *Prescription) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, status, created_at, dispensed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.PatientID, p.DoctorID, p.Status, p.CreatedAt, p.DispensedAt)
	if err != nil {
		return fmt.Errorf("insert prescription: %w", err)
	}

	for _, line := range p.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO prescription_lines
				(id, prescription_id, medication_id, medication_name, dosage, frequency, duration, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, line.ID, p.ID, line.MedicationID, line.MedicationName, line.Dosage, line.Frequency, line.Duration, line.Quantity)
		if err != nil {
			return fmt.Errorf("insert prescription line: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) GetPrescriptionWithLines(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	var p Prescription
	err := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, status, created_at, dispensed_at
		FROM prescriptions
		WHERE id = $1
	`, id).Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.Status, &p.CreatedAt, &p.DispensedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, medication_id, medication_name, dosage, frequency, duration, quantity
		FROM prescription_lines
		WHERE prescription_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line PrescriptionLine
		if err := rows.Scan(&line.ID, &line.MedicationID, &line.MedicationName,
			&line.Dosage, &line.Frequency, &line.Duration, &line.Quantity); err != nil {
			return nil, err
		}
		p.Lines = append(p.Lines, line)
	}

	return &p, rows.Err()
}

func (r *PgRepository) DispensePrescription(ctx context.Context, id uuid.UUID, deductions []BatchDeduction) (*Prescription, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE prescriptions
		SET status = $2,
		    dispensed_at = now()
		WHERE id = $1
		  AND status = $3
	`, id, PrescriptionDispensed, PrescriptionPending)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrPrescriptionNotFound
	}

	for _, d := range deductions {
		tag, err := tx.Exec(ctx, `
			UPDATE stock_batches
			SET quantity = quantity - $2
			WHERE id = $1
			  AND quantity >= $2
		`, d.BatchID, d.Quantity)
		if err != nil {
			return nil, fmt.Errorf("deduct batch %s: %w", d.BatchID, err)
		}
		if tag.RowsAffected() == 0 {
			var have int
			err := tx.QueryRow(ctx, `
				SELECT quantity FROM stock_batches WHERE id = $1
			`, d.BatchID).Scan(&have)
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("batch %s: %w", d.BatchID, ErrBatchNotFound)
			}
			if err != nil {
				return nil, err
			}
			// Batch drained since the plan was made; abort the whole tx.
			return nil, ErrInsufficientStock
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetPrescriptionWithLines(ctx, id)
}

func (r *PgRepository) AddStockBatch(ctx context.Context, b *StockBatch) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO stock_batches (id, medication_id, quantity, expires_at, received_at)
		VALUES ($1, $2, $3, $4, $5)
	`, b.ID, b.MedicationID, b.Quantity, b.ExpiresAt, b.ReceivedAt)
	if err != nil {
		return fmt.Errorf("insert stock batch: %w", err)
	}
	return nil
}

func (r *PgRepository) FindBatchesByMedication(ctx context.Context, medicationID uuid.UUID) ([]StockBatch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, medication_id, quantity, expires_at, received_at
		FROM stock_batches
		WHERE medication_id = $1
		  AND quantity > 0
		ORDER BY expires_at
	`, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StockBatch
	for rows.Next() {
		var b StockBatch
		if err := rows.Scan(&b.ID, &b.MedicationID, &b.Quantity, &b.ExpiresAt, &b.ReceivedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}

	return result, rows.Err()
}

func (r *PgRepository) ListStockLevels(ctx context.Context) ([]StockLevel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.name, m.form, m.strength, COALESCE(SUM(b.quantity), 0)
		FROM medications m
		LEFT JOIN stock_batches b ON b.medication_id = m.id
		GROUP BY m.id, m.name, m.form, m.strength
		ORDER BY m.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StockLevel
	for rows.Next() {
		var lvl StockLevel
		if err := rows.Scan(&lvl.Medication.ID, &lvl.Medication.Name,
			&lvl.Medication.Form, &lvl.Medication.Strength, &lvl.Quantity); err != nil {
			return nil, err
		}
		result = append(result, lvl)
	}

	return result, rows.Err()
}
