package billing

import (
	"context"
	"errors"
	"fmt"
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

func (r *PgRepository) CreateInvoice(ctx context.Context, inv *Invoice) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (id, patient_id, appointment_id, status, total_cents, created_at, issued_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, inv.ID, inv.PatientID, inv.AppointmentID, inv.Status, inv.TotalCents, inv.CreatedAt, inv.IssuedAt, inv.PaidAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	for _, line := range inv.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_lines (id, invoice_id, description, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5)
		`, line.ID, inv.ID, line.Description, line.Quantity, line.UnitPriceCents)
		if err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID,
		&inv.PatientID,
		&inv.AppointmentID,
		&inv.Status,
		&inv.TotalCents,
		&inv.CreatedAt,
		&inv.IssuedAt,
		&inv.PaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PgRepository) GetInvoiceWithLines(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `
		SELECT id, patient_id, appointment_id, status, total_cents, created_at, issued_at, paid_at
		FROM invoices
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, description, quantity, unit_price_cents
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line InvoiceLine
		if err := rows.Scan(&line.ID, &line.Description, &line.Quantity, &line.UnitPriceCents); err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, line)
	}

	return inv, rows.Err()
}

func (r *PgRepository) ListInvoicesByPatient(ctx context.Context, patientID uuid.UUID) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, appointment_id, status, total_cents, created_at, issued_at, paid_at
		FROM invoices
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *inv)
	}

	return result, rows.Err()
}

func (r *PgRepository) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, from, to InvoiceStatus, stampedAt time.Time) (*Invoice, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
		SET status = $2,
		    issued_at = CASE WHEN $2 = 'issued' THEN $4 ELSE issued_at END,
		    paid_at   = CASE WHEN $2 = 'paid'   THEN $4 ELSE paid_at   END
		WHERE id = $1
		  AND status = $3
	`, id, to, from, stampedAt)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrInvoiceNotFound
	}

	return r.GetInvoiceWithLines(ctx, id)
}
