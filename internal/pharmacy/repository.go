package pharmacy

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrMedicationNotFound   = errors.New("medication not found")
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrBatchNotFound        = errors.New("stock batch not found")
)

// BatchDeduction is one planned decrement against a stock batch.
type BatchDeduction struct {
	BatchID  uuid.UUID
	Quantity int
}

type Repository interface {
	GetMedicationByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	CreateMedication(ctx context.Context, m *Medication) error

	CreatePrescription(ctx context.Context, p *Prescription) error
	GetPrescriptionWithLines(ctx context.Context, id uuid.UUID) (*Prescription, error)
	// DispensePrescription flips a pending prescription to dispensed and
	// decrements the planned batches in the same transaction. A failure
	// anywhere rolls back both, so a retry never deducts twice.
	DispensePrescription(ctx context.Context, id uuid.UUID, deductions []BatchDeduction) (*Prescription, error)

	AddStockBatch(ctx context.Context, b *StockBatch) error
	// FindBatchesByMedication returns non-empty batches ordered by expiry,
	// earliest first.
	FindBatchesByMedication(ctx context.Context, medicationID uuid.UUID) ([]StockBatch, error)
	ListStockLevels(ctx context.Context) ([]StockLevel, error)
}
