package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInsufficientStock   = errors.New("insufficient stock for prescription")
	ErrAlreadyDispensed    = errors.New("prescription already dispensed")
	ErrPrescriptionNotOpen = errors.New("prescription is not pending")
	ErrPrescriptionNoLines = errors.New("prescription has no medication lines")
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

func (s *Service) CreateMedication(ctx context.Context, name, form, strength string) (*Medication, error) {
	if name == "" {
		return nil, fmt.Errorf("medication name is required")
	}

	m := &Medication{
		ID:       uuid.New(),
		Name:     name,
		Form:     form,
		Strength: strength,
	}
	if err := s.repo.CreateMedication(ctx, m); err != nil {
		return nil, fmt.Errorf("create medication: %w", err)
	}
	return m, nil
}

func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) error {
	if len(p.Lines) == 0 {
		return ErrPrescriptionNoLines
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Status = PrescriptionPending
	p.CreatedAt = time.Now()

	for i := range p.Lines {
		if p.Lines[i].ID == uuid.Nil {
			p.Lines[i].ID = uuid.New()
		}
		if p.Lines[i].Quantity < 0 {
			p.Lines[i].Quantity = 0
		}
	}

	if err := s.repo.CreatePrescription(ctx, p); err != nil {
		return fmt.Errorf("create prescription: %w", err)
	}
	return nil
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.repo.GetPrescriptionWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Dispense hands out every catalog-backed line of a pending prescription,
// consuming stock batches earliest-expiry-first. Either the whole
// prescription is dispensable or nothing is deducted.
func (s *Service) Dispense(ctx context.Context, prescriptionID uuid.UUID) (*Prescription, error) {
	presc, err := s.repo.GetPrescriptionWithLines(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	if presc.Status == PrescriptionDispensed {
		return nil, ErrAlreadyDispensed
	}
	if presc.Status != PrescriptionPending {
		return nil, ErrPrescriptionNotOpen
	}

	var plan []BatchDeduction
	for _, line := range presc.Lines {
		if line.MedicationID == nil || line.Quantity == 0 {
			continue
		}

		batches, err := s.repo.FindBatchesByMedication(ctx, *line.MedicationID)
		if err != nil {
			return nil, fmt.Errorf("load stock batches: %w", err)
		}

		deductions, err := planDeductions(batches, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("medication %s: %w", line.MedicationName, err)
		}
		plan = append(plan, deductions...)
	}

	updated, err := s.repo.DispensePrescription(ctx, prescriptionID, plan)
	if err != nil {
		if errors.Is(err, ErrPrescriptionNotFound) {
			// Lost the race to a concurrent dispense.
			return nil, ErrAlreadyDispensed
		}
		return nil, fmt.Errorf("dispense prescription: %w", err)
	}

	s.log.Info().
		Str("prescription_id", prescriptionID.String()).
		Int("deductions", len(plan)).
		Msg("prescription dispensed")

	return updated, nil
}

// planDeductions allocates the wanted quantity across batches in the order
// given (earliest expiry first).
func planDeductions(batches []StockBatch, wanted int) ([]BatchDeduction, error) {
	var plan []BatchDeduction
	remaining := wanted

	for _, batch := range batches {
		if remaining == 0 {
			break
		}
		if batch.Quantity <= 0 {
			continue
		}

		take := batch.Quantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, BatchDeduction{BatchID: batch.ID, Quantity: take})
		remaining -= take
	}

	if remaining > 0 {
		return nil, ErrInsufficientStock
	}
	return plan, nil
}

func (s *Service) ReceiveStock(ctx context.Context, medicationID uuid.UUID, quantity int, expiresAt time.Time) (*StockBatch, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	if _, err := s.repo.GetMedicationByID(ctx, medicationID); err != nil {
		return nil, err
	}

	batch := &StockBatch{
		ID:           uuid.New(),
		MedicationID: medicationID,
		Quantity:     quantity,
		ExpiresAt:    expiresAt,
		ReceivedAt:   time.Now(),
	}
	if err := s.repo.AddStockBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("add stock batch: %w", err)
	}
	return batch, nil
}

// ListLowStock returns medications whose on-hand quantity is at or below the
// threshold.
func (s *Service) ListLowStock(ctx context.Context, threshold int) ([]StockLevel, error) {
	levels, err := s.repo.ListStockLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}

	var low []StockLevel
	for _, lvl := range levels {
		if lvl.Quantity <= threshold {
			low = append(low, lvl)
		}
	}
	return low, nil
}

func (s *Service) ListStock(ctx context.Context) ([]StockLevel, error) {
	levels, err := s.repo.ListStockLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	return levels, nil
}
