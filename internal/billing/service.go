package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrInvoiceNoLines    = errors.New("invoice has no lines")
	ErrInvalidTransition = errors.New("invalid invoice status transition")
)

type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoiceWithLines(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoicesByPatient(ctx context.Context, patientID uuid.UUID) ([]Invoice, error)
	// UpdateInvoiceStatus is a compare-and-set on the current status.
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, from, to InvoiceStatus, stampedAt time.Time) (*Invoice, error)
}

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

// CreateInvoice stores a draft invoice. The total is always recomputed from
// the lines server-side; any client-supplied total is ignored.
func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if len(inv.Lines) == 0 {
		return ErrInvoiceNoLines
	}

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.Status = InvoiceDraft
	inv.CreatedAt = time.Now()

	var total int64
	for i := range inv.Lines {
		if inv.Lines[i].ID == uuid.Nil {
			inv.Lines[i].ID = uuid.New()
		}
		if inv.Lines[i].Quantity <= 0 {
			inv.Lines[i].Quantity = 1
		}
		total += inv.Lines[i].TotalCents()
	}
	inv.TotalCents = total

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Invoice, error) {
	invs, err := s.repo.ListInvoicesByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invs, nil
}

func canTransition(from, to InvoiceStatus) bool {
	switch from {
	case InvoiceDraft:
		return to == InvoiceIssued || to == InvoiceCancelled
	case InvoiceIssued:
		return to == InvoicePaid || to == InvoiceCancelled
	}
	return false
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to InvoiceStatus) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceWithLines(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canTransition(inv.Status, to) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateInvoiceStatus(ctx, id, inv.Status, to, time.Now())
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("update invoice status: %w", err)
	}
	return updated, nil
}

func (s *Service) Issue(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, id, InvoiceIssued)
}

func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, id, InvoicePaid)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, id, InvoiceCancelled)
}
