package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakeRepo struct {
	invoices map[uuid.UUID]*Invoice
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{invoices: make(map[uuid.UUID]*Invoice)}
}

func (r *fakeRepo) CreateInvoice(_ context.Context, inv *Invoice) error {
	cp := *inv
	cp.Lines = append([]InvoiceLine(nil), inv.Lines...)
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeRepo) GetInvoiceWithLines(_ context.Context, id uuid.UUID) (*Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	cp := *inv
	cp.Lines = append([]InvoiceLine(nil), inv.Lines...)
	return &cp, nil
}

func (r *fakeRepo) ListInvoicesByPatient(_ context.Context, patientID uuid.UUID) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if inv.PatientID == patientID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateInvoiceStatus(_ context.Context, id uuid.UUID, from, to InvoiceStatus, stampedAt time.Time) (*Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.Status != from {
		return nil, ErrInvoiceNotFound
	}
	inv.Status = to
	switch to {
	case InvoiceIssued:
		inv.IssuedAt = &stampedAt
	case InvoicePaid:
		inv.PaidAt = &stampedAt
	}
	cp := *inv
	return &cp, nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, zerolog.Nop())
}

func draftInvoice(t *testing.T, repo *fakeRepo, svc *Service) *Invoice {
	t.Helper()
	inv := &Invoice{
		PatientID: uuid.New(),
		Lines: []InvoiceLine{
			{Description: "Consultation générale", Quantity: 1, UnitPriceCents: 3000},
		},
	}
	if err := svc.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return inv
}

func TestCreateInvoice_RecomputesTotal(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	inv := &Invoice{
		PatientID:  uuid.New(),
		TotalCents: 1, // client-supplied, must be ignored
		Lines: []InvoiceLine{
			{Description: "Consultation", Quantity: 1, UnitPriceCents: 3000},
			{Description: "Pansement", Quantity: 3, UnitPriceCents: 250},
			{Description: "Forfait", Quantity: 0, UnitPriceCents: 500}, // clamped to 1
		},
	}
	if err := svc.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Status != InvoiceDraft {
		t.Errorf("expected status draft, got %s", inv.Status)
	}
	if want := int64(3000 + 750 + 500); inv.TotalCents != want {
		t.Errorf("expected total %d, got %d", want, inv.TotalCents)
	}

	if err := svc.CreateInvoice(context.Background(), &Invoice{PatientID: uuid.New()}); !errors.Is(err, ErrInvoiceNoLines) {
		t.Fatalf("expected ErrInvoiceNoLines, got %v", err)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	inv := draftInvoice(t, repo, svc)

	issued, err := svc.Issue(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.Status != InvoiceIssued || issued.IssuedAt == nil {
		t.Errorf("expected issued invoice with timestamp, got %+v", issued)
	}

	paid, err := svc.MarkPaid(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != InvoicePaid || paid.PaidAt == nil {
		t.Errorf("expected paid invoice with timestamp, got %+v", paid)
	}
}

func TestInvoiceTransitions_ForwardOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	// Draft cannot be paid before being issued.
	inv := draftInvoice(t, repo, svc)
	if _, err := svc.MarkPaid(context.Background(), inv.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for draft -> paid, got %v", err)
	}

	// Paid is terminal.
	if _, err := svc.Issue(context.Background(), inv.ID); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.MarkPaid(context.Background(), inv.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), inv.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for paid -> cancelled, got %v", err)
	}

	// Cancelled is terminal too.
	inv2 := draftInvoice(t, repo, svc)
	if _, err := svc.Cancel(context.Background(), inv2.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Issue(context.Background(), inv2.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for cancelled -> issued, got %v", err)
	}
}

func TestInvoiceTransition_UnknownInvoice(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	if _, err := svc.Issue(context.Background(), uuid.New()); !errors.Is(err, ErrInvoiceNotFound) {
		t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
	}
}
