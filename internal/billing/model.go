package billing

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceIssued    InvoiceStatus = "issued"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// InvoiceLine is one billed act or article. Amounts are in cents.
type InvoiceLine struct {
	ID             uuid.UUID
	Description    string
	Quantity       int
	UnitPriceCents int64
}

func (l InvoiceLine) TotalCents() int64 {
	return int64(l.Quantity) * l.UnitPriceCents
}

type Invoice struct {
	ID            uuid.UUID
	PatientID     uuid.UUID
	AppointmentID *uuid.UUID
	Status        InvoiceStatus
	Lines         []InvoiceLine
	TotalCents    int64
	CreatedAt     time.Time
	IssuedAt      *time.Time
	PaidAt        *time.Time
}
