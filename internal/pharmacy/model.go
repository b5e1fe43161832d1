package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

type PrescriptionStatus string

const (
	PrescriptionPending   PrescriptionStatus = "pending"
	PrescriptionDispensed PrescriptionStatus = "dispensed"
	PrescriptionVoided    PrescriptionStatus = "voided"
)

type Medication struct {
	ID       uuid.UUID
	Name     string
	Form     string // tablet, syrup, injection...
	Strength string // e.g. "500mg"
}

// PrescriptionLine is one medication order. MedicationID is nil for free-text
// lines that do not reference the catalog.
type PrescriptionLine struct {
	ID             uuid.UUID
	MedicationID   *uuid.UUID
	MedicationName string
	Dosage         string
	Frequency      string
	Duration       string
	Quantity       int // units to dispense from stock
}

type Prescription struct {
	ID          uuid.UUID
	PatientID   uuid.UUID
	DoctorID    uuid.UUID
	Status      PrescriptionStatus
	Lines       []PrescriptionLine
	CreatedAt   time.Time
	DispensedAt *time.Time
}

// StockBatch is a received lot of one medication with its own expiry date.
type StockBatch struct {
	ID           uuid.UUID
	MedicationID uuid.UUID
	Quantity     int
	ExpiresAt    time.Time
	ReceivedAt   time.Time
}

// StockLevel is the aggregate on-hand quantity for one medication.
type StockLevel struct {
	Medication Medication
	Quantity   int
}
