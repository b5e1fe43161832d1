package clinic

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// IsTerminal reports whether no further status transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID          uuid.UUID
	Name        string
	Email       *string
	Phone       *string
	DateOfBirth *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Appointment stores its calendar day and its time of day separately: Date is
// midnight of the day and Time is a local "HH:MM" wall-clock string.
type Appointment struct {
	ID                uuid.UUID
	DoctorID          uuid.UUID
	PatientID         uuid.UUID
	Date              time.Time
	Time              string
	DurationMinutes   int
	Status            AppointmentStatus
	Reason            string
	Diagnosis         string
	ConsultationNotes string
	// Reports holds the embedded consultation-report array as raw JSON.
	// It is parsed lazily and fail-soft; see ParseConsultationReports.
	Reports        json.RawMessage
	PrescriptionID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RadioResult is a radiology result attached either to an appointment or
// directly to the patient's medical record.
type RadioResult struct {
	ID            uuid.UUID
	AppointmentID *uuid.UUID
	Exam          string
	Result        string
	Date          *time.Time
}

// Operation is a surgical act attached either to an appointment or directly
// to the patient's medical record.
type Operation struct {
	ID            uuid.UUID
	AppointmentID *uuid.UUID
	Name          string
	Notes         string
	Date          *time.Time
}

type Allergy struct {
	ID       uuid.UUID
	Name     string
	Severity string
}

type MedicalHistoryItem struct {
	ID        uuid.UUID
	Condition string
	// Family distinguishes family antecedents from the patient's own history.
	Family bool
	Notes  string
}

// MedicalRecord is the patient's standalone record. Radios and Operations
// carry only the entries not tied to a specific appointment.
type MedicalRecord struct {
	ID         uuid.UUID
	PatientID  uuid.UUID
	BloodType  *string
	Radios     []RadioResult
	Operations []Operation
	Allergies  []Allergy
	History    []MedicalHistoryItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AppointmentRecord is an appointment hydrated for history views.
type AppointmentRecord struct {
	Appointment
	Doctor     *Doctor
	Radios     []RadioResult
	Operations []Operation
}
