package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-server/internal/billing"
	"github.com/clinicore/clinic-server/internal/clinic"
	"github.com/clinicore/clinic-server/internal/facility"
	"github.com/clinicore/clinic-server/internal/pharmacy"
	"github.com/clinicore/clinic-server/internal/staff"
)

const dateLayout = "2006-01-02"

// Appointments

type BookAppointmentRequest struct {
	DoctorID        string `json:"doctor_id" validate:"required,uuid"`
	PatientID       string `json:"patient_id" validate:"required,uuid"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1"`
	Reason          string `json:"reason" validate:"max=500"`
}

type RescheduleRequest struct {
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress completed cancelled no_show"`
}

type RecordConsultationRequest struct {
	Diagnosis      string          `json:"diagnosis" validate:"max=2000"`
	Notes          string          `json:"notes" validate:"max=10000"`
	Reports        json.RawMessage `json:"reports,omitempty"`
	PrescriptionID *string         `json:"prescription_id,omitempty" validate:"omitempty,uuid"`
}

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	DoctorID        uuid.UUID  `json:"doctor_id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	Reason          string     `json:"reason,omitempty"`
	Diagnosis       string     `json:"diagnosis,omitempty"`
	PrescriptionID  *uuid.UUID `json:"prescription_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toAppointmentResponse(a *clinic.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		Date:            a.Date.Format(dateLayout),
		Time:            a.Time,
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		Reason:          a.Reason,
		Diagnosis:       a.Diagnosis,
		PrescriptionID:  a.PrescriptionID,
		CreatedAt:       a.CreatedAt,
	}
}

type AvailabilityResponse struct {
	Available                bool       `json:"available"`
	ConflictingAppointmentID *uuid.UUID `json:"conflicting_appointment_id,omitempty"`
}

// Patients

type CreatePatientRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type PatientResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	DateOfBirth *string   `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPatientResponse(p *clinic.Patient) PatientResponse {
	resp := PatientResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
	}
	if p.DateOfBirth != nil {
		dob := p.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &dob
	}
	return resp
}

type DoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty *string   `json:"specialty,omitempty"`
}

// Pharmacy

type PrescriptionLineRequest struct {
	MedicationID   *string `json:"medication_id,omitempty" validate:"omitempty,uuid"`
	MedicationName string  `json:"medication_name" validate:"max=200"`
	Dosage         string  `json:"dosage" validate:"max=100"`
	Frequency      string  `json:"frequency" validate:"max=100"`
	Duration       string  `json:"duration" validate:"max=100"`
	Quantity       int     `json:"quantity" validate:"min=0"`
}

type CreatePrescriptionRequest struct {
	PatientID string                    `json:"patient_id" validate:"required,uuid"`
	DoctorID  string                    `json:"doctor_id" validate:"required,uuid"`
	Lines     []PrescriptionLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type PrescriptionLineResponse struct {
	ID             uuid.UUID  `json:"id"`
	MedicationID   *uuid.UUID `json:"medication_id,omitempty"`
	MedicationName string     `json:"medication_name"`
	Dosage         string     `json:"dosage,omitempty"`
	Frequency      string     `json:"frequency,omitempty"`
	Duration       string     `json:"duration,omitempty"`
	Quantity       int        `json:"quantity"`
}

type PrescriptionResponse struct {
	ID          uuid.UUID                  `json:"id"`
	PatientID   uuid.UUID                  `json:"patient_id"`
	DoctorID    uuid.UUID                  `json:"doctor_id"`
	Status      string                     `json:"status"`
	Lines       []PrescriptionLineResponse `json:"lines"`
	CreatedAt   time.Time                  `json:"created_at"`
	DispensedAt *time.Time                 `json:"dispensed_at,omitempty"`
}

func toPrescriptionResponse(p *pharmacy.Prescription) PrescriptionResponse {
	lines := make([]PrescriptionLineResponse, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = PrescriptionLineResponse{
			ID:             l.ID,
			MedicationID:   l.MedicationID,
			MedicationName: l.MedicationName,
			Dosage:         l.Dosage,
			Frequency:      l.Frequency,
			Duration:       l.Duration,
			Quantity:       l.Quantity,
		}
	}
	return PrescriptionResponse{
		ID:          p.ID,
		PatientID:   p.PatientID,
		DoctorID:    p.DoctorID,
		Status:      string(p.Status),
		Lines:       lines,
		CreatedAt:   p.CreatedAt,
		DispensedAt: p.DispensedAt,
	}
}

type CreateMedicationRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Form     string `json:"form" validate:"max=50"`
	Strength string `json:"strength" validate:"max=50"`
}

type MedicationResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Form     string    `json:"form,omitempty"`
	Strength string    `json:"strength,omitempty"`
}

type ReceiveStockRequest struct {
	MedicationID string `json:"medication_id" validate:"required,uuid"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	ExpiresAt    string `json:"expires_at" validate:"required,datetime=2006-01-02"`
}

type StockBatchResponse struct {
	ID           uuid.UUID `json:"id"`
	MedicationID uuid.UUID `json:"medication_id"`
	Quantity     int       `json:"quantity"`
	ExpiresAt    string    `json:"expires_at"`
	ReceivedAt   time.Time `json:"received_at"`
}

type StockLevelResponse struct {
	MedicationID uuid.UUID `json:"medication_id"`
	Name         string    `json:"name"`
	Form         string    `json:"form,omitempty"`
	Strength     string    `json:"strength,omitempty"`
	Quantity     int       `json:"quantity"`
}

// Billing

type InvoiceLineRequest struct {
	Description    string `json:"description" validate:"required,max=300"`
	Quantity       int    `json:"quantity" validate:"min=1"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"min=0"`
}

type CreateInvoiceRequest struct {
	PatientID     string               `json:"patient_id" validate:"required,uuid"`
	AppointmentID *string              `json:"appointment_id,omitempty" validate:"omitempty,uuid"`
	Lines         []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type InvoiceLineResponse struct {
	ID             uuid.UUID `json:"id"`
	Description    string    `json:"description"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	TotalCents     int64     `json:"total_cents"`
}

type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	PatientID     uuid.UUID             `json:"patient_id"`
	AppointmentID *uuid.UUID            `json:"appointment_id,omitempty"`
	Status        string                `json:"status"`
	Lines         []InvoiceLineResponse `json:"lines,omitempty"`
	TotalCents    int64                 `json:"total_cents"`
	CreatedAt     time.Time             `json:"created_at"`
	IssuedAt      *time.Time            `json:"issued_at,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
}

func toInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			ID:             l.ID,
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     l.TotalCents(),
		}
	}
	return InvoiceResponse{
		ID:            inv.ID,
		PatientID:     inv.PatientID,
		AppointmentID: inv.AppointmentID,
		Status:        string(inv.Status),
		Lines:         lines,
		TotalCents:    inv.TotalCents,
		CreatedAt:     inv.CreatedAt,
		IssuedAt:      inv.IssuedAt,
		PaidAt:        inv.PaidAt,
	}
}

// Facility

type CreateFloorRequest struct {
	Label string `json:"label" validate:"required,max=100"`
	Level int    `json:"level"`
}

type CreateBlocRequest struct {
	FloorID string `json:"floor_id" validate:"required,uuid"`
	Label   string `json:"label" validate:"required,max=100"`
}

type CreateRoomRequest struct {
	BlocID   string `json:"bloc_id" validate:"required,uuid"`
	Number   string `json:"number" validate:"required,max=20"`
	Capacity int    `json:"capacity" validate:"min=1"`
}

type SetOccupancyRequest struct {
	Occupied bool `json:"occupied"`
}

type FloorResponse struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	Level int       `json:"level"`
}

type BlocResponse struct {
	ID      uuid.UUID `json:"id"`
	FloorID uuid.UUID `json:"floor_id"`
	Label   string    `json:"label"`
}

type RoomResponse struct {
	ID       uuid.UUID `json:"id"`
	BlocID   uuid.UUID `json:"bloc_id"`
	Number   string    `json:"number"`
	Capacity int       `json:"capacity"`
	Occupied bool      `json:"occupied"`
}

func toRoomResponse(room *facility.Room) RoomResponse {
	return RoomResponse{
		ID:       room.ID,
		BlocID:   room.BlocID,
		Number:   room.Number,
		Capacity: room.Capacity,
		Occupied: room.Occupied,
	}
}

// Staff

type CreateStaffRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Role  string  `json:"role" validate:"required,oneof=nurse receptionist technician admin"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

type StaffResponse struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	Role    string     `json:"role"`
	Phone   *string    `json:"phone,omitempty"`
	Active  bool       `json:"active"`
	HiredAt time.Time  `json:"hired_at"`
	LeftAt  *time.Time `json:"left_at,omitempty"`
}

func toStaffResponse(m *staff.Member) StaffResponse {
	return StaffResponse{
		ID:      m.ID,
		Name:    m.Name,
		Role:    string(m.Role),
		Phone:   m.Phone,
		Active:  m.Active,
		HiredAt: m.HiredAt,
		LeftAt:  m.LeftAt,
	}
}
