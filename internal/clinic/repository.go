package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrPatientNotFound       = errors.New("patient not found")
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrMedicalRecordNotFound = errors.New("medical record not found")
)

// AppointmentFilter narrows FindAppointments. Zero-valued fields are ignored.
type AppointmentFilter struct {
	DoctorID    *uuid.UUID
	PatientID   *uuid.UUID
	Date        *time.Time
	StatusNotIn []AppointmentStatus
	ExcludeID   *uuid.UUID
}

// Repository contains all DB interactions needed by the clinic services.
type Repository interface {
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)

	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	CreatePatient(ctx context.Context, p *Patient) error
	ListPatients(ctx context.Context, limit, offset int) ([]Patient, error)

	FindAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CreateAppointment(ctx context.Context, a *Appointment) error
	UpdateAppointment(ctx context.Context, a *Appointment) error
	// UpdateAppointmentStatus is a compare-and-set: the row is updated only
	// if it still holds the expected current status.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)
	// FindOverdueScheduled returns scheduled appointments whose end lies
	// before the cutoff instant.
	FindOverdueScheduled(ctx context.Context, cutoff time.Time) ([]Appointment, error)

	// For history views
	FindPatientHistory(ctx context.Context, patientID uuid.UUID) ([]AppointmentRecord, error)
	GetPatientMedicalRecord(ctx context.Context, patientID uuid.UUID) (*MedicalRecord, error)
}
