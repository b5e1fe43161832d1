package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrDoctorUnavailable       = errors.New("doctor is not available for the requested slot")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
)

// SlotConflictError carries the appointment that blocks a booking.
type SlotConflictError struct {
	ConflictingAppointmentID uuid.UUID
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("doctor is not available: conflicts with appointment %s", e.ConflictingAppointmentID)
}

func (e *SlotConflictError) Unwrap() error { return ErrDoctorUnavailable }

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

type BookingParams struct {
	DoctorID        uuid.UUID
	PatientID       uuid.UUID
	Date            time.Time
	Time            string
	DurationMinutes int
	Reason          string
}

// BookAppointment creates a scheduled appointment after an advisory
// availability check. The check and the insert are not serialized; a
// concurrent booking racing through the same window is settled by the
// database, not here.
func (s *Service) BookAppointment(ctx context.Context, p BookingParams) (*Appointment, error) {
	if _, err := s.repo.GetPatientByID(ctx, p.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	res, err := s.CheckAvailability(ctx, p.DoctorID, p.Date, p.Time, p.DurationMinutes, nil)
	if err != nil {
		return nil, err
	}
	if !res.Available {
		return nil, &SlotConflictError{ConflictingAppointmentID: *res.ConflictingAppointmentID}
	}

	now := time.Now()
	appt := &Appointment{
		ID:              uuid.New(),
		DoctorID:        p.DoctorID,
		PatientID:       p.PatientID,
		Date:            truncateToDay(p.Date),
		Time:            p.Time,
		DurationMinutes: p.DurationMinutes,
		Status:          StatusScheduled,
		Reason:          p.Reason,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("doctor_id", p.DoctorID.String()).
		Str("patient_id", p.PatientID.String()).
		Msg("appointment booked")

	return appt, nil
}

// Reschedule moves an existing scheduled appointment, re-checking
// availability with the appointment itself excluded so that keeping the same
// slot is never reported as a conflict.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, day time.Time, clock string, durationMinutes int) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt.Status != StatusScheduled {
		return nil, ErrInvalidStatusTransition
	}

	res, err := s.CheckAvailability(ctx, appt.DoctorID, day, clock, durationMinutes, &id)
	if err != nil {
		return nil, err
	}
	if !res.Available {
		return nil, &SlotConflictError{ConflictingAppointmentID: *res.ConflictingAppointmentID}
	}

	appt.Date = truncateToDay(day)
	appt.Time = clock
	appt.DurationMinutes = durationMinutes
	appt.UpdatedAt = time.Now()

	if err := s.repo.UpdateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("save appointment: %w", err)
	}
	return appt, nil
}

// RecordConsultation attaches the clinical outcome of a visit to its
// appointment: diagnosis, notes, the embedded report array and an optional
// prescription reference.
func (s *Service) RecordConsultation(ctx context.Context, id uuid.UUID, diagnosis, notes string, reports json.RawMessage, prescriptionID *uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt.Status != StatusInProgress && appt.Status != StatusCompleted {
		return nil, ErrInvalidStatusTransition
	}

	if len(reports) > 0 {
		if _, err := ParseConsultationReports(reports); err != nil {
			return nil, &ValidationError{Field: "reports", Reason: "must be a JSON array of report objects"}
		}
	}

	appt.Diagnosis = diagnosis
	appt.ConsultationNotes = notes
	appt.Reports = reports
	appt.PrescriptionID = prescriptionID
	appt.UpdatedAt = time.Now()

	if err := s.repo.UpdateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("save consultation: %w", err)
	}
	return appt, nil
}

func canTransition(from, to AppointmentStatus) bool {
	switch from {
	case StatusScheduled:
		return to == StatusInProgress || to == StatusCancelled || to == StatusNoShow
	case StatusInProgress:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// UpdateStatus advances an appointment through its lifecycle. Terminal states
// never revert.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !canTransition(appt.Status, to) {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, appt.Status, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost the compare-and-set race; the row moved on already.
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.UpdateStatus(ctx, id, StatusCancelled)
}

// ExpireNoShows marks scheduled appointments whose slot ended more than the
// grace period ago as no_show. Intended to be called by the worker.
func (s *Service) ExpireNoShows(ctx context.Context, grace time.Duration) (int, error) {
	cutoff := time.Now().Add(-grace)

	overdue, err := s.repo.FindOverdueScheduled(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find overdue scheduled appointments: %w", err)
	}

	marked := 0
	for _, appt := range overdue {
		if _, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusScheduled, StatusNoShow); err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				continue
			}
			s.log.Error().Err(err).
				Str("appointment_id", appt.ID.String()).
				Msg("failed to mark appointment no_show")
			continue
		}
		marked++
	}

	return marked, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	appts, err := s.repo.FindAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.CreatePatient(ctx, p); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetPatientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]Patient, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	patients, err := s.repo.ListPatients(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}
