// Package timeline flattens a patient's heterogeneous medical history
// (consultations, prescriptions, radiology results, operations) into one
// chronological list of display entries.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-server/internal/clinic"
	"github.com/clinicore/clinic-server/internal/pharmacy"
)

type Kind string

const (
	KindConsultation Kind = "consultation"
	KindPrescription Kind = "prescription"
	KindRadio        Kind = "radio"
	KindOperation    Kind = "operation"
)

// Entry is a view projection of one clinical event. It is computed per
// request and never persisted.
type Entry struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SourceRef   string    `json:"source_ref"`
}

// HistoryStore provides the patient-side records the builder reads.
type HistoryStore interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*clinic.Patient, error)
	FindPatientHistory(ctx context.Context, patientID uuid.UUID) ([]clinic.AppointmentRecord, error)
	GetPatientMedicalRecord(ctx context.Context, patientID uuid.UUID) (*clinic.MedicalRecord, error)
}

// PrescriptionStore resolves prescription references found on appointments.
type PrescriptionStore interface {
	GetPrescriptionWithLines(ctx context.Context, id uuid.UUID) (*pharmacy.Prescription, error)
}

type Builder struct {
	history       HistoryStore
	prescriptions PrescriptionStore
	log           zerolog.Logger
}

func NewBuilder(history HistoryStore, prescriptions PrescriptionStore, log zerolog.Logger) *Builder {
	return &Builder{
		history:       history,
		prescriptions: prescriptions,
		log:           log,
	}
}

// Build assembles the full timeline for a patient, sorted by date descending
// with source order preserved on ties. A corrupt embedded report array on one
// appointment is logged and skipped; it never aborts the aggregation.
func (b *Builder) Build(ctx context.Context, patientID uuid.UUID) ([]Entry, error) {
	if _, err := b.history.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, clinic.ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	records, err := b.history.FindPatientHistory(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load patient history: %w", err)
	}

	var entries []Entry
	for _, rec := range records {
		entries = append(entries, b.appointmentEntries(ctx, rec)...)
	}

	medRecord, err := b.history.GetPatientMedicalRecord(ctx, patientID)
	if err != nil && !errors.Is(err, clinic.ErrMedicalRecordNotFound) {
		return nil, fmt.Errorf("load medical record: %w", err)
	}
	if medRecord != nil {
		entries = append(entries, medicalRecordEntries(medRecord)...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	return entries, nil
}

func (b *Builder) appointmentEntries(ctx context.Context, rec clinic.AppointmentRecord) []Entry {
	var entries []Entry

	if summary := consultationSummary(rec); summary != nil {
		entries = append(entries, *summary)
	}

	reports, err := clinic.ParseConsultationReports(rec.Reports)
	if err != nil {
		b.log.Warn().Err(err).
			Str("appointment_id", rec.ID.String()).
			Msg("skipping malformed consultation reports")
	}
	for i, report := range reports {
		date := report.ParsedDate()
		if date.IsZero() {
			date = rec.Date
		}
		title := report.Title
		if title == "" {
			title = "Compte rendu de consultation"
		}
		entries = append(entries, Entry{
			ID:          fmt.Sprintf("consultation-%s-%d", rec.ID, i+1),
			Kind:        KindConsultation,
			Date:        date,
			Title:       title,
			Description: report.Notes,
			SourceRef:   "appointment:" + rec.ID.String(),
		})
	}

	if rec.PrescriptionID != nil {
		entry, err := b.prescriptionEntry(ctx, rec)
		if err != nil {
			b.log.Warn().Err(err).
				Str("appointment_id", rec.ID.String()).
				Str("prescription_id", rec.PrescriptionID.String()).
				Msg("skipping unresolvable prescription reference")
		} else if entry != nil {
			entries = append(entries, *entry)
		}
	}

	for _, radio := range rec.Radios {
		entries = append(entries, radioEntry(radio, rec.Date))
	}
	for _, op := range rec.Operations {
		entries = append(entries, operationEntry(op, rec.Date))
	}

	return entries
}

func consultationSummary(rec clinic.AppointmentRecord) *Entry {
	if rec.Diagnosis == "" && rec.ConsultationNotes == "" {
		return nil
	}

	title := "Consultation"
	if rec.Doctor != nil {
		title = "Consultation - Dr " + rec.Doctor.Name
	}

	var parts []string
	if rec.Diagnosis != "" {
		parts = append(parts, rec.Diagnosis)
	}
	if rec.ConsultationNotes != "" {
		parts = append(parts, rec.ConsultationNotes)
	}

	return &Entry{
		ID:          "consultation-" + rec.ID.String(),
		Kind:        KindConsultation,
		Date:        rec.Date,
		Title:       title,
		Description: strings.Join(parts, " — "),
		SourceRef:   "appointment:" + rec.ID.String(),
	}
}

func (b *Builder) prescriptionEntry(ctx context.Context, rec clinic.AppointmentRecord) (*Entry, error) {
	presc, err := b.prescriptions.GetPrescriptionWithLines(ctx, *rec.PrescriptionID)
	if err != nil {
		return nil, err
	}

	return &Entry{
		ID:          "prescription-" + presc.ID.String(),
		Kind:        KindPrescription,
		Date:        rec.Date,
		Title:       "Ordonnance",
		Description: describeMedications(presc.Lines),
		SourceRef:   "prescription:" + presc.ID.String(),
	}, nil
}

// describeMedications renders one prescription as a single display string,
// one segment per medication.
func describeMedications(lines []pharmacy.PrescriptionLine) string {
	segments := make([]string, 0, len(lines))
	for _, line := range lines {
		name := line.MedicationName
		if name == "" {
			name = "Médicament"
		}
		segments = append(segments, fmt.Sprintf("%s - %s %s pendant %s", name, line.Dosage, line.Frequency, line.Duration))
	}
	return strings.Join(segments, "; ")
}

func radioEntry(radio clinic.RadioResult, fallback time.Time) Entry {
	date := fallback
	if radio.Date != nil {
		date = *radio.Date
	}
	return Entry{
		ID:          "radio-" + radio.ID.String(),
		Kind:        KindRadio,
		Date:        date,
		Title:       radio.Exam,
		Description: radio.Result,
		SourceRef:   "radio:" + radio.ID.String(),
	}
}

func operationEntry(op clinic.Operation, fallback time.Time) Entry {
	date := fallback
	if op.Date != nil {
		date = *op.Date
	}
	return Entry{
		ID:          "operation-" + op.ID.String(),
		Kind:        KindOperation,
		Date:        date,
		Title:       op.Name,
		Description: op.Notes,
		SourceRef:   "operation:" + op.ID.String(),
	}
}

func medicalRecordEntries(rec *clinic.MedicalRecord) []Entry {
	var entries []Entry
	for _, radio := range rec.Radios {
		entries = append(entries, radioEntry(radio, rec.CreatedAt))
	}
	for _, op := range rec.Operations {
		entries = append(entries, operationEntry(op, rec.CreatedAt))
	}
	return entries
}
