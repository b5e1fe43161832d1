package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBookAppointment(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	patientID := seedPatient(repo)
	svc := newTestService(repo)

	appt, err := svc.BookAppointment(context.Background(), BookingParams{
		DoctorID:        doctorID,
		PatientID:       patientID,
		Date:            testDay,
		Time:            "10:00",
		DurationMinutes: 30,
		Reason:          "contrôle annuel",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != StatusScheduled {
		t.Errorf("expected status scheduled, got %s", appt.Status)
	}
	if !appt.Date.Equal(testDay) {
		t.Errorf("expected date truncated to %s, got %s", testDay, appt.Date)
	}
	if _, ok := repo.appointments[appt.ID]; !ok {
		t.Error("appointment was not persisted")
	}
}

func TestBookAppointment_SlotConflict(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	patientID := seedPatient(repo)
	existing := seedAppointment(t, repo, doctorID, testDay, "10:00", 30, StatusScheduled)
	svc := newTestService(repo)

	_, err := svc.BookAppointment(context.Background(), BookingParams{
		DoctorID:        doctorID,
		PatientID:       patientID,
		Date:            testDay,
		Time:            "10:15",
		DurationMinutes: 30,
	})
	if !errors.Is(err, ErrDoctorUnavailable) {
		t.Fatalf("expected ErrDoctorUnavailable, got %v", err)
	}

	var conflict *SlotConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SlotConflictError, got %T", err)
	}
	if conflict.ConflictingAppointmentID != existing {
		t.Errorf("expected conflicting id %s, got %s", existing, conflict.ConflictingAppointmentID)
	}
}

func TestBookAppointment_UnknownPatient(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	svc := newTestService(repo)

	_, err := svc.BookAppointment(context.Background(), BookingParams{
		DoctorID:        doctorID,
		PatientID:       uuid.New(),
		Date:            testDay,
		Time:            "10:00",
		DurationMinutes: 30,
	})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestReschedule(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	id := seedAppointment(t, repo, doctorID, testDay, "10:00", 30, StatusScheduled)
	svc := newTestService(repo)

	// Keeping the same slot never conflicts with itself.
	appt, err := svc.Reschedule(context.Background(), id, testDay, "10:00", 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.DurationMinutes != 45 {
		t.Errorf("expected duration 45, got %d", appt.DurationMinutes)
	}

	// Moving onto another appointment's slot conflicts.
	seedAppointment(t, repo, doctorID, testDay, "14:00", 30, StatusScheduled)
	_, err = svc.Reschedule(context.Background(), id, testDay, "14:15", 30)
	if !errors.Is(err, ErrDoctorUnavailable) {
		t.Fatalf("expected ErrDoctorUnavailable, got %v", err)
	}
}

func TestReschedule_OnlyScheduled(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	id := seedAppointment(t, repo, doctorID, testDay, "10:00", 30, StatusCompleted)
	svc := newTestService(repo)

	_, err := svc.Reschedule(context.Background(), id, testDay, "11:00", 30)
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	cases := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{StatusScheduled, StatusInProgress, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusScheduled, false},
		{StatusCompleted, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusScheduled, false},
	}

	for _, tc := range cases {
		repo := newFakeRepo()
		doctorID := seedDoctor(repo)
		id := seedAppointment(t, repo, doctorID, testDay, "10:00", 30, tc.from)
		svc := newTestService(repo)

		appt, err := svc.UpdateStatus(context.Background(), id, tc.to)
		if tc.allowed {
			if err != nil {
				t.Errorf("%s -> %s: unexpected error: %v", tc.from, tc.to, err)
				continue
			}
			if appt.Status != tc.to {
				t.Errorf("%s -> %s: status is %s", tc.from, tc.to, appt.Status)
			}
		} else if !errors.Is(err, ErrInvalidStatusTransition) {
			t.Errorf("%s -> %s: expected ErrInvalidStatusTransition, got %v", tc.from, tc.to, err)
		}
	}
}

func TestUpdateStatus_LostRace(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	id := seedAppointment(t, repo, doctorID, testDay, "10:00", 30, StatusScheduled)
	svc := newTestService(repo)

	// The row moves on between the read and the compare-and-set.
	repo.appointments[id].Status = StatusCancelled

	_, err := svc.UpdateStatus(context.Background(), id, StatusInProgress)
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition on lost race, got %v", err)
	}
}

func TestRecordConsultation(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	id := seedAppointment(t, repo, doctorID, testDay, "10:00", 30, StatusInProgress)
	svc := newTestService(repo)

	reports := json.RawMessage(`[{"title":"Compte rendu","notes":"RAS","date":"2024-06-01"}]`)
	prescID := uuid.New()

	appt, err := svc.RecordConsultation(context.Background(), id, "angine", "repos conseillé", reports, &prescID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Diagnosis != "angine" {
		t.Errorf("diagnosis not saved, got %q", appt.Diagnosis)
	}
	if appt.PrescriptionID == nil || *appt.PrescriptionID != prescID {
		t.Error("prescription reference not saved")
	}
}

func TestRecordConsultation_RejectsMalformedReports(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	id := seedAppointment(t, repo, doctorID, testDay, "10:00", 30, StatusInProgress)
	svc := newTestService(repo)

	_, err := svc.RecordConsultation(context.Background(), id, "angine", "", json.RawMessage(`{"not":"an array"`), nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRecordConsultation_WrongStatus(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	id := seedAppointment(t, repo, doctorID, testDay, "10:00", 30, StatusScheduled)
	svc := newTestService(repo)

	_, err := svc.RecordConsultation(context.Background(), id, "angine", "", nil, nil)
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestExpireNoShows(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)

	longAgo := time.Now().AddDate(0, 0, -7)
	overdue1 := seedAppointment(t, repo, doctorID, longAgo, "09:00", 30, StatusScheduled)
	overdue2 := seedAppointment(t, repo, doctorID, longAgo, "11:00", 30, StatusScheduled)
	completed := seedAppointment(t, repo, doctorID, longAgo, "14:00", 30, StatusCompleted)
	upcoming := seedAppointment(t, repo, doctorID, time.Now().AddDate(0, 0, 7), "09:00", 30, StatusScheduled)

	svc := newTestService(repo)

	marked, err := svc.ExpireNoShows(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 2 {
		t.Errorf("expected 2 appointments marked, got %d", marked)
	}
	if repo.appointments[overdue1].Status != StatusNoShow {
		t.Error("overdue appointment not marked no_show")
	}
	if repo.appointments[overdue2].Status != StatusNoShow {
		t.Error("overdue appointment not marked no_show")
	}
	if repo.appointments[completed].Status != StatusCompleted {
		t.Error("completed appointment must not change")
	}
	if repo.appointments[upcoming].Status != StatusScheduled {
		t.Error("upcoming appointment must stay scheduled")
	}
}

func TestRegisterPatient(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p := &Patient{Name: "Lina Saidi"}
	if err := svc.RegisterPatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected an id to be assigned")
	}
	if _, ok := repo.patients[p.ID]; !ok {
		t.Error("patient was not persisted")
	}

	err := svc.RegisterPatient(context.Background(), &Patient{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty name, got %v", err)
	}
}
