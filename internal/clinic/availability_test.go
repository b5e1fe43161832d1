package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ---------- Fake repository ----------

type fakeRepo struct {
	doctors      map[uuid.UUID]Doctor
	patients     map[uuid.UUID]Patient
	appointments map[uuid.UUID]*Appointment
	order        []uuid.UUID

	history map[uuid.UUID][]AppointmentRecord
	records map[uuid.UUID]*MedicalRecord

	// failWith, when set, is returned by every read.
	failWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		doctors:      make(map[uuid.UUID]Doctor),
		patients:     make(map[uuid.UUID]Patient),
		appointments: make(map[uuid.UUID]*Appointment),
		history:      make(map[uuid.UUID][]AppointmentRecord),
		records:      make(map[uuid.UUID]*MedicalRecord),
	}
}

func (r *fakeRepo) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (r *fakeRepo) ListDoctors(_ context.Context) ([]Doctor, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := make([]Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *fakeRepo) CreatePatient(_ context.Context, p *Patient) error {
	r.patients[p.ID] = *p
	return nil
}

func (r *fakeRepo) ListPatients(_ context.Context, limit, offset int) ([]Patient, error) {
	out := make([]Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) FindAppointments(_ context.Context, f AppointmentFilter) ([]Appointment, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}

	excluded := make(map[AppointmentStatus]bool, len(f.StatusNotIn))
	for _, s := range f.StatusNotIn {
		excluded[s] = true
	}

	var out []Appointment
	for _, id := range r.order {
		a := r.appointments[id]
		if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
			continue
		}
		if f.PatientID != nil && a.PatientID != *f.PatientID {
			continue
		}
		if f.Date != nil && !a.Date.Equal(truncateToDay(*f.Date)) {
			continue
		}
		if excluded[a.Status] {
			continue
		}
		if f.ExcludeID != nil && a.ID == *f.ExcludeID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) CreateAppointment(_ context.Context, a *Appointment) error {
	cp := *a
	r.appointments[a.ID] = &cp
	r.order = append(r.order, a.ID)
	return nil
}

func (r *fakeRepo) UpdateAppointment(_ context.Context, a *Appointment) error {
	if _, ok := r.appointments[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	a, ok := r.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) FindOverdueScheduled(_ context.Context, cutoff time.Time) ([]Appointment, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []Appointment
	for _, id := range r.order {
		a := r.appointments[id]
		if a.Status != StatusScheduled {
			continue
		}
		start, err := parseClock(a.Time)
		if err != nil {
			continue
		}
		end := a.Date.Add(time.Duration(start+a.DurationMinutes) * time.Minute)
		if end.Before(cutoff) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindPatientHistory(_ context.Context, patientID uuid.UUID) ([]AppointmentRecord, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.history[patientID], nil
}

func (r *fakeRepo) GetPatientMedicalRecord(_ context.Context, patientID uuid.UUID) (*MedicalRecord, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	rec, ok := r.records[patientID]
	if !ok {
		return nil, ErrMedicalRecordNotFound
	}
	return rec, nil
}

// ---------- Helpers ----------

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, zerolog.Nop())
}

func seedDoctor(repo *fakeRepo) uuid.UUID {
	id := uuid.New()
	repo.doctors[id] = Doctor{ID: id, Name: "Amara Diallo"}
	return id
}

func seedPatient(repo *fakeRepo) uuid.UUID {
	id := uuid.New()
	repo.patients[id] = Patient{ID: id, Name: "Yanis Cherif"}
	return id
}

func seedAppointment(t *testing.T, repo *fakeRepo, doctorID uuid.UUID, day time.Time, clock string, duration int, status AppointmentStatus) uuid.UUID {
	t.Helper()
	a := &Appointment{
		ID:              uuid.New(),
		DoctorID:        doctorID,
		PatientID:       uuid.New(),
		Date:            truncateToDay(day),
		Time:            clock,
		DurationMinutes: duration,
		Status:          status,
	}
	if err := repo.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return a.ID
}

var testDay = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// ---------- CheckAvailability ----------

func TestCheckAvailability_EmptyDay(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	svc := newTestService(repo)

	res, err := svc.CheckAvailability(context.Background(), doctorID, testDay, "09:00", 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Available {
		t.Error("expected slot on an empty day to be available")
	}
	if res.ConflictingAppointmentID != nil {
		t.Errorf("expected no conflicting id, got %s", res.ConflictingAppointmentID)
	}
}

func TestCheckAvailability_OverlapConflicts(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	existing := seedAppointment(t, repo, doctorID, testDay, "09:00", 30, StatusScheduled)
	svc := newTestService(repo)

	// Candidate 09:15-09:45 overlaps the 09:00-09:30 appointment.
	res, err := svc.CheckAvailability(context.Background(), doctorID, testDay, "09:15", 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Available {
		t.Fatal("expected overlapping slot to conflict")
	}
	if res.ConflictingAppointmentID == nil || *res.ConflictingAppointmentID != existing {
		t.Errorf("expected conflicting id %s, got %v", existing, res.ConflictingAppointmentID)
	}
}

func TestCheckAvailability_BackToBackDoesNotConflict(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	seedAppointment(t, repo, doctorID, testDay, "09:00", 30, StatusScheduled)
	svc := newTestService(repo)

	// Intervals are half-open: 09:30 starts exactly where 09:00+30 ends.
	res, err := svc.CheckAvailability(context.Background(), doctorID, testDay, "09:30", 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Available {
		t.Error("expected back-to-back slot to be available")
	}

	// And immediately before.
	res, err = svc.CheckAvailability(context.Background(), doctorID, testDay, "08:30", 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Available {
		t.Error("expected slot ending at 09:00 to be available")
	}
}

func TestCheckAvailability_CandidateContainedInExisting(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	seedAppointment(t, repo, doctorID, testDay, "09:00", 60, StatusScheduled)
	svc := newTestService(repo)

	res, err := svc.CheckAvailability(context.Background(), doctorID, testDay, "09:20", 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Available {
		t.Error("expected contained slot to conflict")
	}
}

func TestCheckAvailability_CancelledNeverConflicts(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	seedAppointment(t, repo, doctorID, testDay, "09:00", 30, StatusCancelled)
	svc := newTestService(repo)

	res, err := svc.CheckAvailability(context.Background(), doctorID, testDay, "09:00", 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Available {
		t.Error("expected slot over a cancelled appointment to be available")
	}
}

func TestCheckAvailability_NonCancelledStatusesConflict(t *testing.T) {
	for _, status := range []AppointmentStatus{StatusScheduled, StatusInProgress, StatusCompleted, StatusNoShow} {
		repo := newFakeRepo()
		doctorID := seedDoctor(repo)
		seedAppointment(t, repo, doctorID, testDay, "10:00", 30, status)
		svc := newTestService(repo)

		res, err := svc.CheckAvailability(context.Background(), doctorID, testDay, "10:00", 30, nil)
		if err != nil {
			t.Fatalf("status %s: unexpected error: %v", status, err)
		}
		if res.Available {
			t.Errorf("status %s: expected conflict", status)
		}
	}
}

func TestCheckAvailability_ExcludeSelf(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	existing := seedAppointment(t, repo, doctorID, testDay, "09:00", 30, StatusScheduled)
	svc := newTestService(repo)

	// Without the exclusion the slot conflicts with itself.
	res, err := svc.CheckAvailability(context.Background(), doctorID, testDay, "09:00", 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Available {
		t.Fatal("expected conflict without exclusion")
	}

	res, err = svc.CheckAvailability(context.Background(), doctorID, testDay, "09:00", 30, &existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Available {
		t.Error("expected slot to be available when the appointment itself is excluded")
	}
}

func TestCheckAvailability_OtherDoctorDoesNotConflict(t *testing.T) {
	repo := newFakeRepo()
	doctorA := seedDoctor(repo)
	doctorB := seedDoctor(repo)
	seedAppointment(t, repo, doctorA, testDay, "09:00", 30, StatusScheduled)
	svc := newTestService(repo)

	res, err := svc.CheckAvailability(context.Background(), doctorB, testDay, "09:00", 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Available {
		t.Error("expected another doctor's appointment not to conflict")
	}
}

func TestCheckAvailability_OtherDayDoesNotConflict(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	seedAppointment(t, repo, doctorID, testDay, "09:00", 30, StatusScheduled)
	svc := newTestService(repo)

	res, err := svc.CheckAvailability(context.Background(), doctorID, testDay.AddDate(0, 0, 1), "09:00", 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Available {
		t.Error("expected the next day to be free")
	}
}

func TestCheckAvailability_UnknownDoctor(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.CheckAvailability(context.Background(), uuid.New(), testDay, "09:00", 30, nil)
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestCheckAvailability_InvalidInput(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	svc := newTestService(repo)

	cases := []struct {
		name     string
		clock    string
		duration int
		day      time.Time
	}{
		{"bad time format", "9am", 30, testDay},
		{"hour out of range", "25:00", 30, testDay},
		{"minute out of range", "09:75", 30, testDay},
		{"single digit hour", "9:00", 30, testDay},
		{"zero duration", "09:00", 0, testDay},
		{"negative duration", "09:00", -15, testDay},
		{"zero date", "09:00", 30, time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CheckAvailability(context.Background(), doctorID, tc.day, tc.clock, tc.duration, nil)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCheckAvailability_RepoFailurePropagates(t *testing.T) {
	repo := newFakeRepo()
	doctorID := seedDoctor(repo)
	svc := newTestService(repo)

	repo.failWith = errors.New("connection reset")
	_, err := svc.CheckAvailability(context.Background(), doctorID, testDay, "09:00", 30, nil)
	if err == nil {
		t.Fatal("expected an error when the repository fails")
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		t.Fatalf("transient failure must not surface as validation error, got %v", err)
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:15", 555, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := parseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClock(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
