package clinic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidationError rejects malformed input before any persistence call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type AvailabilityResult struct {
	Available                bool
	ConflictingAppointmentID *uuid.UUID
}

// CheckAvailability reports whether the doctor is free for the candidate slot
// [clock, clock+duration) on the given day. Appointments with any status other
// than cancelled occupy their interval; excludeID removes one appointment from
// consideration so that editing a slot does not conflict with itself.
//
// This is an advisory read-then-decide check. Two concurrent bookings can both
// pass it; the database write path is the final arbiter.
func (s *Service) CheckAvailability(ctx context.Context, doctorID uuid.UUID, day time.Time, clock string, durationMinutes int, excludeID *uuid.UUID) (AvailabilityResult, error) {
	start, err := parseClock(clock)
	if err != nil {
		return AvailabilityResult{}, err
	}
	if durationMinutes < 1 {
		return AvailabilityResult{}, &ValidationError{Field: "duration", Reason: "must be a positive number of minutes"}
	}
	if day.IsZero() {
		return AvailabilityResult{}, &ValidationError{Field: "date", Reason: "must be a valid calendar date"}
	}

	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return AvailabilityResult{}, ErrDoctorNotFound
		}
		return AvailabilityResult{}, fmt.Errorf("load doctor: %w", err)
	}

	day = truncateToDay(day)

	booked, err := s.repo.FindAppointments(ctx, AppointmentFilter{
		DoctorID:    &doctorID,
		Date:        &day,
		StatusNotIn: []AppointmentStatus{StatusCancelled},
		ExcludeID:   excludeID,
	})
	if err != nil {
		return AvailabilityResult{}, fmt.Errorf("load booked appointments: %w", err)
	}

	end := start + durationMinutes

	for _, appt := range booked {
		otherStart, err := parseClock(appt.Time)
		if err != nil {
			// A stored appointment with an unparseable time cannot be
			// placed on the day; skip it rather than fail the check.
			continue
		}
		otherEnd := otherStart + appt.DurationMinutes

		if start < otherEnd && otherStart < end {
			id := appt.ID
			return AvailabilityResult{Available: false, ConflictingAppointmentID: &id}, nil
		}
	}

	return AvailabilityResult{Available: true}, nil
}

// parseClock converts a 24h "HH:MM" string to minutes since midnight.
func parseClock(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, &ValidationError{Field: "time", Reason: `must be in "HH:MM" form`}
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, &ValidationError{Field: "time", Reason: "hour out of range"}
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, &ValidationError{Field: "time", Reason: "minute out of range"}
	}

	return hour*60 + minute, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
