package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-server/internal/clinic"
	redisclient "github.com/clinicore/clinic-server/internal/redis"
)

func checkAvailabilityHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		q := r.URL.Query()

		day, err := parseDate(q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", `date must be in "2006-01-02" form`)
			return
		}

		duration, err := strconv.Atoi(q.Get("duration"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_duration", "duration must be an integer number of minutes")
			return
		}

		var excludeID *uuid.UUID
		if raw := q.Get("exclude"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_exclude_id", "exclude must be a valid UUID")
				return
			}
			excludeID = &id
		}

		res, err := svc.CheckAvailability(r.Context(), doctorID, day, q.Get("time"), duration, excludeID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			Available:                res.Available,
			ConflictingAppointmentID: res.ConflictingAppointmentID,
		})
	}
}

func bookAppointmentHandler(svc *clinic.Service, guard redisclient.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		doctorID, _ := uuid.Parse(req.DoctorID)
		patientID, _ := uuid.Parse(req.PatientID)
		day, _ := parseDate(req.Date)

		key := r.Header.Get("Idempotency-Key")
		if key != "" {
			if err := guard.Claim(r.Context(), key); err != nil {
				if errors.Is(err, redisclient.ErrKeyAlreadyClaimed) {
					writeError(w, http.StatusConflict, "duplicate_request", "this idempotency key was already used")
					return
				}
				handleDomainError(w, err)
				return
			}
		}

		appt, err := svc.BookAppointment(r.Context(), clinic.BookingParams{
			DoctorID:        doctorID,
			PatientID:       patientID,
			Date:            day,
			Time:            req.Time,
			DurationMinutes: req.DurationMinutes,
			Reason:          req.Reason,
		})
		if err != nil {
			if key != "" {
				// Free the key so the client may retry after fixing the
				// request; the original context may already be gone.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				_ = guard.Release(releaseCtx, key)
				cancel()
			}
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var f clinic.AppointmentFilter

		if raw := q.Get("doctor_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
				return
			}
			f.DoctorID = &id
		}
		if raw := q.Get("patient_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
				return
			}
			f.PatientID = &id
		}
		if raw := q.Get("date"); raw != "" {
			day, err := parseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", `date must be in "2006-01-02" form`)
				return
			}
			f.Date = &day
		}

		appts, err := svc.ListAppointments(r.Context(), f)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]AppointmentResponse, len(appts))
		for i := range appts {
			resp[i] = toAppointmentResponse(&appts[i])
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func updateAppointmentStatusHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), id, clinic.AppointmentStatus(req.Status))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Cancel(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func rescheduleAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req RescheduleRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}
		day, _ := parseDate(req.Date)

		appt, err := svc.Reschedule(r.Context(), id, day, req.Time, req.DurationMinutes)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func recordConsultationHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req RecordConsultationRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		var prescriptionID *uuid.UUID
		if req.PrescriptionID != nil {
			pid, err := uuid.Parse(*req.PrescriptionID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_prescription_id", "prescription_id must be a valid UUID")
				return
			}
			prescriptionID = &pid
		}

		appt, err := svc.RecordConsultation(r.Context(), id, req.Diagnosis, req.Notes, req.Reports, prescriptionID)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}
