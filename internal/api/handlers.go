package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-server/internal/billing"
	"github.com/clinicore/clinic-server/internal/clinic"
	"github.com/clinicore/clinic-server/internal/facility"
	"github.com/clinicore/clinic-server/internal/pharmacy"
	"github.com/clinicore/clinic-server/internal/staff"
)

var validate = validator.New()

// decodeAndValidate parses the JSON body into dst and runs the struct
// validation tags.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadBody
	}
	return validate.Struct(dst)
}

var errBadBody = errors.New("could not parse JSON body")

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// handleDomainError maps domain errors from any service onto HTTP statuses.
func handleDomainError(w http.ResponseWriter, err error) {
	var vErr *clinic.ValidationError
	var conflict *clinic.SlotConflictError

	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "validation_error", vErr.Error())
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, struct {
			ErrorResponse
			ConflictingAppointmentID uuid.UUID `json:"conflicting_appointment_id"`
		}{
			ErrorResponse:            ErrorResponse{Error: "doctor_unavailable", Details: conflict.Error()},
			ConflictingAppointmentID: conflict.ConflictingAppointmentID,
		})
	case errors.Is(err, clinic.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, clinic.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, clinic.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, clinic.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, pharmacy.ErrMedicationNotFound):
		writeError(w, http.StatusNotFound, "medication_not_found", err.Error())
	case errors.Is(err, pharmacy.ErrPrescriptionNotFound):
		writeError(w, http.StatusNotFound, "prescription_not_found", err.Error())
	case errors.Is(err, pharmacy.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, pharmacy.ErrAlreadyDispensed):
		writeError(w, http.StatusConflict, "already_dispensed", err.Error())
	case errors.Is(err, pharmacy.ErrPrescriptionNotOpen):
		writeError(w, http.StatusConflict, "prescription_not_open", err.Error())
	case errors.Is(err, pharmacy.ErrPrescriptionNoLines):
		writeError(w, http.StatusBadRequest, "prescription_no_lines", err.Error())
	case errors.Is(err, billing.ErrInvoiceNotFound):
		writeError(w, http.StatusNotFound, "invoice_not_found", err.Error())
	case errors.Is(err, billing.ErrInvoiceNoLines):
		writeError(w, http.StatusBadRequest, "invoice_no_lines", err.Error())
	case errors.Is(err, billing.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_invoice_transition", err.Error())
	case errors.Is(err, facility.ErrFloorNotFound):
		writeError(w, http.StatusNotFound, "floor_not_found", err.Error())
	case errors.Is(err, facility.ErrBlocNotFound):
		writeError(w, http.StatusNotFound, "bloc_not_found", err.Error())
	case errors.Is(err, facility.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room_not_found", err.Error())
	case errors.Is(err, staff.ErrStaffNotFound):
		writeError(w, http.StatusNotFound, "staff_not_found", err.Error())
	default:
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) || errors.Is(err, errBadBody) {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
