package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-server/internal/pharmacy"
)

func createPrescriptionHandler(svc *pharmacy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePrescriptionRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		patientID, _ := uuid.Parse(req.PatientID)
		doctorID, _ := uuid.Parse(req.DoctorID)

		p := &pharmacy.Prescription{
			PatientID: patientID,
			DoctorID:  doctorID,
		}
		for _, line := range req.Lines {
			pl := pharmacy.PrescriptionLine{
				MedicationName: line.MedicationName,
				Dosage:         line.Dosage,
				Frequency:      line.Frequency,
				Duration:       line.Duration,
				Quantity:       line.Quantity,
			}
			if line.MedicationID != nil {
				mid, err := uuid.Parse(*line.MedicationID)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid_medication_id", "medication_id must be a valid UUID")
					return
				}
				pl.MedicationID = &mid
			}
			p.Lines = append(p.Lines, pl)
		}

		if err := svc.CreatePrescription(r.Context(), p); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPrescriptionResponse(p))
	}
}

func getPrescriptionHandler(svc *pharmacy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_prescription_id", "id must be a valid UUID")
			return
		}

		p, err := svc.GetPrescription(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPrescriptionResponse(p))
	}
}

func dispensePrescriptionHandler(svc *pharmacy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_prescription_id", "id must be a valid UUID")
			return
		}

		p, err := svc.Dispense(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPrescriptionResponse(p))
	}
}

func createMedicationHandler(svc *pharmacy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMedicationRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		m, err := svc.CreateMedication(r.Context(), req.Name, req.Form, req.Strength)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, MedicationResponse{
			ID:       m.ID,
			Name:     m.Name,
			Form:     m.Form,
			Strength: m.Strength,
		})
	}
}

func receiveStockHandler(svc *pharmacy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReceiveStockRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		medicationID, _ := uuid.Parse(req.MedicationID)
		expiresAt, _ := parseDate(req.ExpiresAt)

		batch, err := svc.ReceiveStock(r.Context(), medicationID, req.Quantity, expiresAt)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, StockBatchResponse{
			ID:           batch.ID,
			MedicationID: batch.MedicationID,
			Quantity:     batch.Quantity,
			ExpiresAt:    batch.ExpiresAt.Format(dateLayout),
			ReceivedAt:   batch.ReceivedAt,
		})
	}
}

func listStockHandler(svc *pharmacy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			levels []pharmacy.StockLevel
			err    error
		)

		if raw := r.URL.Query().Get("low"); raw != "" {
			threshold, convErr := strconv.Atoi(raw)
			if convErr != nil || threshold < 0 {
				writeError(w, http.StatusBadRequest, "invalid_threshold", "low must be a non-negative integer")
				return
			}
			levels, err = svc.ListLowStock(r.Context(), threshold)
		} else {
			levels, err = svc.ListStock(r.Context())
		}
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]StockLevelResponse, len(levels))
		for i, lvl := range levels {
			resp[i] = StockLevelResponse{
				MedicationID: lvl.Medication.ID,
				Name:         lvl.Medication.Name,
				Form:         lvl.Medication.Form,
				Strength:     lvl.Medication.Strength,
				Quantity:     lvl.Quantity,
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
