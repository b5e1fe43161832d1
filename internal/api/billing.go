package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-server/internal/billing"
)

func createInvoiceHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateInvoiceRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		patientID, _ := uuid.Parse(req.PatientID)

		inv := &billing.Invoice{PatientID: patientID}
		if req.AppointmentID != nil {
			apptID, err := uuid.Parse(*req.AppointmentID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointment_id must be a valid UUID")
				return
			}
			inv.AppointmentID = &apptID
		}
		for _, line := range req.Lines {
			inv.Lines = append(inv.Lines, billing.InvoiceLine{
				Description:    line.Description,
				Quantity:       line.Quantity,
				UnitPriceCents: line.UnitPriceCents,
			})
		}

		if err := svc.CreateInvoice(r.Context(), inv); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))
	}
}

func getInvoiceHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_invoice_id", "id must be a valid UUID")
			return
		}

		inv, err := svc.GetInvoice(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
	}
}

func listPatientInvoicesHandler(svc *billing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		invoices, err := svc.ListByPatient(r.Context(), patientID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]InvoiceResponse, len(invoices))
		for i := range invoices {
			resp[i] = toInvoiceResponse(&invoices[i])
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func invoiceTransitionHandler(transition func(r *http.Request, id uuid.UUID) (*billing.Invoice, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_invoice_id", "id must be a valid UUID")
			return
		}

		inv, err := transition(r, id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
	}
}
