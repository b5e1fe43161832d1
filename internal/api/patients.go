package api

import (
	"net/http"
	"strconv"

	"github.com/clinicore/clinic-server/internal/clinic"
)

func createPatientHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		p := &clinic.Patient{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		}
		if req.DateOfBirth != nil {
			dob, err := parseDate(*req.DateOfBirth)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date_of_birth", `date_of_birth must be in "2006-01-02" form`)
				return
			}
			p.DateOfBirth = &dob
		}

		if err := svc.RegisterPatient(r.Context(), p); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

func getPatientHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		p, err := svc.GetPatient(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func listPatientsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))

		patients, err := svc.ListPatients(r.Context(), limit, offset)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]PatientResponse, len(patients))
		for i := range patients {
			resp[i] = toPatientResponse(&patients[i])
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func listDoctorsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.ListDoctors(r.Context())
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]DoctorResponse, len(doctors))
		for i, d := range doctors {
			resp[i] = DoctorResponse{ID: d.ID, Name: d.Name, Specialty: d.Specialty}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
