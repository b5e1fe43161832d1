package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-server/internal/staff"
)

func createStaffHandler(repo staff.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateStaffRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		m := &staff.Member{
			ID:      uuid.New(),
			Name:    req.Name,
			Role:    staff.Role(req.Role),
			Phone:   req.Phone,
			Active:  true,
			HiredAt: time.Now(),
		}
		if err := repo.CreateMember(r.Context(), m); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toStaffResponse(m))
	}
}

func listStaffHandler(repo staff.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("active") == "true"

		members, err := repo.ListMembers(r.Context(), activeOnly)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]StaffResponse, len(members))
		for i := range members {
			resp[i] = toStaffResponse(&members[i])
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func deactivateStaffHandler(repo staff.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_staff_id", "id must be a valid UUID")
			return
		}

		m, err := repo.DeactivateMember(r.Context(), id, time.Now())
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStaffResponse(m))
	}
}
