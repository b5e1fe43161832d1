package api

import (
	"net/http"

	"github.com/clinicore/clinic-server/internal/timeline"
)

func patientTimelineHandler(builder *timeline.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		entries, err := builder.Build(r.Context(), patientID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		q := r.URL.Query()
		criteria := timeline.Criteria{
			Kind:   q.Get("type"),
			Search: q.Get("q"),
		}
		if raw := q.Get("from"); raw != "" {
			day, err := parseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_from", `from must be in "2006-01-02" form`)
				return
			}
			criteria.DateStart = day
		}
		if raw := q.Get("to"); raw != "" {
			day, err := parseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_to", `to must be in "2006-01-02" form`)
				return
			}
			criteria.DateEnd = day
		}

		filtered := timeline.Filter(entries, criteria)

		writeJSON(w, http.StatusOK, filtered)
	}
}
