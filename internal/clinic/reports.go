package clinic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ConsultationReport is one free-form clinical note embedded in an
// appointment's report array.
type ConsultationReport struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
	Date  string `json:"date,omitempty"` // "2006-01-02", optional
}

// ParsedDate returns the report's own date, or the zero time when the report
// carries none or an unparseable one.
func (r ConsultationReport) ParsedDate() time.Time {
	if r.Date == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseConsultationReports decodes the embedded report array. A nil or empty
// field yields no reports and no error. Malformed JSON is an error the caller
// is expected to skip past, not abort on.
func ParseConsultationReports(raw json.RawMessage) ([]ConsultationReport, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		return nil, nil
	}

	var reports []ConsultationReport
	if err := json.Unmarshal(raw, &reports); err != nil {
		return nil, fmt.Errorf("decode consultation reports: %w", err)
	}
	return reports, nil
}
