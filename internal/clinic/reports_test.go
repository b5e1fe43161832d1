package clinic

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseConsultationReports_Empty(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage(""), json.RawMessage("null"), json.RawMessage("[]"), json.RawMessage("  [] ")} {
		reports, err := ParseConsultationReports(raw)
		if err != nil {
			t.Errorf("raw %q: unexpected error: %v", raw, err)
		}
		if len(reports) != 0 {
			t.Errorf("raw %q: expected no reports, got %d", raw, len(reports))
		}
	}
}

func TestParseConsultationReports(t *testing.T) {
	raw := json.RawMessage(`[{"title":"Bilan sanguin","notes":"tout est normal","date":"2024-03-10"},{"notes":"sans date"}]`)

	reports, err := ParseConsultationReports(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Title != "Bilan sanguin" {
		t.Errorf("unexpected title %q", reports[0].Title)
	}

	want := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	if !reports[0].ParsedDate().Equal(want) {
		t.Errorf("expected date %s, got %s", want, reports[0].ParsedDate())
	}
	if !reports[1].ParsedDate().IsZero() {
		t.Error("expected zero date for report without one")
	}
}

func TestParseConsultationReports_Malformed(t *testing.T) {
	for _, raw := range []string{`{"not":"array"}`, `[{"title":`, `"just a string"`} {
		if _, err := ParseConsultationReports(json.RawMessage(raw)); err == nil {
			t.Errorf("raw %q: expected error", raw)
		}
	}
}

func TestConsultationReport_ParsedDate_Invalid(t *testing.T) {
	r := ConsultationReport{Date: "10/03/2024"}
	if !r.ParsedDate().IsZero() {
		t.Error("expected zero date for unparseable value")
	}
}
