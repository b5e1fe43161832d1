package timeline

import (
	"testing"
	"time"
)

func sampleEntries() []Entry {
	return []Entry{
		{ID: "consultation-1", Kind: KindConsultation, Date: day(2024, 6, 20), Title: "Consultation - Dr Diallo", Description: "angine"},
		{ID: "prescription-1", Kind: KindPrescription, Date: day(2024, 6, 20), Title: "Ordonnance", Description: "Amoxicilline - 500mg 3x/jour pendant 7 jours"},
		{ID: "radio-1", Kind: KindRadio, Date: day(2024, 3, 15), Title: "Radio thorax", Description: "RAS"},
		{ID: "operation-1", Kind: KindOperation, Date: day(2023, 11, 2), Title: "Appendicectomie", Description: "sans complication"},
	}
}

func TestFilter_NoCriteriaReturnsAll(t *testing.T) {
	entries := sampleEntries()

	got := Filter(entries, Criteria{})
	if len(got) != len(entries) {
		t.Fatalf("expected all %d entries, got %d", len(entries), len(got))
	}
	for i := range got {
		if got[i].ID != entries[i].ID {
			t.Errorf("order changed at %d: %s vs %s", i, got[i].ID, entries[i].ID)
		}
	}
}

func TestFilter_KindAllSentinel(t *testing.T) {
	entries := sampleEntries()

	got := Filter(entries, Criteria{Kind: KindAll})
	if len(got) != len(entries) {
		t.Errorf(`kind "all" must disable kind filtering, got %d of %d`, len(got), len(entries))
	}
}

func TestFilter_ByKind(t *testing.T) {
	entries := sampleEntries()

	got := Filter(entries, Criteria{Kind: string(KindRadio)})
	if len(got) != 1 || got[0].ID != "radio-1" {
		t.Fatalf("expected only the radio entry, got %v", got)
	}

	// Filtering is idempotent.
	again := Filter(got, Criteria{Kind: string(KindRadio)})
	if len(again) != 1 || again[0].ID != "radio-1" {
		t.Errorf("second application changed the result: %v", again)
	}
}

func TestFilter_SearchCaseInsensitive(t *testing.T) {
	entries := sampleEntries()

	got := Filter(entries, Criteria{Search: "AMOXICILLINE"})
	if len(got) != 1 || got[0].ID != "prescription-1" {
		t.Fatalf("expected the prescription entry, got %v", got)
	}

	// Matches title as well as description.
	got = Filter(entries, Criteria{Search: "ordonnance"})
	if len(got) != 1 || got[0].ID != "prescription-1" {
		t.Fatalf("expected a title match, got %v", got)
	}

	got = Filter(entries, Criteria{Search: "introuvable"})
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestFilter_DateRangeNormalized(t *testing.T) {
	entries := []Entry{
		{ID: "morning", Kind: KindConsultation, Date: time.Date(2024, 6, 20, 8, 30, 0, 0, time.UTC)},
		{ID: "evening", Kind: KindConsultation, Date: time.Date(2024, 6, 20, 22, 45, 0, 0, time.UTC)},
		{ID: "before", Kind: KindConsultation, Date: time.Date(2024, 6, 19, 23, 0, 0, 0, time.UTC)},
		{ID: "after", Kind: KindConsultation, Date: time.Date(2024, 6, 21, 0, 30, 0, 0, time.UTC)},
	}

	// The bound's own time of day is irrelevant: the range covers the whole
	// calendar day on both ends.
	bound := time.Date(2024, 6, 20, 14, 0, 0, 0, time.UTC)
	got := Filter(entries, Criteria{DateStart: bound, DateEnd: bound})
	if len(got) != 2 {
		t.Fatalf("expected 2 entries inside the day, got %d", len(got))
	}
	if got[0].ID != "morning" || got[1].ID != "evening" {
		t.Errorf("unexpected entries: %v", got)
	}
}

func TestFilter_OpenEndedRange(t *testing.T) {
	entries := sampleEntries()

	got := Filter(entries, Criteria{DateStart: day(2024, 1, 1)})
	if len(got) != 3 {
		t.Errorf("expected 3 entries from 2024 on, got %d", len(got))
	}

	got = Filter(entries, Criteria{DateEnd: day(2023, 12, 31)})
	if len(got) != 1 || got[0].ID != "operation-1" {
		t.Errorf("expected only the 2023 operation, got %v", got)
	}
}

func TestFilter_CriteriaCompose(t *testing.T) {
	entries := sampleEntries()

	got := Filter(entries, Criteria{
		Kind:      string(KindConsultation),
		Search:    "angine",
		DateStart: day(2024, 6, 1),
		DateEnd:   day(2024, 6, 30),
	})
	if len(got) != 1 || got[0].ID != "consultation-1" {
		t.Fatalf("expected exactly the matching consultation, got %v", got)
	}

	// Same criteria minus the matching search term.
	got = Filter(entries, Criteria{
		Kind:      string(KindConsultation),
		Search:    "grippe",
		DateStart: day(2024, 6, 1),
		DateEnd:   day(2024, 6, 30),
	})
	if len(got) != 0 {
		t.Errorf("criteria are ANDed, got %v", got)
	}
}
