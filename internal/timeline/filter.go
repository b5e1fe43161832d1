package timeline

import (
	"strings"
	"time"
)

// KindAll is the sentinel that disables kind filtering.
const KindAll = "all"

// Criteria narrows a built timeline. Zero-valued fields are ignored; the
// ones that are set compose with logical AND.
type Criteria struct {
	Kind      string
	Search    string
	DateStart time.Time
	DateEnd   time.Time
}

// Filter applies the criteria to already-built entries. It performs no I/O
// and preserves the input order.
func Filter(entries []Entry, c Criteria) []Entry {
	kind := strings.TrimSpace(c.Kind)
	search := strings.ToLower(strings.TrimSpace(c.Search))

	var start, end time.Time
	if !c.DateStart.IsZero() {
		start = startOfDay(c.DateStart)
	}
	if !c.DateEnd.IsZero() {
		end = endOfDay(c.DateEnd)
	}

	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if kind != "" && kind != KindAll && string(e.Kind) != kind {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Title), search) &&
			!strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		if !start.IsZero() && e.Date.Before(start) {
			continue
		}
		if !end.IsZero() && e.Date.After(end) {
			continue
		}
		result = append(result, e)
	}

	return result
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
