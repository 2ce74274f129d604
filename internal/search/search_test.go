package search

import (
	"strings"
	"testing"
	"time"

	"github.com/maintlog/backend/internal/analytics"
	"github.com/maintlog/backend/internal/models"
)

func fixtureWorkOrders() []models.WorkOrder {
	ts := func(day int) time.Time {
		return time.Date(2024, 7, day, 8, 0, 0, 0, time.UTC)
	}
	return []models.WorkOrder{
		{WorkOrderID: 1, EquipmentID: "CNC-01", ProductLine: "Milling", SymptomCode: "HYDRAULIC_LEAK",
			Description: "Hydraulic leak near the main valve", Comments: "Tightened fitting\nLeak persists", StartTS: ts(1)},
		{WorkOrderID: 2, EquipmentID: "CNC-01", ProductLine: "Milling", SymptomCode: "SPINDLE_TIMEOUT",
			Description: "Spindle timeout during warmup", Comments: "Replaced controller", StartTS: ts(5)},
		{WorkOrderID: 3, EquipmentID: "PRESS-07", ProductLine: "Stamping", SymptomCode: "HYDRAULIC_LEAK",
			Description: "Hydraulic leak at seal", Comments: "", StartTS: ts(9)},
		{WorkOrderID: 4, EquipmentID: "PRESS-07", ProductLine: "Stamping", SymptomCode: "BEARING_WEAR",
			Description: "Bearing noise", Comments: "Greased bearing", StartTS: ts(12)},
	}
}

func TestSearchFindsPhraseMatches(t *testing.T) {
	results, err := Search(fixtureWorkOrders(), "hydraulic leak", 5, analytics.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Score <= 0 {
			t.Fatalf("expected positive score, got %+v", r)
		}
	}
	// Equal scores fall back to newest first.
	if results[0].WorkOrderID != 3 || results[1].WorkOrderID != 1 {
		t.Fatalf("expected newest-first on score tie, got %+v", results)
	}
}

func TestSearchFilterRestrictsScope(t *testing.T) {
	results, err := Search(fixtureWorkOrders(), "hydraulic leak", 10, analytics.Filters{EquipmentID: "CNC-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.EquipmentID != "CNC-01" {
			t.Fatalf("filter leaked equipment %s", r.EquipmentID)
		}
	}
}

func TestSearchFilteredIsSubsetOfUnfiltered(t *testing.T) {
	all, err := Search(fixtureWorkOrders(), "hydraulic leak", 0, analytics.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	filtered, err := Search(fixtureWorkOrders(), "hydraulic leak", 0, analytics.Filters{EquipmentID: "PRESS-07"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	allIDs := map[int64]struct{}{}
	for _, r := range all {
		allIDs[r.WorkOrderID] = struct{}{}
	}
	for _, r := range filtered {
		if _, ok := allIDs[r.WorkOrderID]; !ok {
			t.Fatalf("filtered result %d not in unfiltered results", r.WorkOrderID)
		}
	}
}

func TestSearchMinScoreDropsWeakMatches(t *testing.T) {
	// Two distinct tokens require a score of at least 4, so a single-token
	// hit like "hydraulic controller" on work order 2 is dropped.
	results, err := Search(fixtureWorkOrders(), "hydraulic controller", 0, analytics.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.Score < 4 {
			t.Fatalf("expected weak matches dropped, got %+v", r)
		}
	}
}

func TestSearchEmptyQueryIsError(t *testing.T) {
	if _, err := Search(fixtureWorkOrders(), "???", 5, analytics.Filters{}); err == nil {
		t.Fatalf("expected error for query with no tokens")
	}
}

func TestSearchEmptyScope(t *testing.T) {
	results, err := Search(fixtureWorkOrders(), "leak", 5, analytics.Filters{EquipmentID: "NOPE"})
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty results, got %+v (%v)", results, err)
	}
}

func TestSearchCanMatchSymptomCodeToken(t *testing.T) {
	results, err := Search(fixtureWorkOrders(), "SPINDLE_TIMEOUT", 5, analytics.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected symptom-code tokens to match")
	}
}

func TestFormatResults(t *testing.T) {
	results, err := Search(fixtureWorkOrders(), "hydraulic leak", 5, analytics.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := FormatResults("hydraulic leak", results, 5)
	if !strings.Contains(out, "Query: hydraulic leak") {
		t.Fatalf("missing query line: %s", out)
	}
	if !strings.Contains(out, "Matches: 2 (showing top 2)") {
		t.Fatalf("missing match count: %s", out)
	}
	if !strings.Contains(out, "work_order_id=3") {
		t.Fatalf("missing work order citation: %s", out)
	}
}

func TestFormatResultsEmpty(t *testing.T) {
	out := FormatResults("gearbox", nil, 5)
	if !strings.Contains(out, "No matches found for: 'gearbox'") {
		t.Fatalf("unexpected empty-result message: %s", out)
	}
}
