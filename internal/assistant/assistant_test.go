package assistant

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maintlog/backend/internal/models"
)

func ts(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func fixtureAssistant() *Assistant {
	var workOrders []models.WorkOrder
	id := int64(1)
	add := func(equipment, line, symptom, description string, start time.Time, techs ...string) {
		workOrders = append(workOrders, models.WorkOrder{
			WorkOrderID: id,
			EquipmentID: equipment,
			ProductLine: line,
			SymptomCode: symptom,
			Description: description,
			StartTS:     start,
			Technicians: techs,
		})
		id++
	}

	// Five July-2024 incidents, two July-2023 incidents; 2024 is the modal year.
	add("CNC-01", "Milling", "SPINDLE_TIMEOUT", "Spindle stalls", ts(2024, 7, 1), "Alice")
	add("CNC-01", "Milling", "SPINDLE_TIMEOUT", "Spindle stalls again", ts(2024, 7, 3), "Alice")
	add("CNC-01", "Milling", "BEARING_WEAR", "Bearing noise", ts(2024, 7, 8), "Bob")
	add("PRESS-07", "Stamping", "HYDRAULIC_LEAK", "Leak near valve", ts(2024, 7, 15), "Carol")
	add("PRESS-07", "Stamping", "HYDRAULIC_LEAK", "Leak recurring", ts(2024, 7, 20), "Carol")
	add("PRESS-07", "Stamping", "HYDRAULIC_LEAK", "Leak at seal", ts(2023, 7, 2), "Carol")
	add("CNC-01", "Milling", "SPINDLE_TIMEOUT", "Stall on warmup", ts(2023, 7, 9), "Dave")
	add("CNC-01", "Milling", "SPINDLE_TIMEOUT", "Cold start stall", ts(2024, 2, 1), "Alice")

	return New(workOrders, nil, zerolog.Nop())
}

func TestAnswerCountIncidentsDefaultsToModalYear(t *testing.T) {
	a := fixtureAssistant()
	if got := a.Answer(context.Background(), "How many incidents in July?"); got != "5" {
		t.Fatalf("expected 5 (July of modal year 2024), got %q", got)
	}
	if got := a.Answer(context.Background(), "How many incidents in July 2023?"); got != "2" {
		t.Fatalf("expected 2 for explicit year, got %q", got)
	}
}

func TestAnswerCountMentions(t *testing.T) {
	a := fixtureAssistant()
	if got := a.Answer(context.Background(), "How many work orders mention a leak?"); got != "3" {
		t.Fatalf("expected 3 leak mentions, got %q", got)
	}
}

func TestAnswerDistinctCounts(t *testing.T) {
	a := fixtureAssistant()
	if got := a.Answer(context.Background(), "How many distinct equipment had incidents?"); got != "2" {
		t.Fatalf("expected 2, got %q", got)
	}
	if got := a.Answer(context.Background(), "How many different technicians are there?"); got != "4" {
		t.Fatalf("expected 4, got %q", got)
	}
}

func TestAnswerMostCommonSymptomSingleWinner(t *testing.T) {
	a := fixtureAssistant()
	got := a.Answer(context.Background(), "What is the most common symptom?")
	if got != "SPINDLE_TIMEOUT with 4 work orders" {
		t.Fatalf("unexpected answer: %q", got)
	}
}

func TestAnswerMostCommonSymptomTie(t *testing.T) {
	a := fixtureAssistant()
	got := a.Answer(context.Background(), "What is the most common symptom in Stamping?")
	if got != "HYDRAULIC_LEAK with 3 work orders" {
		t.Fatalf("unexpected answer: %q", got)
	}

	// Narrow to July 2023: one HYDRAULIC_LEAK and one SPINDLE_TIMEOUT, tied.
	got = a.Answer(context.Background(), "What is the most common symptom in July 2023?")
	if got != "HYDRAULIC_LEAK and SPINDLE_TIMEOUT, each with 1 work orders" {
		t.Fatalf("expected tie phrasing, got %q", got)
	}
}

func TestAnswerTopEquipmentIgnoresFilter(t *testing.T) {
	a := fixtureAssistant()
	// CNC-01 has 5 work orders globally; the July-2023 filter is deliberately
	// not applied to ranking intents.
	got := a.Answer(context.Background(), "Which equipment has the most incidents in July 2023?")
	if got != "CNC-01 with 5 work orders" {
		t.Fatalf("expected global ranking, got %q", got)
	}
}

func TestAnswerTopTechnician(t *testing.T) {
	a := fixtureAssistant()
	// Alice and Carol both handled 3 work orders; ascending name breaks the tie.
	got := a.Answer(context.Background(), "Which technician handled the most work orders?")
	if got != "Alice with 3 work orders" {
		t.Fatalf("unexpected answer: %q", got)
	}
}

func TestAnswerStubbedAndUnknownIntents(t *testing.T) {
	a := fixtureAssistant()
	for _, q := range []string{
		"Which one had more incidents?",
		"what about BEARING_WEAR?",
		"Tell me a story",
		"",
		"   ",
	} {
		if got := a.Answer(context.Background(), q); got != "" {
			t.Fatalf("expected empty answer for %q, got %q", q, got)
		}
	}
}

type failingSynthesizer struct{}

func (failingSynthesizer) Available(ctx context.Context) bool { return true }
func (failingSynthesizer) Synthesize(ctx context.Context, question, toolOutput string) (string, error) {
	return "", fmt.Errorf("model unreachable")
}

type rewritingSynthesizer struct{}

func (rewritingSynthesizer) Available(ctx context.Context) bool { return true }
func (rewritingSynthesizer) Synthesize(ctx context.Context, question, toolOutput string) (string, error) {
	return "paraphrased: " + toolOutput, nil
}

func TestSynthesizerFailureFallsBack(t *testing.T) {
	a := fixtureAssistant()
	a.Synthesizer = failingSynthesizer{}
	got := a.Answer(context.Background(), "What is the most common symptom?")
	if got != "SPINDLE_TIMEOUT with 4 work orders" {
		t.Fatalf("expected deterministic fallback, got %q", got)
	}
}

func TestNumericAnswersBypassSynthesizer(t *testing.T) {
	a := fixtureAssistant()
	a.Synthesizer = rewritingSynthesizer{}
	if got := a.Answer(context.Background(), "How many incidents in July?"); got != "5" {
		t.Fatalf("expected untouched numeric answer, got %q", got)
	}
	got := a.Answer(context.Background(), "What is the most common symptom?")
	if got != "paraphrased: SPINDLE_TIMEOUT with 4 work orders" {
		t.Fatalf("expected paraphrase for string answer, got %q", got)
	}
}
