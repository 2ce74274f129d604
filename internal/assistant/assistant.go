package assistant

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maintlog/backend/internal/analytics"
	"github.com/maintlog/backend/internal/ingest"
	"github.com/maintlog/backend/internal/llm"
	"github.com/maintlog/backend/internal/models"
	"github.com/maintlog/backend/internal/query"
)

// Assistant answers natural-language analytic questions over an immutable
// work-order table. The table and its derived known-value sets are built once
// and shared read-only across queries.
type Assistant struct {
	WorkOrders  []models.WorkOrder
	Known       models.KnownValues
	DefaultYear int
	Synthesizer llm.Synthesizer
	Logger      zerolog.Logger
}

// ConversationState carries light per-session bookkeeping for potential
// follow-up resolution. Filters are still freshly extracted every turn; the
// state is context for future multi-turn logic, not a disambiguation input.
type ConversationState struct {
	Filters               analytics.Filters
	LastCountQuestionType query.Intent
	EquipmentCounts       map[string]int
}

func NewConversationState() *ConversationState {
	return &ConversationState{EquipmentCounts: map[string]int{}}
}

// New builds an assistant over the work-order table, deriving the known-value
// sets and default year once.
func New(workOrders []models.WorkOrder, synth llm.Synthesizer, logger zerolog.Logger) *Assistant {
	return &Assistant{
		WorkOrders:  workOrders,
		Known:       ingest.KnownValues(workOrders),
		DefaultYear: ingest.DefaultYear(workOrders),
		Synthesizer: synth,
		Logger:      logger,
	}
}

// Answer resolves one turn: classify intent, extract filters, aggregate,
// format, optionally paraphrase. Empty input yields an empty answer; a
// malformed question degrades to empty filters or the unknown intent, never
// an error.
func (a *Assistant) Answer(ctx context.Context, question string) string {
	return a.AnswerWithState(ctx, question, NewConversationState())
}

// AnswerWithState is Answer with caller-held conversation state.
func (a *Assistant) AnswerWithState(ctx context.Context, question string, state *ConversationState) string {
	q := strings.TrimSpace(question)
	if q == "" {
		return ""
	}

	f := query.ExtractFilters(q, a.Known, a.DefaultYear)
	it := query.Classify(q)

	state.Filters = f
	state.LastCountQuestionType = it

	switch it {
	case query.IntentCountMentions:
		kw := query.ExtractMentionKeyword(q)
		n := analytics.CountMentions(a.WorkOrders, kw, f)
		return a.maybeSynthesize(ctx, q, strconv.Itoa(n))

	case query.IntentCountIncidents:
		n := analytics.CountIncidents(a.WorkOrders, f)
		return a.maybeSynthesize(ctx, q, strconv.Itoa(n))

	case query.IntentCountDistinctEquipment:
		n := analytics.CountDistinctEquipment(a.WorkOrders, f)
		return a.maybeSynthesize(ctx, q, strconv.Itoa(n))

	case query.IntentCountDistinctTechnicians:
		n, err := analytics.CountDistinctTechnicians(a.WorkOrders, f)
		if err != nil {
			a.Logger.Error().Err(err).Msg("technician analytics unavailable")
			return ""
		}
		return a.maybeSynthesize(ctx, q, strconv.Itoa(n))

	case query.IntentMostCommonSymptom:
		tied := analytics.MostCommonSymptoms(a.WorkOrders, f)
		if len(tied) == 0 {
			return ""
		}
		for _, vc := range tied {
			state.EquipmentCounts[vc.Value] = vc.WorkOrderCount
		}
		return a.maybeSynthesize(ctx, q, formatTied(tied))

	case query.IntentTopEquipment:
		// Deliberately global: the extracted filter is ignored for ranking
		// intents so "which equipment has the most incidents in July" still
		// answers over the whole table.
		top := analytics.TopEquipment(a.WorkOrders, 1, analytics.Filters{})
		if len(top) == 0 {
			return ""
		}
		return a.maybeSynthesize(ctx, q, formatWinner(top[0]))

	case query.IntentTopTechnician:
		top, err := analytics.TopTechnicians(a.WorkOrders, 1, analytics.Filters{})
		if err != nil {
			a.Logger.Error().Err(err).Msg("technician analytics unavailable")
			return ""
		}
		if len(top) == 0 {
			return ""
		}
		return a.maybeSynthesize(ctx, q, formatWinner(top[0]))
	}

	// compare_equipment and what_about are recognized but intentionally have
	// no handler yet; they resolve to an empty answer like unknown intents.
	return ""
}

func formatWinner(vc analytics.ValueCount) string {
	return fmt.Sprintf("%s with %d work orders", vc.Value, vc.WorkOrderCount)
}

func formatTied(tied []analytics.ValueCount) string {
	if len(tied) == 1 {
		return formatWinner(tied[0])
	}
	names := make([]string, len(tied))
	for i, vc := range tied {
		names[i] = vc.Value
	}
	return fmt.Sprintf("%s, each with %d work orders", strings.Join(names, " and "), tied[0].WorkOrderCount)
}

// maybeSynthesize paraphrases the deterministic answer through the language
// model when one is configured. Pure-numeric answers always bypass the model
// so counts cannot be reworded into something else; every model failure
// silently falls back to the deterministic string.
func (a *Assistant) maybeSynthesize(ctx context.Context, question string, answer string) string {
	if answer == "" || isNumeric(answer) {
		return answer
	}
	if a.Synthesizer == nil || !a.Synthesizer.Available(ctx) {
		return answer
	}
	text, err := a.Synthesizer.Synthesize(ctx, question, answer)
	if err != nil {
		a.Logger.Debug().Err(err).Msg("synthesis failed, using deterministic answer")
		return answer
	}
	return text
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
