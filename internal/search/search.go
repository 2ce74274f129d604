package search

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/maintlog/backend/internal/analytics"
	"github.com/maintlog/backend/internal/models"
)

// Result is one ranked work order from a keyword search, with a snippet for
// traceability.
type Result struct {
	WorkOrderID int64     `json:"work_order_id"`
	EquipmentID string    `json:"equipment_id"`
	SymptomCode string    `json:"symptom_code"`
	StartTS     time.Time `json:"start_ts"`
	Score       int       `json:"score"`
	Snippet     string    `json:"snippet"`
}

var (
	wordRe       = regexp.MustCompile(`[a-z0-9]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

const snippetWindow = 120

// Search ranks work orders in the filtered scope against a free-text query.
// Scoring is 2 per distinct matched token plus 5 for an exact phrase hit;
// results below the dynamic minimum score are dropped. An empty scope yields
// no results; a query with no usable tokens is an error.
func Search(workOrders []models.WorkOrder, queryText string, k int, f analytics.Filters) ([]Result, error) {
	scoped := analytics.Apply(workOrders, f)
	if len(scoped) == 0 {
		return nil, nil
	}

	phrase := strings.ToLower(strings.TrimSpace(queryText))
	tokens := tokenize(phrase)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("query is empty after tokenization")
	}

	// When the equipment filter already narrows the scope, its token would
	// double-count and inflate the minimum-score threshold.
	if f.EquipmentID != "" {
		eqTok := strings.ToLower(f.EquipmentID)
		kept := tokens[:0]
		for _, t := range tokens {
			if t != eqTok {
				kept = append(kept, t)
			}
		}
		tokens = kept
	}

	unique := map[string]struct{}{}
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	minScore := 2
	if len(unique) >= 2 {
		minScore = 4
	}

	var results []Result
	for _, w := range scoped {
		doc := buildSearchText(w)
		score := scoreText(doc, unique, phrase)
		if score < minScore {
			continue
		}
		results = append(results, Result{
			WorkOrderID: w.WorkOrderID,
			EquipmentID: w.EquipmentID,
			SymptomCode: w.SymptomCode,
			StartTS:     w.StartTS,
			Score:       score,
			Snippet:     makeSnippet(doc, tokens),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].StartTS.After(results[j].StartTS)
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// buildSearchText combines structured fields, description and comments into
// one normalized lowercase text field.
func buildSearchText(w models.WorkOrder) string {
	text := strings.ToLower(
		w.EquipmentID + " " + w.ProductLine + " " + w.SymptomCode + "\n" +
			w.Description + "\n" + w.Comments)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

func scoreText(doc string, uniqueTokens map[string]struct{}, phrase string) int {
	score := 0
	for tok := range uniqueTokens {
		if tok != "" && strings.Contains(doc, tok) {
			score += 2
		}
	}
	if phrase != "" && strings.Contains(doc, phrase) {
		score += 5
	}
	return score
}

func makeSnippet(doc string, tokens []string) string {
	for _, tok := range tokens {
		pos := strings.Index(doc, tok)
		if pos < 0 {
			continue
		}
		start := pos - snippetWindow
		if start < 0 {
			start = 0
		}
		end := pos + snippetWindow
		if end > len(doc) {
			end = len(doc)
		}
		return strings.TrimSpace(doc[start:end])
	}
	if len(doc) > 2*snippetWindow {
		doc = doc[:2*snippetWindow]
	}
	return strings.TrimSpace(doc)
}

// FormatResults renders search results into a deterministic grounded answer
// that cites work-order IDs. No language model involved.
func FormatResults(queryText string, results []Result, maxItems int) string {
	queryText = strings.TrimSpace(queryText)
	if len(results) == 0 {
		return fmt.Sprintf("No matches found for: '%s'. Try a different term or remove filters.", queryText)
	}

	show := len(results)
	if maxItems > 0 && show > maxItems {
		show = maxItems
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", queryText)
	fmt.Fprintf(&b, "Matches: %d (showing top %d)\n\n", len(results), show)

	for i := 0; i < show; i++ {
		r := results[i]
		snippet := strings.TrimSpace(strings.ReplaceAll(r.Snippet, "\n", " "))
		if len(snippet) > 220 {
			snippet = strings.TrimRight(snippet[:220], " ") + "..."
		}
		fmt.Fprintf(&b, "%d. work_order_id=%d | equipment=%s | symptom=%s | start=%s | score=%d\n",
			i+1, r.WorkOrderID, r.EquipmentID, r.SymptomCode, r.StartTS.Format("2006-01-02 15:04:05"), r.Score)
		fmt.Fprintf(&b, "   snippet: %s\n\n", snippet)
	}
	return strings.TrimRight(b.String(), "\n")
}
