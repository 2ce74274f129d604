package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maintlog/backend/internal/assistant"
)

// Suite is a fixed question set with expected answers, used to validate
// assistant behavior. Multi-turn conversations share one conversation state.
type Suite struct {
	SingleTurn []Question     `json:"single_turn"`
	MultiTurn  []Conversation `json:"multi_turn"`
}

type Question struct {
	ID             string `json:"id"`
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
}

type Conversation struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Turns []Question `json:"turns"`
}

// Report pairs asked questions with expected vs. actual answers.
type Report struct {
	Timestamp  string               `json:"timestamp"`
	SingleTurn []TurnResult         `json:"single_turn"`
	MultiTurn  []ConversationResult `json:"multi_turn"`
}

type TurnResult struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question"`
	Expected string `json:"expected"`
	Output   string `json:"output"`
}

type ConversationResult struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Turns []TurnResult `json:"turns"`
}

// LoadSuite reads the question-suite JSON fixture.
func LoadSuite(path string) (Suite, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("read question suite: %w", err)
	}
	var s Suite
	if err := json.Unmarshal(b, &s); err != nil {
		return Suite{}, fmt.Errorf("parse question suite: %w", err)
	}
	return s, nil
}

// Runner executes a suite against an assistant.
type Runner struct {
	Assistant *assistant.Assistant
	Logger    zerolog.Logger
}

// Run answers every question in the suite and collects expected/actual pairs.
func (r *Runner) Run(ctx context.Context, suite Suite) Report {
	report := Report{Timestamp: time.Now().Format(time.RFC3339)}

	for _, q := range suite.SingleTurn {
		output := r.Assistant.Answer(ctx, q.Question)
		r.Logger.Info().Str("id", q.ID).Str("question", q.Question).Str("output", output).Msg("single turn")
		report.SingleTurn = append(report.SingleTurn, TurnResult{
			ID:       q.ID,
			Question: q.Question,
			Expected: q.ExpectedAnswer,
			Output:   output,
		})
	}

	for _, convo := range suite.MultiTurn {
		state := assistant.NewConversationState()
		result := ConversationResult{ID: convo.ID, Name: convo.Name}
		for _, turn := range convo.Turns {
			output := r.Assistant.AnswerWithState(ctx, turn.Question, state)
			r.Logger.Info().Str("conversation", convo.ID).Str("question", turn.Question).Str("output", output).Msg("multi turn")
			result.Turns = append(result.Turns, TurnResult{
				Question: turn.Question,
				Expected: turn.ExpectedAnswer,
				Output:   output,
			})
		}
		report.MultiTurn = append(report.MultiTurn, result)
	}
	return report
}

// WriteReport persists the report in both the human-readable text layout and
// the structured JSON record format.
func WriteReport(dir string, report Report) (txtPath string, jsonPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create results dir: %w", err)
	}

	txtPath = filepath.Join(dir, "test_results.txt")
	jsonPath = filepath.Join(dir, "test_results.json")

	if err := os.WriteFile(txtPath, []byte(formatText(report)), 0o644); err != nil {
		return "", "", fmt.Errorf("write text results: %w", err)
	}

	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", "", err
	}
	if err := os.WriteFile(jsonPath, b, 0o644); err != nil {
		return "", "", fmt.Errorf("write json results: %w", err)
	}
	return txtPath, jsonPath, nil
}

func formatText(report Report) string {
	divider := strings.Repeat("-", 50) + "\n"

	var b strings.Builder
	for _, st := range report.SingleTurn {
		fmt.Fprintf(&b, "Q: %s\n", st.Question)
		fmt.Fprintf(&b, "Expected: %s\n", st.Expected)
		fmt.Fprintf(&b, "Output: %s\n", st.Output)
		b.WriteString(divider)
	}

	b.WriteString("\nMULTI TURN\n\n")
	for _, mt := range report.MultiTurn {
		fmt.Fprintf(&b, "Conversation: %s (%s)\n\n", mt.ID, mt.Name)
		for _, turn := range mt.Turns {
			fmt.Fprintf(&b, "Q: %s\n", turn.Question)
			fmt.Fprintf(&b, "Expected: %s\n", turn.Expected)
			fmt.Fprintf(&b, "Output: %s\n", turn.Output)
			b.WriteString(divider)
		}
	}
	return b.String()
}
