package llm

import (
	"context"
	"fmt"
)

// MockSynthesizer is a deterministic stand-in for a local model, used in dev
// setups and tests. It wraps the tool output without touching its content.
type MockSynthesizer struct {
	ModelVersion string
}

func (m MockSynthesizer) Available(ctx context.Context) bool {
	return true
}

func (m MockSynthesizer) Synthesize(ctx context.Context, question string, toolOutput string) (string, error) {
	return fmt.Sprintf("Based on the maintenance log, the answer is: %s", toolOutput), nil
}
