package llm

import "context"

// Synthesizer rewrites a deterministic tool answer into conversational
// phrasing. It must never alter factual content; callers treat any failure
// as "keep the deterministic answer".
type Synthesizer interface {
	Available(ctx context.Context) bool
	Synthesize(ctx context.Context, question string, toolOutput string) (string, error)
}
