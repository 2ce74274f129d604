package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OllamaClient synthesizes answers through a local Ollama server. A single
// failed attempt is final; there are no retries.
type OllamaClient struct {
	Host        string
	Model       string
	Temperature float64
	MaxTokens   int
	Client      *http.Client
}

const (
	probeTimeout    = 1500 * time.Millisecond
	generateTimeout = 30 * time.Second
)

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Available reports whether the Ollama server answers its tags endpoint.
func (o *OllamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL()+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client().Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Synthesize sends the deterministic answer as grounding context and returns
// the model's one-sentence rewrite.
func (o *OllamaClient) Synthesize(ctx context.Context, question string, toolOutput string) (string, error) {
	timeout := generateTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := generateRequest{
		Model:  o.Model,
		Prompt: buildPrompt(question, toolOutput),
		Stream: false,
		Options: generateOptions{
			Temperature: o.Temperature,
			NumPredict:  o.maxTokens(),
		},
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL()+"/api/generate", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama http error: %s", resp.Status)
	}

	var r generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	text := strings.TrimSpace(r.Response)
	if text == "" {
		return "", fmt.Errorf("empty ollama response")
	}
	return text, nil
}

func buildPrompt(question string, toolOutput string) string {
	return "You are a maintenance analytics assistant.\n" +
		"You MUST answer using ONLY the TOOL OUTPUT.\n" +
		"Do NOT invent details.\n" +
		"Do NOT change numbers.\n\n" +
		"QUESTION:\n" + question + "\n\n" +
		"TOOL OUTPUT (source of truth):\n" + toolOutput + "\n\n" +
		"Write a concise answer in 1 sentence. " +
		"If TOOL OUTPUT is a number, restate it clearly.\n"
}

func (o *OllamaClient) baseURL() string {
	host := strings.TrimRight(o.Host, "/")
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	return host
}

func (o *OllamaClient) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

func (o *OllamaClient) maxTokens() int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return 180
}
