package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := &OllamaClient{Host: srv.URL, Model: "phi3:mini"}
	if !c.Available(context.Background()) {
		t.Fatalf("expected server to be available")
	}
}

func TestOllamaUnreachableIsUnavailable(t *testing.T) {
	c := &OllamaClient{Host: "http://127.0.0.1:1", Model: "phi3:mini"}
	if c.Available(context.Background()) {
		t.Fatalf("expected unreachable server to be unavailable")
	}
}

func TestOllamaSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Fatalf("expected non-streaming request")
		}
		if !strings.Contains(req.Prompt, "CNC-01 with 5 work orders") {
			t.Fatalf("prompt missing tool output: %s", req.Prompt)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "CNC-01 leads with 5 work orders."})
	}))
	defer srv.Close()

	c := &OllamaClient{Host: srv.URL, Model: "phi3:mini"}
	got, err := c.Synthesize(context.Background(), "which equipment has the most incidents", "CNC-01 with 5 work orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "CNC-01 leads with 5 work orders." {
		t.Fatalf("unexpected synthesis: %q", got)
	}
}

func TestOllamaSynthesizeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &OllamaClient{Host: srv.URL, Model: "phi3:mini"}
	if _, err := c.Synthesize(context.Background(), "q", "a"); err == nil {
		t.Fatalf("expected error on http failure")
	}
}

func TestOllamaSynthesizeEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "  "})
	}))
	defer srv.Close()

	c := &OllamaClient{Host: srv.URL, Model: "phi3:mini"}
	if _, err := c.Synthesize(context.Background(), "q", "a"); err == nil {
		t.Fatalf("expected error on empty response")
	}
}
