package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/settham78ths/V2/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Options{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: srv.URL,
	})
	return client, srv
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "hello from the model"}},
			},
		})
	})

	out, err := client.Complete(context.Background(), llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: "hi"}},
		MaxTokens:   3000,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "hello from the model" {
		t.Fatalf("got %q", out)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("got auth header %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Fatalf("got model %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(3000) {
		t.Fatalf("got max_tokens %v", gotBody["max_tokens"])
	}
}

func TestCompleteTransportError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := client.Complete(context.Background(), llm.Request{MaxTokens: 100})
	var te *llm.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("got %T (%v), want TransportError", err, err)
	}
	if te.StatusCode != http.StatusBadGateway {
		t.Fatalf("got status %d, want 502", te.StatusCode)
	}
}

func TestCompleteUpstreamFormatError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"choices": []}`},
		{"empty content", `{"choices": [{"message": {"content": ""}}]}`},
		{"not json", `<html>gateway timeout</html>`},
		{"provider error field", `{"error": {"message": "model overloaded"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.Complete(context.Background(), llm.Request{MaxTokens: 100})
			var fe *llm.UpstreamFormatError
			if !errors.As(err, &fe) {
				t.Fatalf("got %T (%v), want UpstreamFormatError", err, err)
			}
		})
	}
}

func TestCompleteMissingCredential(t *testing.T) {
	client := NewClient(Options{Model: "test-model"})
	_, err := client.Complete(context.Background(), llm.Request{MaxTokens: 100})
	var ce *llm.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("got %T (%v), want ConfigurationError", err, err)
	}
}

func TestCheckConfig(t *testing.T) {
	if err := NewClient(Options{APIKey: "k", Model: "m"}).CheckConfig(); err != nil {
		t.Fatalf("configured client: %v", err)
	}
	if err := NewClient(Options{Model: "m"}).CheckConfig(); err == nil {
		t.Fatal("missing key should fail config check")
	}
	if err := NewClient(Options{APIKey: "k"}).CheckConfig(); err == nil {
		t.Fatal("missing model should fail config check")
	}
}
