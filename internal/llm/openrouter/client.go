// Package openrouter implements the llm.Client boundary against the
// OpenRouter chat-completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/settham78ths/V2/internal/llm"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Options configures the client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client talks to OpenRouter. One Complete call is one HTTP request;
// there is no retry loop here.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client. A missing API key is not fatal here so the
// server can still boot and report the problem via health checks.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CheckConfig reports whether the client has a usable credential.
func (c *Client) CheckConfig() error {
	if c.apiKey == "" {
		return &llm.ConfigurationError{Detail: "OPENROUTER_API_KEY is not set"}
	}
	if c.model == "" {
		return &llm.ConfigurationError{Detail: "LLM_MODEL is not set"}
	}
	return nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat-completion request and returns the raw text
// of the first choice.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if err := c.CheckConfig(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &llm.TransportError{Detail: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &llm.TransportError{StatusCode: resp.StatusCode, Detail: "read response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &llm.TransportError{
			StatusCode: resp.StatusCode,
			Detail:     truncate(string(body), 500),
		}
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &llm.UpstreamFormatError{Detail: "response is not valid JSON"}
	}
	if decoded.Error != nil {
		return "", &llm.UpstreamFormatError{Detail: truncate(decoded.Error.Message, 500)}
	}
	if len(decoded.Choices) == 0 {
		return "", &llm.UpstreamFormatError{Detail: "response has no choices"}
	}
	content := decoded.Choices[0].Message.Content
	if content == "" {
		return "", &llm.UpstreamFormatError{Detail: "first choice has empty content"}
	}
	return content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
