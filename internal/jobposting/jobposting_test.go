package jobposting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/settham78ths/V2/internal/generations"
	"github.com/settham78ths/V2/internal/llm"
	"github.com/settham78ths/V2/internal/session"
	"github.com/settham78ths/V2/internal/uploads"
	"github.com/settham78ths/V2/internal/users"
)

func TestExtractText(t *testing.T) {
	text, err := ExtractText(`<html><head>
		<style>body { color: red; }</style>
		<script>alert("hi")</script>
	</head><body>
		<h1>Senior Go Engineer</h1>
		<p>We are hiring a backend engineer.</p>
		<footer>Copyright</footer>
	</body></html>`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Senior Go Engineer") || !strings.Contains(text, "We are hiring a backend engineer.") {
		t.Fatalf("got %q", text)
	}
	if strings.Contains(text, "alert") || strings.Contains(text, "color: red") {
		t.Fatalf("script/style content leaked: %q", text)
	}
	if strings.Contains(text, "Copyright") {
		t.Fatalf("footer content leaked: %q", text)
	}
}

func TestExtractTextEmptyPage(t *testing.T) {
	_, err := ExtractText(`<html><body><script>x()</script></body></html>`)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("got %v, want ErrNoText", err)
	}
}

func TestExtractTextCapsLength(t *testing.T) {
	huge := "<p>" + strings.Repeat("word ", MaxTextChars) + "</p>"
	text, err := ExtractText(huge)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(text) > MaxTextChars {
		t.Fatalf("text not capped: %d chars", len(text))
	}
}

func TestFetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Backend Developer</h1></body></html>`))
	}))
	defer srv.Close()

	text, err := NewFetcher(5*time.Second).FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(text, "Backend Developer") {
		t.Fatalf("got %q", text)
	}
}

func TestFetchTextErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFetcher(5*time.Second).FetchText(context.Background(), srv.URL)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("got %v, want ErrFetchFailed", err)
	}
}

type stubClient struct {
	response string
	err      error
}

func (s stubClient) Complete(context.Context, llm.Request) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newAnalyzeRouter(client stubClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := generations.NewService(
		client, generations.NewMemoryRepository(), session.NewMemoryStore(),
		uploads.NewMemoryRepository(), users.NewMemoryRepository(), nil, "",
	)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("sessionId", "s-1")
		c.Next()
	})
	NewHandler(NewFetcher(time.Second), svc).Register(r.Group("/"))
	return r
}

func postAnalyze(r *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/job-postings/analyze", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeSuccess(t *testing.T) {
	r := newAnalyzeRouter(stubClient{response: `{"summary": "a Go role"}`})

	w := postAnalyze(r, map[string]any{"text": "We are hiring a Go engineer."})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Fields map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Fields["summary"] != "a Go role" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestAnalyzeErrorStatusesAreDistinct(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"transport failure", &llm.TransportError{StatusCode: 503, Detail: "down"}, http.StatusBadGateway},
		{"misconfigured client", &llm.ConfigurationError{Detail: "no api key"}, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newAnalyzeRouter(stubClient{err: tc.err})
			w := postAnalyze(r, map[string]any{"text": "We are hiring a Go engineer."})
			if w.Code != tc.wantCode {
				t.Fatalf("got status %d, want %d: %s", w.Code, tc.wantCode, w.Body.String())
			}
			var resp struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Error.Code != "processing_failed" {
				t.Fatalf("got code %q, want processing_failed", resp.Error.Code)
			}
		})
	}
}
