package generations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/settham78ths/V2/internal/llm"
)

const sampleCVText = `Jan Kowalski, backend engineer with eight years of experience building
payment and logistics systems in Go and PostgreSQL. Led a team of four,
reduced p99 latency by 40 percent, and maintains two open source libraries.`

func newHandlerRouter(client *fakeClient) (*gin.Engine, *fixture) {
	gin.SetMode(gin.TestMode)
	f := newFixture(client)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("sessionId", "s-1")
		c.Next()
	})
	NewHandler(f.svc).Register(r.Group("/"))
	return r, f
}

func postGeneration(r *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/generations", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateGenerationGateRejectedResponse(t *testing.T) {
	r, _ := newHandlerRouter(&fakeClient{})

	w := postGeneration(r, map[string]any{
		"operation": "cover_letter",
		"cvText":    sampleCVText,
	})
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("got status %d, want 402", w.Code)
	}
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Hint string `json:"hint"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "gate_rejected" || resp.Error.Details.Hint == "" {
		t.Fatalf("unexpected error body: %s", w.Body.String())
	}
}

func TestCreateGenerationUnknownOperationResponse(t *testing.T) {
	r, _ := newHandlerRouter(&fakeClient{})
	w := postGeneration(r, map[string]any{"operation": "summon_dragon"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestCreateGenerationTransportErrorResponse(t *testing.T) {
	r, f := newHandlerRouter(&fakeClient{err: &llm.TransportError{StatusCode: 503, Detail: "down"}})
	markPaid(t, f, "s-1")

	w := postGeneration(r, map[string]any{
		"operation": "optimize",
		"cvText":    sampleCVText,
	})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("got status %d, want 502", w.Code)
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
}

func TestCreateGenerationShortCVTextRejected(t *testing.T) {
	r, f := newHandlerRouter(&fakeClient{response: `{"optimized_cv": "Better"}`})
	markPaid(t, f, "s-1")

	w := postGeneration(r, map[string]any{
		"operation": "optimize",
		"cvText":    "cv",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "invalid_cv_text" {
		t.Fatalf("got code %q, want invalid_cv_text", resp.Error.Code)
	}
	if f.client.calls != 0 {
		t.Fatal("rejected text must not reach the model")
	}
}

func TestCreateGenerationWithoutCVTextRejected(t *testing.T) {
	r, f := newHandlerRouter(&fakeClient{response: `{"optimized_cv": "Better"}`})
	markPaid(t, f, "s-1")

	w := postGeneration(r, map[string]any{"operation": "optimize"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "cv_text_required" {
		t.Fatalf("got code %q, want cv_text_required", resp.Error.Code)
	}
	if f.client.calls != 0 {
		t.Fatal("no model call may happen without CV text")
	}
}

func TestCreateGenerationSuccessResponse(t *testing.T) {
	r, f := newHandlerRouter(&fakeClient{response: `{"optimized_cv": "Better CV"}`})
	markPaid(t, f, "s-1")

	w := postGeneration(r, map[string]any{
		"operation": "optimize",
		"cvText":    sampleCVText,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID          string `json:"id"`
		Text        string `json:"text"`
		Watermarked bool   `json:"watermarked"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == "" || resp.Text != "Better CV" || resp.Watermarked {
		t.Fatalf("unexpected response: %s", w.Body.String())
	}
}
