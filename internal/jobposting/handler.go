package jobposting

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/settham78ths/V2/internal/generations"
	"github.com/settham78ths/V2/internal/registry"
	"github.com/settham78ths/V2/internal/shared/server/middleware"
	"github.com/settham78ths/V2/internal/shared/server/respond"
)

// Handler exposes job posting analysis.
type Handler struct {
	fetcher *Fetcher
	svc     *generations.Service
}

func NewHandler(fetcher *Fetcher, svc *generations.Service) *Handler {
	return &Handler{fetcher: fetcher, svc: svc}
}

// Register mounts the job posting routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/job-postings/analyze", h.analyze)
}

type analyzeRequest struct {
	URL      string `json:"url"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.URL == "" && req.Text == "") {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Provide a url or a text field", nil)
		return
	}

	jobText := req.Text
	if jobText == "" {
		fetched, err := h.fetcher.FetchText(c.Request.Context(), req.URL)
		if err != nil {
			if errors.Is(err, ErrNoText) {
				respond.Error(c, http.StatusUnprocessableEntity, "no_readable_text", "The page contains no readable text, paste the posting instead", nil)
				return
			}
			respond.Error(c, http.StatusBadGateway, "fetch_failed", "Could not fetch the job posting, paste the text instead", nil)
			return
		}
		jobText = fetched
	}

	id := middleware.IdentityFromContext(c)
	result, err := h.svc.Generate(c.Request.Context(), generations.Request{
		Operation: registry.OpJobPostingAnalysis,
		SessionID: id.SessionID,
		UserID:    id.UserID,
		Username:  id.Username,
		JobText:   jobText,
		Language:  req.Language,
	})
	if err != nil {
		generations.WriteError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"id":       result.ID,
		"fields":   result.Fields,
		"text":     result.Text,
		"fallback": result.Fallback,
	})
}
