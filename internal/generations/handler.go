package generations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/settham78ths/V2/internal/llm"
	"github.com/settham78ths/V2/internal/registry"
	"github.com/settham78ths/V2/internal/shared/server/middleware"
	"github.com/settham78ths/V2/internal/shared/server/respond"
	"github.com/settham78ths/V2/internal/uploads"
)

// Handler exposes the generation endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the generation routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/generations", h.create)
	rg.GET("/generations", h.list)
	rg.GET("/generations/:id", h.get)
	rg.GET("/compare", h.compare)
}

type createRequest struct {
	Operation   string `json:"operation" binding:"required"`
	UploadID    string `json:"uploadId"`
	CVText      string `json:"cvText"`
	JobText     string `json:"jobText"`
	TargetTitle string `json:"targetTitle"`
	CompanyName string `json:"companyName"`
	Feedback    string `json:"feedback"`
	Language    string `json:"language"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "operation is required", nil)
		return
	}
	// Upload text was validated at intake; pasted text gets the same
	// checks here before any budget is spent on it.
	if req.CVText != "" {
		if err := uploads.ValidateCVText(req.CVText); err != nil {
			var ve *uploads.ValidationError
			if errors.As(err, &ve) {
				respond.Error(c, http.StatusUnprocessableEntity, "invalid_cv_text", ve.Reason, nil)
				return
			}
			respond.Error(c, http.StatusUnprocessableEntity, "invalid_cv_text", err.Error(), nil)
			return
		}
	}

	id := middleware.IdentityFromContext(c)
	c.Set("operationId", req.Operation)

	result, err := h.svc.Generate(c.Request.Context(), Request{
		Operation:   registry.Operation(req.Operation),
		SessionID:   id.SessionID,
		UserID:      id.UserID,
		Username:    id.Username,
		UploadID:    req.UploadID,
		CVText:      req.CVText,
		JobText:     req.JobText,
		TargetTitle: req.TargetTitle,
		CompanyName: req.CompanyName,
		Feedback:    req.Feedback,
		Language:    req.Language,
	})
	if err != nil {
		WriteError(c, err)
		return
	}

	c.Set("generationId", result.ID)
	respond.Created(c, gin.H{
		"id":          result.ID,
		"operation":   string(result.Operation),
		"language":    result.Language,
		"tier":        result.Tier,
		"fields":      result.Fields,
		"text":        result.Text,
		"watermarked": result.Watermarked,
		"fallback":    result.Fallback,
	})
}

func (h *Handler) get(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	g, err := h.svc.Get(c.Request.Context(), id.SessionID, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "Generation not found", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Could not load generation", nil)
		return
	}
	respond.OK(c, generationView(g))
}

func (h *Handler) list(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.svc.List(c.Request.Context(), id.SessionID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Could not list generations", nil)
		return
	}
	views := make([]gin.H, 0, len(items))
	for _, g := range items {
		views = append(views, generationView(g))
	}
	respond.OK(c, gin.H{"items": views})
}

func (h *Handler) compare(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	cmp, err := h.svc.Compare(c.Request.Context(), id.SessionID)
	if errors.Is(err, ErrNothingToCompare) {
		respond.Error(c, http.StatusConflict, "nothing_to_compare", "Run the optimize operation first", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Could not load comparison", nil)
		return
	}
	respond.OK(c, cmp)
}

// WriteError maps pipeline errors onto the error taxonomy: gate
// rejections, invalid selections, and dispatch failures each get their
// own status and code. Shared by every handler that calls Generate.
func WriteError(c *gin.Context, err error) {
	var gateErr *GateRejectedError
	var transportErr *llm.TransportError
	var formatErr *llm.UpstreamFormatError
	var configErr *llm.ConfigurationError

	switch {
	case errors.Is(err, registry.ErrUnknownOperation):
		respond.Error(c, http.StatusBadRequest, "unknown_operation", "Invalid operation selection", nil)
	case errors.As(err, &gateErr):
		respond.Error(c, http.StatusPaymentRequired, "gate_rejected", "This feature requires an upgrade", gin.H{
			"hint": gateErr.Hint(),
		})
	case errors.Is(err, ErrMissingCVText):
		respond.Error(c, http.StatusUnprocessableEntity, "cv_text_required", "Provide cvText or an uploadId for this operation", nil)
	case errors.Is(err, uploads.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "upload_not_found", "Upload not found", nil)
	case errors.As(err, &transportErr), errors.As(err, &formatErr):
		respond.Error(c, http.StatusBadGateway, "processing_failed", "Processing failed, please retry later", nil)
	case errors.As(err, &configErr):
		respond.Error(c, http.StatusInternalServerError, "processing_failed", "Processing failed, please retry later", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
	}
}

func generationView(g Generation) gin.H {
	return gin.H{
		"id":          g.ID,
		"uploadId":    g.UploadID,
		"operation":   string(g.Operation),
		"language":    g.Language,
		"tier":        g.Tier,
		"watermarked": g.Watermarked,
		"fallback":    g.Fallback,
		"fields":      g.Fields,
		"rawText":     g.RawText,
		"text":        g.OutputText,
		"createdAt":   g.CreatedAt,
	}
}
