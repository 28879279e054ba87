package uploads

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/settham78ths/V2/internal/extract"
	"github.com/settham78ths/V2/internal/session"
	"github.com/settham78ths/V2/internal/shared/server/middleware"
	"github.com/settham78ths/V2/internal/shared/server/respond"
	"github.com/settham78ths/V2/internal/shared/telemetry"
)

const maxUploadBytes = 10 << 20

// Handler accepts CV uploads as a file or pasted text.
type Handler struct {
	repo     Repository
	sessions session.Store
}

func NewHandler(repo Repository, sessions session.Store) *Handler {
	return &Handler{repo: repo, sessions: sessions}
}

// Register mounts the upload routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/uploads", h.create)
	rg.GET("/uploads/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	text, filename, contentType, size, ok := h.readInput(c)
	if !ok {
		return
	}

	if err := ValidateCVText(text); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			respond.Error(c, http.StatusUnprocessableEntity, "invalid_cv_text", ve.Reason, nil)
			return
		}
		respond.Error(c, http.StatusUnprocessableEntity, "invalid_cv_text", err.Error(), nil)
		return
	}

	upload := Upload{
		ID:          uuid.NewString(),
		SessionID:   id.SessionID,
		UserID:      id.UserID,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   size,
		Text:        text,
	}
	if err := h.repo.Create(c.Request.Context(), upload); err != nil {
		telemetry.Error("upload.create_failed", map[string]any{
			"session_id": id.SessionID,
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal", "Could not store upload", nil)
		return
	}

	// The stored original feeds the compare endpoint later.
	state, err := h.sessions.Get(c.Request.Context(), id.SessionID)
	if err == nil {
		state.OriginalText = text
		if err := h.sessions.Save(c.Request.Context(), state); err != nil {
			telemetry.Warn("upload.session_save_failed", map[string]any{
				"session_id": id.SessionID,
				"error":      err.Error(),
			})
		}
	}

	respond.Created(c, gin.H{
		"id":    upload.ID,
		"text":  upload.Text,
		"chars": len(upload.Text),
	})
}

func (h *Handler) get(c *gin.Context) {
	upload, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "Upload not found", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Could not load upload", nil)
		return
	}
	if upload.SessionID != middleware.IdentityFromContext(c).SessionID {
		respond.Error(c, http.StatusNotFound, "not_found", "Upload not found", nil)
		return
	}
	respond.OK(c, gin.H{
		"id":        upload.ID,
		"filename":  upload.Filename,
		"text":      upload.Text,
		"createdAt": upload.CreatedAt,
	})
}

// readInput supports multipart file upload and a JSON body with pasted
// text. Reports false after writing an error response.
func (h *Handler) readInput(c *gin.Context) (text, filename, contentType string, size int64, ok bool) {
	if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "file field is required", nil)
			return "", "", "", 0, false
		}
		if fileHeader.Size > maxUploadBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the 10 MB limit", nil)
			return "", "", "", 0, false
		}
		f, err := fileHeader.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "Could not read uploaded file", nil)
			return "", "", "", 0, false
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "Could not read uploaded file", nil)
			return "", "", "", 0, false
		}

		ct := fileHeader.Header.Get("Content-Type")
		extracted, err := extract.Text(fileHeader.Filename, ct, data)
		if err != nil {
			respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "Could not read the file, paste the text instead", nil)
			return "", "", "", 0, false
		}
		return extracted, fileHeader.Filename, ct, fileHeader.Size, true
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Provide a file or a text field", nil)
		return "", "", "", 0, false
	}
	return req.Text, "pasted.txt", "text/plain", int64(len(req.Text)), true
}
