package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/settham78ths/V2/internal/shared/server/middleware"
	"github.com/settham78ths/V2/internal/shared/server/respond"
)

// Handler exposes payment verification endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the billing routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/payments/verify", h.verifySessionPayment)
	rg.POST("/payments/cv-builder/verify", h.verifyCVBuilderPayment)
	rg.POST("/premium/activate", h.activatePremium)
}

type verifyRequest struct {
	IntentID string `json:"intentId" binding:"required"`
}

func (h *Handler) verifySessionPayment(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "intentId is required", nil)
		return
	}
	id := middleware.IdentityFromContext(c)
	if err := h.svc.VerifySessionPayment(c.Request.Context(), id.SessionID, req.IntentID); err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"paidAccess": true})
}

func (h *Handler) verifyCVBuilderPayment(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "intentId is required", nil)
		return
	}
	id := middleware.IdentityFromContext(c)
	if err := h.svc.VerifyCVBuilderPayment(c.Request.Context(), id.SessionID, req.IntentID); err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"cvBuilderAccess": true})
}

func (h *Handler) activatePremium(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "intentId is required", nil)
		return
	}
	id := middleware.IdentityFromContext(c)
	if id.Guest {
		respond.Error(c, http.StatusUnauthorized, "account_required", "Premium requires a signed-in account", nil)
		return
	}
	until, err := h.svc.ActivatePremium(c.Request.Context(), id.UserID, req.IntentID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"premiumUntil": until})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, ErrPaymentNotVerified) {
		respond.Error(c, http.StatusPaymentRequired, "payment_not_verified", "Payment could not be verified", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
}
