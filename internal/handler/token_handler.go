package handler

import (
	"net/http"

	"lumo/internal/services"
	"lumo/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenHandler handles the organizer-facing token management endpoints
// plus the public token info lookup used by the guest upload page.
type TokenHandler struct {
	service *services.TokenService
}

func NewTokenHandler(service *services.TokenService) *TokenHandler {
	return &TokenHandler{service: service}
}

func (h *TokenHandler) Create(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	t, err := h.service.Create(c.Request.Context(), services.CreateTokenInput{
		UserID:     userID,
		Name:       req.Name,
		MaxUploads: req.MaxUploads,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		status, code := statusAndCode(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(t))
}

func (h *TokenHandler) List(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	tokens, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		status, code := statusAndCode(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"tokens": tokens}))
}

func (h *TokenHandler) Delete(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	tokenID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid token id", "INVALID_REQUEST"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, tokenID); err != nil {
		status, code := statusAndCode(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// Info is the public lookup behind the guest upload page. It requires no
// authentication; the token value itself is the credential.
func (h *TokenHandler) Info(c *gin.Context) {
	info, err := h.service.Info(c.Request.Context(), c.Param("value"))
	if err != nil {
		status, code := statusAndCode(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(info))
}
