package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"immoapp/internal/service"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var serviceErrors = []errorMapping{
	{service.ErrDuplicateEmail, http.StatusConflict, "email already registered"},
	{service.ErrAccountNotFound, http.StatusNotFound, "account not found"},
	{service.ErrAlreadyVerified, http.StatusConflict, "email already verified"},
	{service.ErrOAuthOnlyAccount, http.StatusForbidden, "please sign in with your external provider"},
	{service.ErrEmailNotVerified, http.StatusForbidden, "please verify your email before signing in"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
	{service.ErrInvalidOrExpiredToken, http.StatusBadRequest, "invalid or expired token"},
	{service.ErrEmailDeliveryFailed, http.StatusServiceUnavailable, "email delivery unavailable"},
	{service.ErrRateLimited, http.StatusTooManyRequests, "too many requests"},
	{service.ErrOAuthInvalid, http.StatusBadRequest, "invalid oauth data"},
	{service.ErrListingNotFound, http.StatusNotFound, "listing not found"},
}

// respondError traduce errores de servicio a respuestas HTTP.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": []*service.ValidationError{verr}})
		return
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			c.JSON(m.status, gin.H{"error": m.message})
			return
		}
	}
	logger.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
