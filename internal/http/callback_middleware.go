package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CallbackSecretHeader lleva el secreto compartido con el frontend que
// completa el flujo del proveedor OAuth.
const CallbackSecretHeader = "X-Callback-Secret"

// RequireCallbackSecret solo deja pasar llamadas del frontend de confianza.
// Sin secreto configurado la ruta queda deshabilitada.
func RequireCallbackSecret(secret string) gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(secret))
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "oauth not configured"})
			return
		}
		got := []byte(strings.TrimSpace(c.GetHeader(CallbackSecretHeader)))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid callback secret"})
			return
		}
		c.Next()
	}
}
