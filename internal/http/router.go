package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"immoapp/internal/domain"
	"immoapp/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	oauthCallbackSecret string,
	accountH *AccountHandler,
	listingH *ListingHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), noStoreMiddleware())

	auth := r.Group("/auth")
	auth.POST("/register", accountH.Register)
	auth.POST("/login", accountH.Login)
	auth.GET("/verify", accountH.VerifyEmail)
	auth.POST("/verify", accountH.VerifyEmail)
	auth.POST("/verify/resend", accountH.ResendVerification)
	auth.POST("/oauth", RequireCallbackSecret(oauthCallbackSecret), accountH.OAuthLogin)
	auth.POST("/refresh", accountH.RefreshToken)
	auth.POST("/logout", accountH.Logout)

	requireAuth := JWTAuthMiddleware(jwtSvc)

	r.GET("/profile", requireAuth, accountH.Profile)

	listings := r.Group("/listings")
	listings.GET("", listingH.ListListings)
	listings.GET("/:id", listingH.GetListing)
	listings.POST("", requireAuth, listingH.CreateListing)

	admin := r.Group("/admin", requireAuth, RequireRole(domain.RoleAdmin))
	admin.DELETE("/listings/:id", listingH.DeleteListing)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// noStoreMiddleware evita que proxies cacheen respuestas con datos de sesion.
func noStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Cache-Control", "no-store, max-age=0")
		c.Next()
	}
}
