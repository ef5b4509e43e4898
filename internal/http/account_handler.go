package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"immoapp/internal/domain"
	"immoapp/internal/service"
)

// AccountHandler mantiene dependencias para endpoints de autenticacion.
type AccountHandler struct {
	logger      *zap.Logger
	accountServ *service.AccountService
	jwtServ     *service.JWTService
}

// NewAccountHandler crea una instancia de AccountHandler con dependencias necesarias.
func NewAccountHandler(logger *zap.Logger, accountServ *service.AccountService, jwtServ *service.JWTService) *AccountHandler {
	return &AccountHandler{
		logger:      logger,
		accountServ: accountServ,
		jwtServ:     jwtServ,
	}
}

// Register maneja POST /auth/register.
func (h *AccountHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	_, err := h.accountServ.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "verification_sent"})
}

// Login maneja POST /auth/login.
func (h *AccountHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	account, err := h.accountServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}
	h.respondWithSession(c, account)
}

// VerifyEmail maneja GET /auth/verify?token= y POST /auth/verify.
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if c.Request.Method == http.MethodPost {
		var req struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid verify request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		token = req.Token
	}

	if _, err := h.accountServ.VerifyEmail(c.Request.Context(), token); err != nil {
		respondError(c, h.logger, "verify email", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "verified"})
}

// ResendVerification maneja POST /auth/verify/resend.
func (h *AccountHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid resend request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if _, err := h.accountServ.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, "resend verification", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "verification_sent"})
}

// OAuthLogin maneja POST /auth/oauth.
func (h *AccountHandler) OAuthLogin(c *gin.Context) {
	var req struct {
		Provider string `json:"provider" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name"`
		Image    string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid oauth request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	account, err := h.accountServ.SignInOAuth(c.Request.Context(), service.OAuthInput{
		Provider: req.Provider,
		Email:    req.Email,
		Name:     req.Name,
		Image:    req.Image,
	})
	if err != nil {
		respondError(c, h.logger, "oauth login", err)
		return
	}
	h.respondWithSession(c, account)
}

// RefreshToken maneja POST /auth/refresh.
func (h *AccountHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid refresh request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return
	}
	tokens, err := h.jwtServ.RefreshPair(c.Request.Context(), req.RefreshToken, h.accountServ.GetAccount)
	if err != nil {
		if errors.Is(err, service.ErrJWTInvalid) || errors.Is(err, service.ErrJWTExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		respondError(c, h.logger, "refresh token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout.
func (h *AccountHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid logout request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return
	}
	if err := h.jwtServ.RevokeRefresh(req.RefreshToken); err != nil {
		if errors.Is(err, service.ErrJWTInvalid) || errors.Is(err, service.ErrJWTExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		h.logger.Warn("refresh token revoke failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not revoke session"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Profile maneja GET /profile.
func (h *AccountHandler) Profile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	account, err := h.accountServ.GetAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		respondError(c, h.logger, "profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account})
}

func (h *AccountHandler) respondWithSession(c *gin.Context, account domain.Account) {
	if h.jwtServ == nil {
		h.logger.Error("jwt issue failed", zap.Error(errors.New("jwt not configured")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	tokens, err := h.jwtServ.GeneratePair(account)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account, "tokens": tokens})
}
