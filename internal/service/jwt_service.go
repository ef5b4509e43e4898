package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"immoapp/internal/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTService emite y valida los tokens de sesion.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	store      RefreshTokenStore
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Claims struct {
	AccountID     string      `json:"uid"`
	Email         string      `json:"email"`
	Name          string      `json:"name,omitempty"`
	Role          domain.Role `json:"role"`
	EmailVerified bool        `json:"email_verified"`
	TokenType     string      `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     "immoapp",
		store:      NewMemoryRefreshTokenStore(),
	}
}

func NewJWTServiceWithStore(secret string, accessTTL, refreshTTL time.Duration, store RefreshTokenStore) *JWTService {
	svc := NewJWTService(secret, accessTTL, refreshTTL)
	if store != nil {
		svc.store = store
	}
	return svc
}

func (s *JWTService) GeneratePair(account domain.Account) (TokenPair, error) {
	if len(s.secret) == 0 {
		return TokenPair{}, ErrJWTInvalid
	}
	now := time.Now().UTC()
	access, _, err := s.sign(account, now, s.accessTTL, tokenTypeAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, jti, err := s.sign(account, now, s.refreshTTL, tokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	if s.store != nil {
		if err := s.store.Store(jti, account.ID, s.refreshTTL); err != nil {
			return TokenPair{}, err
		}
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// AccountLoader devuelve el estado actual de una cuenta.
type AccountLoader func(ctx context.Context, accountID string) (domain.Account, error)

// RefreshPair rota el refresh token: el anterior queda revocado y el nuevo par
// se firma con el estado actual de la cuenta, no con los claims del token viejo.
func (s *JWTService) RefreshPair(ctx context.Context, refreshToken string, load AccountLoader) (TokenPair, error) {
	if load == nil {
		return TokenPair{}, ErrJWTInvalid
	}
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	owner, err := s.store.Owner(claims.ID)
	if err != nil || owner != claims.AccountID {
		return TokenPair{}, ErrJWTInvalid
	}

	account, err := load(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			_ = s.store.Revoke(claims.ID)
			return TokenPair{}, ErrJWTInvalid
		}
		return TokenPair{}, err
	}
	if err := s.store.Revoke(claims.ID); err != nil {
		return TokenPair{}, ErrJWTInvalid
	}
	return s.GeneratePair(account)
}

func (s *JWTService) RevokeRefresh(refreshToken string) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}
	return s.store.Revoke(claims.ID)
}

func (s *JWTService) ParseAccessToken(accessToken string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(accessToken) == "" {
		return Claims{}, ErrJWTInvalid
	}
	claims, err := s.parseToken(accessToken)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenTypeAccess || !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) parseRefresh(refreshToken string) (Claims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(refreshToken) == "" {
		return Claims{}, ErrJWTInvalid
	}
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenTypeRefresh || !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	if claims.ID == "" || s.store == nil {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) sign(account domain.Account, now time.Time, ttl time.Duration, tokenType string) (string, string, error) {
	jti := uuid.NewString()
	role := account.Role
	if role == "" {
		role = domain.RoleUser
	}
	claims := Claims{
		AccountID:     account.ID,
		Email:         account.Email,
		Name:          account.Name,
		Role:          role,
		EmailVerified: account.IsVerified(),
		TokenType:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, jti, err
}

func (s *JWTService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.AccountID) == "" {
		return false
	}
	if claims.Subject != claims.AccountID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
