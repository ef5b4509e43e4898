package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"immoapp/internal/domain"
	"immoapp/internal/email"
	"immoapp/internal/repository"
)

const (
	DefaultVerificationTokenTTL = 24 * time.Hour
	DefaultMinPasswordLength    = 8
)

// AccountService coordina registro, login y verificacion de email.
type AccountService struct {
	logger            *zap.Logger
	accounts          repository.AccountRepository
	emailSender       email.Sender
	resendLimiter     ResendRateLimiter
	hasher            PasswordHasher
	newToken          TokenSource
	now               func() time.Time
	tokenTTL          time.Duration
	minPasswordLength int
	// dummyHash iguala el coste de bcrypt cuando el email no existe.
	dummyHash string
}

type AccountServiceOption func(*AccountService)

func WithPasswordHasher(h PasswordHasher) AccountServiceOption {
	return func(s *AccountService) {
		if h != nil {
			s.hasher = h
		}
	}
}

func WithVerificationTokenTTL(ttl time.Duration) AccountServiceOption {
	return func(s *AccountService) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func WithMinPasswordLength(n int) AccountServiceOption {
	return func(s *AccountService) {
		if n > 0 {
			s.minPasswordLength = n
		}
	}
}

func WithClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithTokenSource(src TokenSource) AccountServiceOption {
	return func(s *AccountService) {
		if src != nil {
			s.newToken = src
		}
	}
}

func NewAccountService(
	logger *zap.Logger,
	accounts repository.AccountRepository,
	emailSender email.Sender,
	resendLimiter ResendRateLimiter,
	opts ...AccountServiceOption,
) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AccountService{
		logger:            logger,
		accounts:          accounts,
		emailSender:       emailSender,
		resendLimiter:     resendLimiter,
		hasher:            NewBcryptHasher(DefaultBcryptCost),
		newToken:          randomHexToken,
		now:               func() time.Time { return time.Now().UTC() },
		tokenTTL:          DefaultVerificationTokenTTL,
		minPasswordLength: DefaultMinPasswordLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	if h, err := s.hasher.Hash(uuid.NewString()); err == nil {
		s.dummyHash = h
	}
	return s
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Register crea una cuenta sin verificar y envia el enlace de verificacion.
// Si el email pertenece a una cuenta aun no verificada, solo se reemite el token.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (domain.Account, error) {
	if s.accounts == nil {
		return domain.Account{}, errors.New("account service not configured")
	}

	reg := registration{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
	}
	if err := s.validateRegistration(reg); err != nil {
		return domain.Account{}, err
	}

	existing, err := s.accounts.GetByEmail(ctx, reg.Email)
	if err == nil {
		if existing.IsVerified() {
			return domain.Account{}, ErrDuplicateEmail
		}
		return s.issueVerification(ctx, existing)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, storageFailure(err)
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return domain.Account{}, err
	}
	token, err := s.newToken()
	if err != nil {
		return domain.Account{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	account := domain.Account{
		ID:                         uuid.NewString(),
		Email:                      reg.Email,
		Name:                       reg.Name,
		Role:                       domain.RoleUser,
		PasswordHash:               &hash,
		VerificationToken:          &token,
		VerificationTokenExpiresAt: &expiresAt,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.Account{}, ErrDuplicateEmail
		}
		return domain.Account{}, storageFailure(err)
	}

	if err := s.sendVerification(ctx, account.Email, token); err != nil {
		if delErr := s.accounts.Delete(ctx, account.ID); delErr != nil {
			s.logger.Error("compensating delete failed",
				zap.Error(delErr),
				zap.String("account_id", account.ID),
			)
		}
		return domain.Account{}, err
	}

	return account, nil
}

// Authenticate valida credenciales locales. No emite sesion.
func (s *AccountService) Authenticate(ctx context.Context, emailAddr, password string) (domain.Account, error) {
	if s.accounts == nil {
		return domain.Account{}, errors.New("account service not configured")
	}

	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" || password == "" {
		s.hasher.Compare(password, s.dummyHash)
		return domain.Account{}, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.hasher.Compare(password, s.dummyHash)
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, storageFailure(err)
	}

	// Se compara siempre para que todas las ramas cuesten un bcrypt.
	var match bool
	if account.PasswordHash != nil {
		match = s.hasher.Compare(password, *account.PasswordHash)
	} else {
		s.hasher.Compare(password, s.dummyHash)
	}

	switch {
	case account.IsOAuthOnly():
		return domain.Account{}, ErrOAuthOnlyAccount
	case !account.IsVerified():
		return domain.Account{}, ErrEmailNotVerified
	case !match:
		return domain.Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// ResendVerification reemplaza el token pendiente y lo reenvia.
func (s *AccountService) ResendVerification(ctx context.Context, emailAddr string) (domain.Account, error) {
	if s.accounts == nil {
		return domain.Account{}, errors.New("account service not configured")
	}

	emailAddr = strings.TrimSpace(emailAddr)
	if !isEmailShaped(emailAddr) {
		return domain.Account{}, &ValidationError{Field: "email", Message: "invalid email format"}
	}

	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, storageFailure(err)
	}
	if account.IsVerified() {
		return domain.Account{}, ErrAlreadyVerified
	}
	if s.resendLimiter != nil && !s.resendLimiter.Allow(emailAddr) {
		return domain.Account{}, ErrRateLimited
	}

	return s.issueVerification(ctx, account)
}

// VerifyEmail consume un token de verificacion de un solo uso.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (domain.Account, error) {
	if s.accounts == nil {
		return domain.Account{}, errors.New("account service not configured")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Account{}, ErrInvalidOrExpiredToken
	}

	account, err := s.accounts.ConsumeVerificationToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrInvalidOrExpiredToken
		}
		return domain.Account{}, storageFailure(err)
	}
	return account, nil
}

type OAuthInput struct {
	Provider string
	Email    string
	Name     string
	Image    string
}

// SignInOAuth reconcilia una identidad externa ya verificada con una cuenta local.
func (s *AccountService) SignInOAuth(ctx context.Context, input OAuthInput) (domain.Account, error) {
	if s.accounts == nil {
		return domain.Account{}, errors.New("account service not configured")
	}

	emailAddr := strings.TrimSpace(input.Email)
	name := strings.TrimSpace(input.Name)
	image := strings.TrimSpace(input.Image)
	if !isEmailShaped(emailAddr) {
		return domain.Account{}, ErrOAuthInvalid
	}

	existing, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err == nil {
		return s.refreshProfile(ctx, existing, name, image)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, storageFailure(err)
	}

	if name == "" {
		name = strings.SplitN(emailAddr, "@", 2)[0]
	}
	now := s.now()
	account := domain.Account{
		ID:              uuid.NewString(),
		Email:           emailAddr,
		Name:            name,
		Image:           image,
		Role:            domain.RoleUser,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Otra peticion creo la cuenta entre la lectura y el insert.
			existing, err := s.accounts.GetByEmail(ctx, emailAddr)
			if err != nil {
				return domain.Account{}, storageFailure(err)
			}
			return existing, nil
		}
		return domain.Account{}, storageFailure(err)
	}

	s.logger.Info("oauth account created",
		zap.String("account_id", account.ID),
		zap.String("provider", input.Provider),
	)
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	if s.accounts == nil {
		return domain.Account{}, errors.New("account service not configured")
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, storageFailure(err)
	}
	return account, nil
}

func (s *AccountService) refreshProfile(ctx context.Context, account domain.Account, name, image string) (domain.Account, error) {
	newName := account.Name
	if newName == "" && name != "" {
		newName = name
	}
	newImage := account.Image
	if image != "" {
		newImage = image
	}
	if newName == account.Name && newImage == account.Image {
		return account, nil
	}
	if err := s.accounts.UpdateProfile(ctx, account.ID, newName, newImage); err != nil {
		return domain.Account{}, storageFailure(err)
	}
	account.Name = newName
	account.Image = newImage
	return account, nil
}

// issueVerification sobrescribe token y expiracion, dejando invalido el anterior.
func (s *AccountService) issueVerification(ctx context.Context, account domain.Account) (domain.Account, error) {
	token, err := s.newToken()
	if err != nil {
		return domain.Account{}, err
	}
	expiresAt := s.now().Add(s.tokenTTL)

	if err := s.accounts.SetVerificationToken(ctx, account.ID, token, expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrAlreadyVerified
		}
		return domain.Account{}, storageFailure(err)
	}
	account.VerificationToken = &token
	account.VerificationTokenExpiresAt = &expiresAt

	if err := s.sendVerification(ctx, account.Email, token); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (s *AccountService) sendVerification(ctx context.Context, to, token string) error {
	if s.emailSender == nil {
		return ErrEmailDeliveryFailed
	}
	if err := s.emailSender.SendVerificationEmail(ctx, to, token); err != nil {
		s.logger.Warn("send verification email failed", zap.Error(err), zap.String("email", to))
		return fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, err)
	}
	return nil
}

func (s *AccountService) validateRegistration(reg registration) error {
	if err := validateStruct(reg); err != nil {
		return err
	}
	if !isEmailShaped(reg.Email) {
		return &ValidationError{Field: "email", Message: "invalid email format"}
	}
	if len([]rune(reg.Password)) < s.minPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", s.minPasswordLength),
		}
	}
	return nil
}
