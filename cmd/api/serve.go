package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"immoapp/internal/config"
	"immoapp/internal/db"
	"immoapp/internal/email"
	apihttp "immoapp/internal/http"
	"immoapp/internal/repository"
	"immoapp/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	accountRepo := repository.NewPgAccountRepository(pool)
	listingRepo := repository.NewPgListingRepository(pool)

	emailSender := newEmailSender(cfg, logger)

	resendLimiter := service.NewResendRateLimiter(cfg.ResendLimitWindow, cfg.ResendLimitMax)
	var tokenStore service.RefreshTokenStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			resendLimiter = service.NewRedisResendRateLimiter(redisClient, cfg.ResendLimitWindow, cfg.ResendLimitMax)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	if cfg.BcryptCost < service.MinBcryptCost {
		logger.Warn("bcrypt cost below minimum, using default",
			zap.Int("configured", cfg.BcryptCost),
			zap.Int("default", service.DefaultBcryptCost),
		)
	}
	accountSvc := service.NewAccountService(logger, accountRepo, emailSender, resendLimiter,
		service.WithPasswordHasher(service.NewBcryptHasher(cfg.BcryptCost)),
		service.WithVerificationTokenTTL(cfg.VerificationTokenTTL),
		service.WithMinPasswordLength(cfg.PasswordMinLength),
	)
	listingSvc := service.NewListingService(logger, listingRepo)

	if cfg.OAuthCallbackSecret == "" {
		logger.Warn("oauth callback secret not configured, /auth/oauth disabled")
	}
	router := apihttp.NewRouter(logger, jwtSvc, cfg.OAuthCallbackSecret,
		apihttp.NewAccountHandler(logger, accountSvc, jwtSvc),
		apihttp.NewListingHandler(logger, listingSvc),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newEmailSender(cfg *config.Config, logger *zap.Logger) email.Sender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender, err := email.NewSendGridSender(email.SendGridConfig{
			APIKey:   cfg.SendGridAPIKey,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
			BaseURL:  cfg.AppBaseURL,
			LinkTTL:  cfg.VerificationTokenTTL,
		})
		if err != nil {
			logger.Warn("sendgrid sender init failed", zap.Error(err))
			return email.NewDisabledSender("sendgrid sender not configured")
		}
		return sender
	case "smtp":
		if cfg.SMTPHost == "" {
			logger.Warn("smtp host not configured")
			return email.NewDisabledSender("email sender not configured")
		}
		sender, err := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
			UseTLS:   cfg.SMTPUseTLS,
			BaseURL:  cfg.AppBaseURL,
			LinkTTL:  cfg.VerificationTokenTTL,
		})
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
			return email.NewDisabledSender("email sender not configured")
		}
		return sender
	default:
		return email.NewDisabledSender("email sender disabled")
	}
}
