package email

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// Sender define la interfaz para envio de correos de verificacion.
type Sender interface {
	SendVerificationEmail(ctx context.Context, toEmail string, token string) error
}

// VerificationLink construye {baseURL}/auth/verify?token={token}.
func VerificationLink(baseURL, token string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return base + "/auth/verify?token=" + url.QueryEscape(token)
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationEmail(_ context.Context, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
