package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridConfig agrupa la configuracion del proveedor SendGrid.
type SendGridConfig struct {
	APIKey   string
	From     string
	FromName string
	BaseURL  string
	LinkTTL  time.Duration
}

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender envia correos usando la API v3 de SendGrid.
type SendGridSender struct {
	client   sendGridClient
	from     string
	fromName string
	baseURL  string
	linkTTL  time.Duration
}

func NewSendGridSender(cfg SendGridConfig) (*SendGridSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("sendgrid from is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	return &SendGridSender{
		client:   sendgrid.NewSendClient(cfg.APIKey),
		from:     cfg.From,
		fromName: cfg.FromName,
		baseURL:  cfg.BaseURL,
		linkTTL:  cfg.LinkTTL,
	}, nil
}

func (s *SendGridSender) SendVerificationEmail(ctx context.Context, toEmail string, token string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	link := VerificationLink(s.baseURL, token)
	html, err := renderVerificationHTML(link, s.linkTTL)
	if err != nil {
		return err
	}
	msg := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		verificationSubject,
		mail.NewEmail("", toEmail),
		renderVerificationText(link, s.linkTTL),
		html,
	)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
