package email

import (
	"context"
	"errors"
	"net/smtp"
	"mime"
	"strings"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

func TestVerificationLink(t *testing.T) {
	cases := []struct {
		base  string
		token string
		want  string
	}{
		{"http://localhost:3000", "abc123", "http://localhost:3000/auth/verify?token=abc123"},
		{"https://immo.example.com/", "abc123", "https://immo.example.com/auth/verify?token=abc123"},
		{" https://immo.example.com ", "a+b", "https://immo.example.com/auth/verify?token=a%2Bb"},
	}
	for _, tc := range cases {
		if got := VerificationLink(tc.base, tc.token); got != tc.want {
			t.Fatalf("VerificationLink(%q, %q) = %q, want %q", tc.base, tc.token, got, tc.want)
		}
	}
}

func TestDisabledSender(t *testing.T) {
	err := NewDisabledSender("").SendVerificationEmail(context.Background(), "al@x.com", "tok")
	if err == nil {
		t.Fatalf("expected error from disabled sender")
	}
	err = NewDisabledSender("not configured").SendVerificationEmail(context.Background(), "al@x.com", "tok")
	if err == nil || err.Error() != "not configured" {
		t.Fatalf("expected reason as error, got %v", err)
	}
}

func TestNewSMTPSender_Validation(t *testing.T) {
	if _, err := NewSMTPSender(SMTPConfig{From: "a@x.com", BaseURL: "http://x"}); err == nil {
		t.Fatalf("expected missing host error")
	}
	if _, err := NewSMTPSender(SMTPConfig{Host: "smtp.x.com", BaseURL: "http://x"}); err == nil {
		t.Fatalf("expected missing from error")
	}
	if _, err := NewSMTPSender(SMTPConfig{Host: "smtp.x.com", From: "a@x.com"}); err == nil {
		t.Fatalf("expected missing base url error")
	}
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.x.com", From: "a@x.com", BaseURL: "http://x"})
	if err != nil {
		t.Fatalf("expected sender, got %v", err)
	}
	if s.cfg.Port != 587 {
		t.Fatalf("expected default port 587, got %d", s.cfg.Port)
	}
}

func TestSMTPSender_SendsVerificationLink(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{
		Host:     "smtp.x.com",
		Port:     2525,
		From:     "noreply@immo.com",
		FromName: "ImmoApp",
		BaseURL:  "http://localhost:3000",
	})
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	s.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	if err := s.SendVerificationEmail(context.Background(), "al@x.com", "deadbeef"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.x.com:2525" {
		t.Fatalf("unexpected addr %q", gotAddr)
	}
	if len(gotTo) != 1 || gotTo[0] != "al@x.com" {
		t.Fatalf("unexpected recipients %v", gotTo)
	}
	if !strings.Contains(gotMsg, "http://localhost:3000/auth/verify?token=deadbeef") {
		t.Fatalf("expected verification link in message, got %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "From: ImmoApp <noreply@immo.com>") {
		t.Fatalf("expected from header, got %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "Subject: =?utf-8?q?") {
		t.Fatalf("expected encoded subject header, got %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "Ce lien expire dans 24 heures.") {
		t.Fatalf("expected default expiry in body, got %q", gotMsg)
	}
}

func TestBuildMessage_EncodesNonASCIIHeaders(t *testing.T) {
	msg := buildMessage("noreply@immo.com", "Équipe Immo", "al@x.com", verificationSubject, "<p>hi</p>")

	subjectLine := ""
	for _, line := range strings.Split(msg, "\r\n") {
		if strings.HasPrefix(line, "Subject: ") {
			subjectLine = strings.TrimPrefix(line, "Subject: ")
		}
		if strings.HasPrefix(line, "From: ") && !strings.Contains(line, "=?utf-8?q?") {
			t.Fatalf("expected encoded display name, got %q", line)
		}
	}
	for _, r := range subjectLine {
		if r > 127 {
			t.Fatalf("subject header must be ASCII, got %q", subjectLine)
		}
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(subjectLine)
	if err != nil {
		t.Fatalf("decode subject: %v", err)
	}
	if decoded != verificationSubject {
		t.Fatalf("expected %q after decoding, got %q", verificationSubject, decoded)
	}
}

func TestExpiryLabel(t *testing.T) {
	cases := []struct {
		ttl  time.Duration
		want string
	}{
		{0, "24 heures"},
		{24 * time.Hour, "24 heures"},
		{time.Hour, "1 heure"},
		{2 * time.Hour, "2 heures"},
		{90 * time.Minute, "90 minutes"},
		{time.Minute, "1 minute"},
		{10 * time.Second, "1 minute"},
	}
	for _, tc := range cases {
		if got := expiryLabel(tc.ttl); got != tc.want {
			t.Fatalf("expiryLabel(%v) = %q, want %q", tc.ttl, got, tc.want)
		}
	}
}

func TestSMTPSender_UsesConfiguredLinkTTL(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.x.com", From: "a@x.com", BaseURL: "http://x", LinkTTL: 2 * time.Hour})
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	var gotMsg string
	s.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	}
	if err := s.SendVerificationEmail(context.Background(), "al@x.com", "tok"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(gotMsg, "Ce lien expire dans 2 heures.") || strings.Contains(gotMsg, "24 heures") {
		t.Fatalf("expected configured expiry in body, got %q", gotMsg)
	}
}

func TestSMTPSender_PropagatesError(t *testing.T) {
	s, _ := NewSMTPSender(SMTPConfig{Host: "smtp.x.com", From: "a@x.com", BaseURL: "http://x"})
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("smtp down")
	}
	if err := s.SendVerificationEmail(context.Background(), "al@x.com", "tok"); err == nil {
		t.Fatalf("expected error")
	}
	if err := s.SendVerificationEmail(context.Background(), " ", "tok"); err == nil {
		t.Fatalf("expected missing recipient error")
	}
}

type mockSendGridClient struct {
	last   *mail.SGMailV3
	status int
	err    error
}

func (m *mockSendGridClient) SendWithContext(_ context.Context, msg *mail.SGMailV3) (*rest.Response, error) {
	m.last = msg
	if m.err != nil {
		return nil, m.err
	}
	return &rest.Response{StatusCode: m.status}, nil
}

func TestSendGridSender(t *testing.T) {
	if _, err := NewSendGridSender(SendGridConfig{From: "a@x.com", BaseURL: "http://x"}); err == nil {
		t.Fatalf("expected missing api key error")
	}

	client := &mockSendGridClient{status: 202}
	s := &SendGridSender{client: client, from: "noreply@immo.com", fromName: "ImmoApp", baseURL: "http://localhost:3000", linkTTL: 30 * time.Minute}

	if err := s.SendVerificationEmail(context.Background(), "al@x.com", "cafe"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if client.last == nil || client.last.Subject != verificationSubject {
		t.Fatalf("expected message with subject")
	}
	if len(client.last.Content) != 2 || !strings.Contains(client.last.Content[1].Value, "token=cafe") {
		t.Fatalf("expected html content with token link")
	}
	if !strings.Contains(client.last.Content[0].Value, "30 minutes") {
		t.Fatalf("expected configured expiry in text content, got %q", client.last.Content[0].Value)
	}

	client.status = 401
	if err := s.SendVerificationEmail(context.Background(), "al@x.com", "cafe"); err == nil {
		t.Fatalf("expected error on non-2xx status")
	}

	client.err = errors.New("network")
	if err := s.SendVerificationEmail(context.Background(), "al@x.com", "cafe"); err == nil {
		t.Fatalf("expected transport error")
	}
}
