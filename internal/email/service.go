// Package email delivers contact form submissions to the site operators.
// Two providers are supported: direct SMTP with STARTTLS, and the Resend
// API. When email is disabled the service logs the message and returns nil,
// so the contact endpoint stays usable in development.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/mail"
	"net/smtp"
	"path/filepath"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/schoolcms/server/internal/config"
)

const providerResend = "resend"

// ContactMessage is a visitor submission from the public contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

type contactTemplateData struct {
	Name        string
	Email       string
	Subject     string
	Body        string
	ReceivedAt  string
	CurrentYear int
}

type Service struct {
	config       config.EmailConfig
	templates    *template.Template
	resendClient *resend.Client
	logger       zerolog.Logger
}

// NewService parses the HTML templates under cfg.TemplatesDir and validates
// the configured addresses. The Resend client is only constructed when that
// provider is selected.
func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
		if err := validateEmailAddress(cfg.To); err != nil {
			return nil, fmt.Errorf("invalid recipient email in config: %w", err)
		}
	}

	templates, err := template.ParseGlob(filepath.Join(cfg.TemplatesDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	svc := &Service{
		config:    cfg,
		templates: templates,
		logger:    logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled && cfg.Provider == providerResend {
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend provider selected but RESEND_API_KEY is empty")
		}
		svc.resendClient = resend.NewClient(cfg.ResendAPIKey)
	}
	return svc, nil
}

// SendContactMessage forwards a contact form submission to the configured
// recipient. The visitor's address goes into Reply-To, never into From.
func (s *Service) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	if err := validateEmailAddress(msg.Email); err != nil {
		return fmt.Errorf("invalid visitor email: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("from", msg.Email).
			Str("subject", msg.Subject).
			Msg("email service disabled, contact message logged only")
		return nil
	}

	now := time.Now()
	htmlBody, err := s.renderTemplate("contact.html", contactTemplateData{
		Name:        msg.Name,
		Email:       msg.Email,
		Subject:     msg.Subject,
		Body:        msg.Body,
		ReceivedAt:  now.Format(time.RFC1123),
		CurrentYear: now.Year(),
	})
	if err != nil {
		return fmt.Errorf("render contact template: %w", err)
	}

	subject := "Contact form: " + sanitizeHeaderValue(msg.Subject)
	if s.config.Provider == providerResend {
		err = s.sendViaResend(ctx, s.config.To, msg.Email, subject, htmlBody)
	} else {
		err = s.sendViaSMTP(s.config.To, msg.Email, subject, htmlBody)
	}
	if err != nil {
		return fmt.Errorf("send contact message: %w", err)
	}

	s.logger.Info().
		Str("from", msg.Email).
		Str("to", s.config.To).
		Msg("contact message delivered")
	return nil
}

// validateEmailAddress checks format and rejects header injection attempts.
func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("email address contains newline characters")
	}
	return nil
}

// sanitizeHeaderValue strips CR and LF so visitor input cannot smuggle
// additional headers into the message. Runs of whitespace collapse to a
// single space.
func sanitizeHeaderValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

// sendViaSMTP delivers the message over SMTP with a mandatory STARTTLS
// handshake. Plain connections are never used for the payload.
func (s *Service) sendViaSMTP(to, replyTo, subject, htmlBody string) error {
	headers := []string{
		"From: " + s.config.From,
		"To: " + to,
		"Reply-To: " + replyTo,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	var msg bytes.Buffer
	for _, h := range headers {
		msg.WriteString(h)
		msg.WriteString("\r\n")
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = client.Close() }()

	tlsConfig := &tls.Config{
		ServerName: s.config.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPassword, s.config.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := client.Mail(s.config.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		return fmt.Errorf("write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("quit SMTP connection: %w", err)
	}
	return nil
}

func (s *Service) renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
