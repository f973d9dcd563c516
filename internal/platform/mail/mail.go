// Package mail sends transactional email for appointment and onboarding
// workflows. Implementations can be swapped (SendGrid, stub) without
// changing callers.
package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message represents an email to be sent.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Sender defines the interface for sending emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender sends emails via the SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender creates a SendGrid email sender. Returns nil if no API
// key is configured; callers should fall back to the stub sender.
func NewSendGridSender(cfg SendGridConfig) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.FromName == "" {
		cfg.FromName = "Mediland Clinic"
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// Send sends an email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s.client == nil {
		return fmt.Errorf("mail: sendgrid client not configured")
	}

	from := sgmail.NewEmail(s.fromName, s.fromEmail)
	to := sgmail.NewEmail(msg.ToName, msg.To)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, "", msg.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		log.Error().Err(err).Str("to", msg.To).Msg("sendgrid send failed")
		return fmt.Errorf("mail: sendgrid send failed: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Error().Int("status", response.StatusCode).Str("to", msg.To).Msg("sendgrid returned error status")
		return fmt.Errorf("mail: sendgrid returned status %d", response.StatusCode)
	}

	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Int("status", response.StatusCode).Msg("email sent")
	return nil
}

// StubSender logs instead of sending. Used in development and when no
// SendGrid key is configured.
type StubSender struct{}

func (StubSender) Send(_ context.Context, msg Message) error {
	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sending disabled, skipping")
	return nil
}
