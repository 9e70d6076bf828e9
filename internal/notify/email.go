// Package notify emails clinic staff about confirmed bookings.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// EmailSender sends a single email.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is one outbound email. Text is required; HTML is optional.
type EmailMessage struct {
	To       string
	ToName   string
	ReplyTo  string
	Subject  string
	Text     string
	HTML     string
	Category string // SendGrid category / SES message tag
}

const defaultFromName = "MedPet"

// sender is the From identity shared by the providers.
type sender struct {
	email string
	name  string
}

func newSender(email, name string) sender {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultFromName
	}
	return sender{email: strings.TrimSpace(email), name: name}
}

func (s sender) address() string {
	return fmt.Sprintf("%s <%s>", s.name, s.email)
}

func validateMessage(msg EmailMessage) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("notify: recipient required")
	}
	if msg.Text == "" && msg.HTML == "" {
		return errors.New("notify: empty email body")
	}
	return nil
}

type sendGridAPI interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers email through the SendGrid v3 API.
type SendGridSender struct {
	client sendGridAPI
	from   sender
	logger *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	return newSendGridSender(sendgrid.NewSendClient(cfg.APIKey), newSender(cfg.FromEmail, cfg.FromName), logger)
}

func newSendGridSender(client sendGridAPI, from sender, logger *logging.Logger) *SendGridSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{client: client, from: from, logger: logger}
}

var _ EmailSender = (*SendGridSender)(nil)

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return errors.New("notify: sendgrid client not configured")
	}
	if err := validateMessage(msg); err != nil {
		return err
	}

	response, err := s.client.SendWithContext(ctx, s.build(msg))
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid rejected email", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To, "category", msg.Category, "status", response.StatusCode)
	return nil
}

func (s *SendGridSender) build(msg EmailMessage) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.from.name, s.from.email))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.To))
	m.AddPersonalizations(p)

	if msg.Text != "" {
		m.AddContent(mail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		m.AddContent(mail.NewContent("text/html", msg.HTML))
	}
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}
	return m
}

// StubEmailSender logs instead of sending. Selected with EMAIL_PROVIDER=stub.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

var _ EmailSender = (*StubEmailSender)(nil)

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	if err := validateMessage(msg); err != nil {
		return err
	}
	s.logger.Info("stub email sender: would send email", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	return nil
}
