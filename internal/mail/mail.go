package mail

import (
	"context"
	"fmt"
	"path/filepath"

	gomail "github.com/wneessen/go-mail"
	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.uber.org/zap"
)

// Message is a single plain-text email with an optional file attachment.
type Message struct {
	From       string
	To         string
	Subject    string
	Body       string
	Attachment string
}

// Sender delivers a Message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

var _ Sender = (*SMTPSender)(nil)

// SMTPSender opens a fresh authenticated session per message.
type SMTPSender struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func NewSMTPSender(cfg config.MailConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	client, err := s.client()
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	s.logger.Debug("mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))

	return nil
}

func (s *SMTPSender) build(msg *Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()

	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	if msg.Attachment != "" {
		m.AttachFile(msg.Attachment, gomail.WithFileName(filepath.Base(msg.Attachment)))
	}

	return m, nil
}

func (s *SMTPSender) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
		gomail.WithTimeout(s.cfg.Timeout),
	}

	if s.cfg.SSL {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}

	return gomail.NewClient(s.cfg.Host, opts...)
}
