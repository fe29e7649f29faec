// Package mailer wraps the SMTP relay used for workflow notifications.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mail "github.com/wneessen/go-mail"
	"go.uber.org/multierr"

	"github.com/jviciana84/dealerops-backend/pkg/config"
)

// Message is a fully composed outbound email.
type Message struct {
	To      []string
	CC      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers composed messages. Implementations must honor the context
// deadline; workflow handlers treat delivery failures as non-fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NopSender silently drops mail. Deployments without relay credentials use
// it so workflows keep running; callers surface the missing mail as warnings.
type NopSender struct{}

func (NopSender) Send(context.Context, Message) error {
	return nil
}

// SMTPSender delivers mail through the configured relay.
type SMTPSender struct {
	cfg    config.SMTPConfig
	client *mail.Client
}

// NewSMTP builds a sender from the relay config. It fails fast when the
// relay credentials are incomplete.
func NewSMTP(cfg config.SMTPConfig) (*SMTPSender, error) {
	if !cfg.Configured() {
		return nil, errors.New("smtp relay is not configured")
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(cfg.SendTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("building smtp client: %w", err)
	}

	return &SMTPSender{cfg: cfg, client: client}, nil
}

// Send delivers the message. The context governs the whole dial-and-send.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

func (s *SMTPSender) compose(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("message has no recipients")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return nil, errors.New("message has no subject")
	}

	m := mail.NewMsg()
	var errs error
	if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("from %q: %w", s.cfg.From, err))
	}
	for _, to := range msg.To {
		if err := m.AddTo(to); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("to %q: %w", to, err))
		}
	}
	for _, cc := range msg.CC {
		if err := m.AddCc(cc); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cc %q: %w", cc, err))
		}
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reply-to %q: %w", msg.ReplyTo, err))
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("composing message: %w", errs)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}
