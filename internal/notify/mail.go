// Package notify delivers e-mail to users.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/config"
)

// Message is a mail with plain text and HTML bodies.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender when a host is configured, else a
// sender that only logs.
func NewSender(cfg config.MailConfig, logger *zap.Logger) Sender {
	if strings.TrimSpace(cfg.Host) == "" {
		logger.Info("MAIL_HOST not provided; mail will be logged only")
		return &LogSender{logger: logger, from: cfg.From}
	}
	logger.Info("mail relay configured", zap.String("relay", cfg.Addr()))
	return NewSMTPSender(cfg)
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct {
	logger *zap.Logger
	from   string
}

// NewLogSender builds a LogSender.
func NewLogSender(logger *zap.Logger, from string) *LogSender {
	return &LogSender{logger: logger, from: from}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("mail (not sent)",
		zap.String("from", s.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}

// defaultTimeout bounds a delivery whose context carries no deadline.
const defaultTimeout = 30 * time.Second

type sendFunc func(ctx context.Context, msg *gomail.Msg) error

// SMTPSender sends multipart/alternative mail through an SMTP relay.
type SMTPSender struct {
	cfg  config.MailConfig
	send sendFunc
}

// NewSMTPSender builds a sender for the relay in cfg.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	s := &SMTPSender{cfg: cfg}
	s.send = s.dialAndSend
	return s
}

// Send returns as soon as ctx is done, even while the relay is still
// talking; the abandoned session ends at the client timeout.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.compose(msg)
	if err != nil {
		return err
	}

	result := make(chan error, 1)
	go func() { result <- s.send(ctx, m) }()
	select {
	case err := <-result:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func (s *SMTPSender) compose(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("parse from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("parse recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}

func (s *SMTPSender) dialAndSend(ctx context.Context, m *gomail.Msg) error {
	timeout := defaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}
	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}
