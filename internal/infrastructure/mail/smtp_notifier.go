// Package mail delivers invoice emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/jordan-wright/email"
	"go.uber.org/zap"
)

// Config holds SMTP settings. An empty Host disables delivery.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SendFunc hands a composed email to the transport
type SendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// SMTPNotifier implements appinv.Notifier with jordan-wright/email
type SMTPNotifier struct {
	config Config
	addr   string
	auth   smtp.Auth
	send   SendFunc
	logger *zap.Logger
}

// NotifierOption configures the notifier
type NotifierOption func(*SMTPNotifier)

// WithSendFunc replaces the SMTP transport
func WithSendFunc(send SendFunc) NotifierOption {
	return func(n *SMTPNotifier) {
		n.send = send
	}
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(config Config, logger *zap.Logger, opts ...NotifierOption) *SMTPNotifier {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &SMTPNotifier{
		config: config,
		addr:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
		logger: logger,
	}
	if config.Username != "" {
		n.auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Enabled reports whether a transport is configured
func (n *SMTPNotifier) Enabled() bool {
	return n.config.Host != ""
}

// Deliver sends msg. It returns false without error when no SMTP host is
// configured.
func (n *SMTPNotifier) Deliver(ctx context.Context, msg *appinv.Message) (bool, error) {
	if !n.Enabled() {
		n.logger.Warn("SMTP host not configured, message not sent", zap.String("to", msg.To))
		return false, nil
	}
	if msg.To == "" {
		return false, errors.New("mail: message has no recipient")
	}

	e, err := n.compose(msg)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- n.send(e, n.addr, n.auth)
	}()

	select {
	case err := <-done:
		if err != nil {
			n.logger.Error("SMTP delivery failed", zap.String("to", msg.To), zap.Error(err))
			return false, fmt.Errorf("mail: send: %w", err)
		}
	case <-ctx.Done():
		return false, fmt.Errorf("mail: send: %w", ctx.Err())
	}

	n.logger.Info("Email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)))
	return true, nil
}

func (n *SMTPNotifier) compose(msg *appinv.Message) (*email.Email, error) {
	e := email.NewEmail()
	e.From = n.config.From
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.TextBody)
	if msg.HTMLBody != "" {
		e.HTML = []byte(msg.HTMLBody)
	}

	for _, att := range msg.Attachments {
		a, err := e.Attach(bytes.NewReader(att.Data), att.FileName, att.ContentType)
		if err != nil {
			return nil, fmt.Errorf("mail: attach %s: %w", att.FileName, err)
		}
		if att.ContentID != "" {
			a.HTMLRelated = true
			a.Header.Set("Content-ID", "<"+att.ContentID+">")
			a.Header.Set("Content-Disposition", fmt.Sprintf("inline;\r\n filename=%q", att.FileName))
		}
	}
	return e, nil
}

var _ appinv.Notifier = (*SMTPNotifier)(nil)
