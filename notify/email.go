package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
)

var ErrSMTPNotConfigured = errors.New("SMTP not configured")

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// EmailNotifier sends HTML mail through the configured relay.
type EmailNotifier struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, sendMail: smtp.SendMail}
}

// Notify skips messages without a recipient address.
func (s *EmailNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" {
		return nil
	}
	if s.cfg.Host == "" || s.cfg.User == "" {
		return ErrSMTPNotConfigured
	}
	msg, err := Render(msg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)

	body := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=utf-8\r\n"+
		"\r\n"+
		"%s\r\n", s.cfg.From, msg.ToEmail, msg.Subject, msg.Body))

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.sendMail(addr, auth, s.cfg.From, []string{msg.ToEmail}, body); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.ToEmail, err)
	}
	return nil
}
