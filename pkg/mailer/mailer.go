package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"mentorship-service/pkg/config"

	"go.uber.org/zap"
)

// Sender delivers plain text mail
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns an SMTP sender when mail is configured, otherwise a sender that only logs
func New(cfg config.MailConfig, log *zap.Logger) Sender {
	if !cfg.Enabled() {
		return &LogSender{log: log}
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPSender{
		addr: cfg.Host + ":" + cfg.Port,
		from: from,
		auth: smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host),
		send: smtp.SendMail,
	}
}

// SMTPSender sends mail through an SMTP relay with PLAIN auth
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid mail header value")
	}
	if err := s.send(s.addr, s.auth, s.from, []string{to}, buildMessage(s.from, to, subject, body)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// LogSender writes the mail to the log instead of delivering it
type LogSender struct {
	log *zap.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.log.Info("Mail delivery disabled, logging message",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_length", len(body)))
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	msg := "From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body + "\r\n"
	return []byte(msg)
}
