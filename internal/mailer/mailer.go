package mailer

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"sync"

	"github.com/wichananm65/boutique-backend/internal/config"
	"github.com/wichananm65/boutique-backend/internal/logger"
	"go.uber.org/zap"
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// New picks the SMTP sender when SMTP settings are present and falls back
// to logging the message.
func New(cfg config.SMTPConfig) EmailSender {
	if cfg.Enabled() {
		return NewSMTPSender(cfg)
	}
	logger.Log.Warn("SMTP not configured, emails will only be logged")
	return LogSender{}
}

type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPSender{host: cfg.Host, port: cfg.Port, username: cfg.User, password: cfg.Password, from: from}
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, buildMessage(s.from, to, subject, body)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte(
		"From: " + headerValue(from) + "\r\n" +
			"To: " + headerValue(to) + "\r\n" +
			"Subject: " + mime.QEncoding.Encode("utf-8", headerValue(subject)) + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)
}

// headerValue keeps a value on a single header line.
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}

// LogSender writes emails to the log instead of sending them.
type LogSender struct{}

func (LogSender) SendEmail(_ context.Context, to, subject, _ string) error {
	logger.Log.Info("email not sent (no SMTP)", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Message is an email captured by RecordingSender.
type Message struct {
	To      string
	Subject string
	Body    string
}

// RecordingSender keeps sent emails in memory. Used by tests.
type RecordingSender struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (r *RecordingSender) SendEmail(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, Message{To: to, Subject: subject, Body: body})
	return nil
}

func (r *RecordingSender) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}
