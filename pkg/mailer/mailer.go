package mailer

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"time"

	"github.com/inkpress/blog-backend/config"
	"github.com/inkpress/blog-backend/internal/i18n"
	"github.com/inkpress/blog-backend/pkg/logger"
	"golang.org/x/text/language"
)

// Message is a plain-text e-mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender, or a log-only sender when SMTP is not
// configured (development).
func NewSender(cfg config.MailConfig) Sender {
	if cfg.Host == "" {
		logger.Warn("SMTP not configured, mail will be logged instead of sent")
		return LogSender{}
	}
	return &SMTPSender{cfg: cfg}
}

type SMTPSender struct {
	cfg config.MailConfig
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.cfg.From, msg.To, mime.QEncoding.Encode("utf-8", msg.Subject), msg.Body,
	))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(s.cfg.Host+":"+s.cfg.Port, auth, s.cfg.From, []string{msg.To}, body); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to": msg.To,
		})
		return fmt.Errorf("send mail: %w", err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logger.Info("[DEV MODE] Email not sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	// the body may carry a reset link
	logger.Debug("[DEV MODE] Email body", map[string]interface{}{
		"to":   msg.To,
		"body": msg.Body,
	})
	return nil
}

// ResetNotifier mails password reset links.
type ResetNotifier struct {
	sender Sender
	ttl    time.Duration
}

func NewResetNotifier(sender Sender, ttl time.Duration) *ResetNotifier {
	return &ResetNotifier{sender: sender, ttl: ttl}
}

func (n *ResetNotifier) SendPasswordReset(ctx context.Context, email, link string, locale language.Tag) error {
	return n.sender.Send(ctx, Message{
		To:      email,
		Subject: i18n.T(locale, i18n.MsgResetSubject),
		Body:    i18n.T(locale, i18n.MsgResetBody, link, int(n.ttl.Minutes())),
	})
}
