package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/sharath018/invitation-rsvp-backend/config"
	"go.uber.org/zap"
)

var ErrSMTPNotConfigured = errors.New("smtp is not configured")

var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Subject}}</h2>
  {{range .Paragraphs}}<p>{{.}}</p>{{end}}
  {{if .Link}}<p><a href="{{.Link}}" style="color:#6c63ff;">{{.LinkText}}</a></p>{{end}}
</body>
</html>`))

type emailContent struct {
	Subject    string
	Paragraphs []string
	Link       string
	LinkText   string
}

// EmailSender delivers HTML mail over SMTP with STARTTLS
type EmailSender struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
	FromAddr string
	log      *zap.Logger
}

func NewEmailSender(cfg *config.Config, log *zap.Logger) *EmailSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmailSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		FromName: cfg.SMTPFromName,
		FromAddr: cfg.SMTPFromEmail,
		log:      log,
	}
}

func (e *EmailSender) Configured() bool {
	return e.Host != "" && e.FromAddr != ""
}

// Send renders body as paragraphs and mails it to every recipient
func (e *EmailSender) Send(ctx context.Context, to []string, subject, body string) error {
	return e.send(ctx, to, emailContent{Subject: subject, Paragraphs: strings.Split(body, "\n\n")})
}

// SendResetLink mails a password-reset link
func (e *EmailSender) SendResetLink(ctx context.Context, to, link string) error {
	return e.send(ctx, []string{to}, emailContent{
		Subject:    "Reset your password",
		Paragraphs: []string{"We received a request to reset your password. The link below is valid for 15 minutes.", "If you did not ask for this, you can ignore this email."},
		Link:       link,
		LinkText:   "Choose a new password",
	})
}

func (e *EmailSender) send(ctx context.Context, to []string, content emailContent) error {
	if !e.Configured() {
		return ErrSMTPNotConfigured
	}

	var htmlBody bytes.Buffer
	if err := emailLayout.Execute(&htmlBody, content); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	headers := []string{
		fmt.Sprintf("From: %s <%s>", e.FromName, e.FromAddr),
		"To: " + strings.Join(to, ", "),
		"Subject: " + content.Subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	message := []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody.String())

	addr := net.JoinHostPort(e.Host, e.Port)
	if err := e.sendMailWithTLS(ctx, addr, to, message); err != nil {
		e.log.Warn("email send failed", zap.Strings("to", to), zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}
	e.log.Info("email sent", zap.Strings("to", to), zap.String("subject", content.Subject))
	return nil
}

func (e *EmailSender) sendMailWithTLS(ctx context.Context, addr string, to []string, message []byte) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, e.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err = client.StartTLS(&tls.Config{ServerName: e.Host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if e.Username != "" {
		if err = client.Auth(smtp.PlainAuth("", e.Username, e.Password, e.Host)); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
	}

	if err = client.Mail(e.FromAddr); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", recipient, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = writer.Write(message); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	return client.Quit()
}
