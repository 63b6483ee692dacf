package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	// From sends verification codes, SecurityFrom sends sign-in alerts.
	From         string
	SecurityFrom string

	// CodeTTL is quoted in the verification email.
	CodeTTL time.Duration

	// SecurityURL is linked from sign-in alerts.
	SecurityURL string
}

// SMTPMailer sends HTML email over SMTP with PLAIN auth, upgrading to TLS
// when the server offers STARTTLS.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer net.Dialer
}

var ErrSMTPNotConfigured = errors.New("smtp not configured")

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, ErrSMTPNotConfigured
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.SecurityFrom == "" {
		cfg.SecurityFrom = cfg.From
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 15 * time.Minute
	}
	if cfg.SecurityURL == "" {
		cfg.SecurityURL = "https://scrimflow.com/settings/security"
	}
	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, to, code string, purpose domain.VerificationType) error {
	content := contentFor(purpose)

	var body bytes.Buffer
	err := templates.ExecuteTemplate(&body, "verification.html", map[string]string{
		"Title":     content.Title,
		"Message":   content.Message,
		"Action":    content.Action,
		"Code":      code,
		"ExpiresIn": humanDuration(m.cfg.CodeTTL),
	})
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	return m.send(ctx, m.cfg.From, to, content.Subject, body.Bytes())
}

func (m *SMTPMailer) SendNewLoginAlert(ctx context.Context, to string, alert LoginAlert) error {
	var body bytes.Buffer
	err := templates.ExecuteTemplate(&body, "login_alert.html", map[string]string{
		"IPAddress":   alert.IPAddress,
		"Location":    alert.Location.String(),
		"Date":        alert.FormattedDate(),
		"SecurityURL": m.cfg.SecurityURL,
	})
	if err != nil {
		return fmt.Errorf("render login alert: %w", err)
	}

	return m.send(ctx, m.cfg.SecurityFrom, to, "New sign-in detected", body.Bytes())
}

// send delivers one message, honouring ctx for the dial and the exchange.
func (m *SMTPMailer) send(ctx context.Context, from, to, subject string, html []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	conn, err := m.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(envelopeAddress(from)); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(from, to, subject, html)); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}

	return client.Quit()
}

func buildMessage(from, to, subject string, html []byte) []byte {
	var msg bytes.Buffer
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	msg.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(html)
	msg.WriteString("\r\n")
	return msg.Bytes()
}

// envelopeAddress extracts the bare address from "Name <addr>".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 && d < time.Hour*2 {
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return strconv.Itoa(n) + " minutes"
	}
	return d.String()
}
