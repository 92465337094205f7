// Package notify implements the outbound notification sink. The Mailer
// composes and delivers plain-text emails over SMTP for the three notification
// intents: login occurred, password reset occurred, and invite issued.
// Delivery happens on fire-and-forget goroutines launched by the callers, so
// every method swallows failures after logging and counting them; the sink is
// a no-op when notifications are disabled or no SMTP host is configured, which
// makes it always safe to wire regardless of deployment environment.
package notify

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/elencho/elencho/internal/config"
	"github.com/elencho/elencho/internal/telemetry"
)

// Mailer sends notification emails over SMTP
type Mailer struct {
	cfg *config.NotificationsConfig
}

// NewMailer creates a new Mailer
func NewMailer(cfg *config.NotificationsConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// enabled reports whether the sink can actually deliver mail
func (m *Mailer) enabled() bool {
	return m.cfg.Enabled && m.cfg.SMTP.Host != ""
}

// SendLoginAlert notifies an account that a sign-in just occurred
func (m *Mailer) SendLoginAlert(email string) {
	body := strings.Join([]string{
		"Hello,",
		"",
		fmt.Sprintf("Your account %s signed in at %s.", email, time.Now().UTC().Format(time.RFC1123)),
		"",
		"If this was not you, reset your password immediately.",
		"",
		"— Elencho",
	}, "\r\n")

	m.deliver("login", email, "You are signed in to Elencho!", body)
}

// SendPasswordResetAlert notifies an account that its password just changed
func (m *Mailer) SendPasswordResetAlert(email string) {
	body := strings.Join([]string{
		"Hello,",
		"",
		fmt.Sprintf("The password for %s was changed at %s.", email, time.Now().UTC().Format(time.RFC1123)),
		"",
		"If you did not request this change, contact your organisation owner.",
		"",
		"— Elencho",
	}, "\r\n")

	m.deliver("password_reset", email, "Password Reset Detected!", body)
}

// SendInvite delivers an organisation invitation with its accept and cancel links
func (m *Mailer) SendInvite(email, acceptLink, cancelLink string) {
	body := strings.Join([]string{
		"Hello,",
		"",
		"You have been invited to join an organisation on Elencho.",
		"",
		"Accept the invitation:",
		"  " + acceptLink,
		"",
		"Not interested? Decline it:",
		"  " + cancelLink,
		"",
		"The invitation expires in 7 days.",
		"",
		"— Elencho",
	}, "\r\n")

	m.deliver("invite", email, "You are invited to join Elencho!", body)
}

// deliver sends one plain-text message and records the outcome. Failures are
// logged and counted, never returned; the sink must not disturb the operation
// that triggered it.
func (m *Mailer) deliver(kind, toEmail, subject, body string) {
	if !m.enabled() {
		slog.Debug("notification sink disabled, dropping email", "kind", kind, "to", toEmail)
		return
	}

	smtpCfg := &m.cfg.SMTP
	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n",
		smtpCfg.From, toEmail, subject,
	)
	msg := []byte(headers + body + "\r\n")

	addr := fmt.Sprintf("%s:%d", smtpCfg.Host, smtpCfg.Port)
	auth := smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)

	var err error
	if smtpCfg.UseTLS {
		err = sendMailTLS(addr, smtpCfg.Host, auth, smtpCfg.From, []string{toEmail}, msg)
	} else {
		err = smtp.SendMail(addr, auth, smtpCfg.From, []string{toEmail}, msg)
	}

	if err != nil {
		telemetry.NotificationEmailsTotal.WithLabelValues(kind, "failed").Inc()
		slog.Error("failed to send notification email", "kind", kind, "to", toEmail, "error", err)
		return
	}

	telemetry.NotificationEmailsTotal.WithLabelValues(kind, "sent").Inc()
	slog.Info("notification email sent", "kind", kind, "to", toEmail)
}

// sendMailTLS connects via implicit TLS (port 465 / SMTPS) and sends a message.
// Use this when UseTLS=true and the port is 465; for port 587 STARTTLS,
// smtp.SendMail handles the upgrade automatically — but we call this path for
// both so the config is unambiguous: UseTLS=true always means an encrypted connection.
func sendMailTLS(addr, host string, auth smtp.Auth, from string, to []string, msg []byte) error {
	tlsConfig := &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		// Fall back to STARTTLS via the standard smtp.SendMail path (port 587 pattern)
		return smtp.SendMail(addr, auth, from, to, msg)
	}
	defer conn.Close()

	hostname, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, hostname)
	if err != nil {
		return fmt.Errorf("smtp new client: %w", err)
	}
	defer c.Quit() //nolint:errcheck

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, addr := range to {
		if err := c.Rcpt(addr); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", addr, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}
