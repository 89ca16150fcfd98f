package notifier

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Mailer delivers messages over SMTP. smtp.SendMail upgrades to TLS with
// STARTTLS when the server offers it.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates an SMTP mailer; host defaults to smtp.office365.com:587.
func NewMailer(host string, port int, username, password, from string, to []string) *Mailer {
	if host == "" {
		host = "smtp.office365.com"
	}
	if port == 0 {
		port = 587
	}
	if from == "" {
		from = username
	}
	return &Mailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		To:       to,
		sendMail: smtp.SendMail,
	}
}

func (m *Mailer) Name() string { return "email" }

// Notify implements Sink.
func (m *Mailer) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(m.To) == 0 {
		return fmt.Errorf("email: no recipients")
	}
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	if err := m.sendMail(addr, auth, m.From, m.To, m.compose(msg, time.Now())); err != nil {
		return fmt.Errorf("email: send to %s: %w", strings.Join(m.To, ","), err)
	}
	return nil
}

func (m *Mailer) compose(msg Message, now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
