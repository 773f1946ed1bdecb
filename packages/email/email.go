package email

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"sort"
	"strings"
	"time"
)

// Config SMTP settings
type Config struct {
	Host     string `koanf:"host"` // e.g. smtp.gmail.com
	Port     int    `koanf:"port"` // 587 (STARTTLS) or 25
	Username string `koanf:"username"`
	Password string `koanf:"password"` // password or app token
	UseTLS   bool   `koanf:"tls"`
}

// Enabled reports whether enough is configured to talk to a server.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// Message is a single outgoing mail.
type Message struct {
	From        string // "Courses <noreply@example.com>"
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	ContentType string // defaults to text/plain
}

// Client SMTP client
type Client struct {
	config      *Config
	dialTimeout time.Duration
}

func NewClient(config *Config) *Client {
	if config.Port == 0 {
		config.Port = 587
	}
	return &Client{config: config, dialTimeout: 10 * time.Second}
}

// Send delivers msg, upgrading with STARTTLS when configured or on port 587.
func (c *Client) Send(msg *Message) error {
	if msg.From == "" {
		return fmt.Errorf("email: sender is empty")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("email: no recipients")
	}
	if msg.Subject == "" {
		return fmt.Errorf("email: subject is empty")
	}

	if msg.ContentType == "" {
		msg.ContentType = "text/plain; charset=UTF-8"
	}

	recipients := append([]string{}, msg.To...)
	recipients = append(recipients, msg.Cc...)
	recipients = append(recipients, msg.Bcc...)

	var auth smtp.Auth
	if c.config.Username != "" {
		auth = smtp.PlainAuth("", c.config.Username, c.config.Password, c.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)

	return c.deliver(addr, auth, msg.From, recipients, buildMessage(msg))
}

func buildMessage(msg *Message) []byte {
	headers := map[string]string{
		"From":         msg.From,
		"To":           strings.Join(msg.To, ", "),
		"Subject":      mime.QEncoding.Encode("utf-8", msg.Subject),
		"MIME-Version": "1.0",
		"Content-Type": msg.ContentType,
	}
	if len(msg.Cc) > 0 {
		headers["Cc"] = strings.Join(msg.Cc, ", ")
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

func (c *Client) deliver(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", addr, c.dialTimeout)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}

	client, err := smtp.NewClient(conn, c.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if c.config.UseTLS || c.config.Port == 587 {
		if err = client.StartTLS(&tls.Config{ServerName: c.config.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("write message body: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close message body: %w", err)
	}

	return client.Quit()
}

// SendHTML sends a single-recipient HTML mail.
func (c *Client) SendHTML(from string, to string, subject string, htmlBody string) error {
	return c.Send(&Message{
		From:        from,
		To:          []string{to},
		Subject:     subject,
		Body:        htmlBody,
		ContentType: "text/html; charset=UTF-8",
	})
}
