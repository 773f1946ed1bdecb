package login

import (
	"context"
	"log/slog"
	"time"

	"github.com/intrpom/Kurzy-sub001/packages/email"
)

// Mailer delivers magic links.
type Mailer interface {
	SendMagicLink(ctx context.Context, to, name, link string, expiresAt time.Time) error
}

// SMTPMailer sends through packages/email.
type SMTPMailer struct {
	client  *email.Client
	from    string
	appName string
}

func NewSMTPMailer(client *email.Client, from, appName string) *SMTPMailer {
	return &SMTPMailer{client: client, from: from, appName: appName}
}

func (m *SMTPMailer) SendMagicLink(ctx context.Context, to, name, link string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.client.SendMagicLink(m.from, to, m.appName, name, link, expiresAt)
}

// LogMailer writes the link to the log instead of sending it. Development only.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendMagicLink(ctx context.Context, to, _, link string, expiresAt time.Time) error {
	m.logger.InfoContext(ctx, "magic link (not sent, smtp disabled)", "to", to, "link", link, "expires_at", expiresAt)
	return nil
}
