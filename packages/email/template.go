package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Template wraps a parsed html/template.
type Template struct {
	tmpl *template.Template
}

// NewTemplate parses an HTML mail body.
func NewTemplate(htmlContent string) (*Template, error) {
	tmpl, err := template.New("email").Parse(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &Template{tmpl: tmpl}, nil
}

func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return buf.String(), nil
}

// SendWithTemplate renders tmpl with data and sends it as HTML.
func (c *Client) SendWithTemplate(from, to, subject string, tmpl *Template, data any) error {
	body, err := tmpl.Render(data)
	if err != nil {
		return err
	}
	return c.SendHTML(from, to, subject, body)
}

// MagicLinkTemplate is the sign-in mail body.
const MagicLinkTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #2196F3; color: white; padding: 20px; text-align: center; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; }
        .button { display: inline-block; padding: 12px 24px; background-color: #2196F3;
                  color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .link { word-break: break-all; font-size: 12px; color: #666; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Sign in to {{.AppName}}</h1>
        </div>
        <div class="content">
            <p>Hi{{if .Name}} {{.Name}}{{end}},</p>
            <p>Click the button below to sign in. The link works once and expires at {{.ExpiresAt}}.</p>
            <div style="text-align: center;">
                <a href="{{.Link}}" class="button">Sign in</a>
            </div>
            <p class="link">{{.Link}}</p>
            <p>If you did not request this, you can ignore this email.</p>
        </div>
        <div class="footer">
            <p>This message was sent automatically. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
`

// MagicLinkData fills MagicLinkTemplate.
type MagicLinkData struct {
	AppName   string
	Name      string
	Link      string
	ExpiresAt string
}

var magicLinkTemplate = mustTemplate(MagicLinkTemplate)

func mustTemplate(htmlContent string) *Template {
	t, err := NewTemplate(htmlContent)
	if err != nil {
		panic(err)
	}
	return t
}

func magicLinkData(appName, name, link string, expiresAt time.Time) MagicLinkData {
	return MagicLinkData{
		AppName:   appName,
		Name:      name,
		Link:      link,
		ExpiresAt: expiresAt.UTC().Format("2006-01-02 15:04 MST"),
	}
}

// RenderMagicLink renders the sign-in body.
func RenderMagicLink(appName, name, link string, expiresAt time.Time) (string, error) {
	return magicLinkTemplate.Render(magicLinkData(appName, name, link, expiresAt))
}

// SendMagicLink sends the sign-in mail to a single recipient.
func (c *Client) SendMagicLink(from, to, appName, name, link string, expiresAt time.Time) error {
	return c.SendWithTemplate(from, to, "Your sign-in link for "+appName,
		magicLinkTemplate, magicLinkData(appName, name, link, expiresAt))
}
