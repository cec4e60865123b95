// Package mailer delivers account lifecycle emails. Delivery is best effort:
// callers log failures instead of failing the request that triggered them.
package mailer

import (
	"context"
	"time"
)

// Notifier sends account lifecycle emails.
type Notifier interface {
	SendVerification(ctx context.Context, name, email, code string) error
	SendVerified(ctx context.Context, name, email string) error
	SendPasswordReset(ctx context.Context, email, code string) error
}

// Message is a rendered email ready for a Transport.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Transport delivers rendered messages.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// Mailer renders lifecycle templates and hands them to a Transport.
type Mailer struct {
	renderer    *Renderer
	transport   Transport
	frontendURL string
	codeTTL     time.Duration
}

// New creates a Mailer. frontendURL is used for links in the emails and codeTTL
// is shown to users as the code lifetime.
func New(renderer *Renderer, transport Transport, frontendURL string, codeTTL time.Duration) *Mailer {
	return &Mailer{
		renderer:    renderer,
		transport:   transport,
		frontendURL: frontendURL,
		codeTTL:     codeTTL,
	}
}

// SendVerification emails the account verification code.
func (m *Mailer) SendVerification(ctx context.Context, name, email, code string) error {
	return m.send(ctx, email, TemplateVerification, map[string]interface{}{
		"name": name,
		"code": code,
	})
}

// SendVerified confirms a completed verification.
func (m *Mailer) SendVerified(ctx context.Context, name, email string) error {
	return m.send(ctx, email, TemplateVerified, map[string]interface{}{
		"name": name,
	})
}

// SendPasswordReset emails the password reset code.
func (m *Mailer) SendPasswordReset(ctx context.Context, email, code string) error {
	return m.send(ctx, email, TemplatePasswordReset, map[string]interface{}{
		"code": code,
	})
}

func (m *Mailer) send(ctx context.Context, to, name string, data map[string]interface{}) error {
	data["frontend_url"] = m.frontendURL
	data["ttl_minutes"] = int(m.codeTTL.Minutes())

	msg, err := m.renderer.Render(name, data)
	if err != nil {
		return err
	}
	msg.To = to
	return m.transport.Deliver(ctx, msg)
}
