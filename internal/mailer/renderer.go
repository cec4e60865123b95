package mailer

import (
	"embed"
	"fmt"

	"github.com/flosch/pongo2/v6"
)

// Template names.
const (
	TemplateVerification  = "verification"
	TemplateVerified      = "verified"
	TemplatePasswordReset = "password_reset"
)

//go:embed templates/*.html
var templateFS embed.FS

type emailTemplate struct {
	subject string
	text    *pongo2.Template
	html    *pongo2.Template
}

var definitions = map[string]struct {
	subject string
	text    string
}{
	TemplateVerification: {
		subject: "Verify account",
		text:    "Hello {{ name }}, your verification code is {{ code }}. It expires in {{ ttl_minutes }} minutes.",
	},
	TemplateVerified: {
		subject: "Account Verified Successfully",
		text:    "Hello {{ name }}, your account has been verified. Enjoy Budget Control!",
	},
	TemplatePasswordReset: {
		subject: "Reset Your Password",
		text:    "Hello, your 6-digit code to reset your password is: {{ code }}. It expires in {{ ttl_minutes }} minutes.",
	},
}

// Renderer compiles the embedded email templates once and renders them on demand.
type Renderer struct {
	templates map[string]emailTemplate
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]emailTemplate, len(definitions))}
	for name, def := range definitions {
		raw, err := templateFS.ReadFile("templates/" + name + ".html")
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		html, err := pongo2.FromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		text, err := pongo2.FromString(def.text)
		if err != nil {
			return nil, fmt.Errorf("parse text template %s: %w", name, err)
		}
		r.templates[name] = emailTemplate{subject: def.subject, text: text, html: html}
	}
	return r, nil
}

// Render executes the named template with data.
func (r *Renderer) Render(name string, data map[string]interface{}) (Message, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown email template %q", name)
	}

	ctx := pongo2.Context(data)
	text, err := tpl.text.Execute(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("render text %s: %w", name, err)
	}
	html, err := tpl.html.Execute(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("render html %s: %w", name, err)
	}

	return Message{Subject: tpl.subject, Text: text, HTML: html}, nil
}
