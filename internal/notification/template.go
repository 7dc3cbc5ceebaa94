package notification

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"
)

// Message template names.
const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplatePaymentSettled    = "payment_settled"
	TemplateVerificationCode  = "verification_code"
)

// Each template source defines a "subject" and a "body" block.
var defaultTemplates = map[string]string{
	TemplateOrderConfirmation: `{{define "subject"}}Order {{.OrderID}} received{{end}}
{{define "body"}}Thank you for your order.

Order: {{.OrderID}}
{{range .Items}}  {{.Quantity}} x {{.ProductID}} @ {{.UnitPrice.StringFixed 2}}
{{end}}Total: {{.Total.StringFixed 2}}
Payment method: {{.Method}}
{{end}}`,
	TemplatePaymentSettled: `{{define "subject"}}Payment {{.Status}} for order {{.OrderID}}{{end}}
{{define "body"}}The payment for order {{.OrderID}} is now {{.Status}}.
{{end}}`,
	TemplateVerificationCode: `{{define "subject"}}Your verification code{{end}}
{{define "body"}}Your verification code is {{.Code}}.
{{end}}`,
}

// Templates renders notification messages.
type Templates struct {
	set map[string]*template.Template
}

// LoadTemplates parses every known template, preferring "<name>.tmpl" from
// loader and using the built-in text when the loader has none.
func LoadTemplates(ctx context.Context, loader Loader, logger zerolog.Logger) (*Templates, error) {
	logger = logger.With().Str("component", "templates").Logger()

	t := &Templates{set: make(map[string]*template.Template, len(defaultTemplates))}
	for name, fallback := range defaultTemplates {
		src := fallback
		if loader != nil {
			data, err := loader.Load(ctx, name+".tmpl")
			if err == nil {
				src = string(data)
				logger.Info().Str("template", name).Msg("using custom template")
			} else {
				logger.Debug().Err(err).Str("template", name).Msg("using built-in template")
			}
		}

		tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		if tmpl.Lookup("subject") == nil || tmpl.Lookup("body") == nil {
			return nil, fmt.Errorf("template %s must define subject and body", name)
		}
		t.set[name] = tmpl
	}

	return t, nil
}

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() *Templates {
	t, err := LoadTemplates(context.Background(), nil, zerolog.Nop())
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the named template and returns subject and body.
func (t *Templates) Render(name string, data any) (string, string, error) {
	tmpl, ok := t.set[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %s", name)
	}

	var subject, body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s subject: %w", name, err)
	}
	if err := tmpl.ExecuteTemplate(&body, "body", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s body: %w", name, err)
	}

	return strings.TrimSpace(subject.String()), body.String(), nil
}
