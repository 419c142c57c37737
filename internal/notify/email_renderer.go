package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// HTMLEmailRenderer renders digests as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

// NewHTMLEmailRenderer creates a renderer with the default email template.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Funcs(template.FuncMap{
		"date": func(d Digest) string {
			if d.AskedAt.IsZero() {
				return ""
			}
			return d.AskedAt.Format(dateLayout)
		},
	}).Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

// Render produces an HTML email with plain text alternative.
func (r *HTMLEmailRenderer) Render(d Digest) (*RenderedMessage, error) {
	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, d); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: d.Subject(),
		Text:    renderPlainText(d),
		HTML:    htmlBuf.String(),
	}, nil
}

func renderPlainText(d Digest) string {
	var sb strings.Builder

	sb.WriteString(d.Question + "\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	if !d.AskedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Date: %s\n", d.AskedAt.Format(dateLayout)))
	}
	sb.WriteString(fmt.Sprintf("Label: %s\n", d.Label))
	sb.WriteString(fmt.Sprintf("Symbols: %s\n", orNone(d.Symbols)))
	sb.WriteString(fmt.Sprintf("Sources: %s\n\n", orNone(d.Sources)))

	sb.WriteString("ANSWER\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	sb.WriteString(d.Answer + "\n")

	return sb.String()
}
