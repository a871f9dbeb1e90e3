package mailer

import (
	"embed"
	"fmt"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names an embedded email body.
type Template string

const (
	TemplateWelcome       Template = "welcome"
	TemplateTicketCreated Template = "ticket_created"
	TemplateTicketStatus  Template = "ticket_status"
	TemplateCommentAdded  Template = "comment_added"
	TemplateCustom        Template = "custom"
)

var allTemplates = []Template{TemplateWelcome, TemplateTicketCreated, TemplateTicketStatus, TemplateCommentAdded, TemplateCustom}

// Renderer holds the compiled email templates. Values are autoescaped.
type Renderer struct {
	templates map[Template]*pongo2.Template
}

// NewRenderer compiles every embedded template.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[Template]*pongo2.Template, len(allTemplates))}
	for _, name := range allTemplates {
		src, err := templateFS.ReadFile("templates/" + string(name) + ".html")
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		tpl, err := pongo2.FromBytes(src)
		if err != nil {
			return nil, fmt.Errorf("compile template %s: %w", name, err)
		}
		r.templates[name] = tpl
	}
	return r, nil
}

// Render executes the named template.
func (r *Renderer) Render(name Template, data map[string]interface{}) (string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return out, nil
}

var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeHTML strips scripts, event handlers and other unsafe markup from
// caller-supplied HTML.
func SanitizeHTML(raw string) string {
	return ugcPolicy.Sanitize(raw)
}
