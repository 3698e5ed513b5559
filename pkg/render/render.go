// Package render turns fields into HTML for the builder canvas (inert
// preview) and for respondents filling a form.
package render

import (
	"bytes"
	"embed"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrTemplate = goerr.New("failed to render template")

// Mode selects how a field is drawn
type Mode int

const (
	// Editing draws an inert preview with disabled inputs
	Editing Mode = iota
	// Filling draws live inputs for a respondent
	Filling
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "filling"
}

// Presentation is the rendered form of one field
type Presentation struct {
	FieldID types.FieldID   `json:"fieldId"`
	Type    types.FieldType `json:"type"`
	HTML    string          `json:"html"`
	// Interactive is true when the field collects a respondent value
	Interactive bool `json:"interactive"`
	// Control marks submit and page_break. Page level views replace them
	// with their own navigation.
	Control bool `json:"control"`
}

type Renderer struct {
	set *pongo2.TemplateSet

	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

type Option func(*config)

type config struct {
	templates fs.FS
}

// WithTemplates overrides the embedded templates. Names must match the
// embedded ones.
func WithTemplates(fsys fs.FS) Option {
	return func(c *config) {
		c.templates = fsys
	}
}

func New(opts ...Option) (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open embedded templates")
	}
	cfg := &config{templates: sub}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &Renderer{
		set:       pongo2.NewSet("formflow", pongo2.NewFSLoader(cfg.templates)),
		templates: make(map[string]*pongo2.Template),
	}

	// Parse everything up front so a broken template fails at startup
	names, err := fs.Glob(cfg.templates, "*.html")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list templates")
	}
	for _, name := range names {
		if _, err := r.template(name); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, goerr.Wrap(ErrTemplate, err.Error(), goerr.V("template", name))
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

func (r *Renderer) execute(name string, ctx pongo2.Context) (string, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", goerr.Wrap(ErrTemplate, err.Error(), goerr.V("template", name))
	}
	return buf.String(), nil
}

// Render draws one field. value is the respondent's current value and is
// ignored for fields that collect nothing.
func (r *Renderer) Render(f model.Field, mode Mode, value any) (Presentation, error) {
	return r.render(f, mode, value, "")
}

// RenderWithError draws a field in filling mode with its validation message
func (r *Renderer) RenderWithError(f model.Field, value any, message string) (Presentation, error) {
	return r.render(f, Filling, value, message)
}

func (r *Renderer) render(f model.Field, mode Mode, value any, message string) (Presentation, error) {
	view := newFieldView(f, mode, value)
	view.Error = message

	html, err := r.execute(view.Template, pongo2.Context{
		"field": view,
		"mode":  mode.String(),
	})
	if err != nil {
		return Presentation{}, goerr.Wrap(err, "failed to render field",
			goerr.V(model.FieldIDKey, f.ID),
			goerr.V(model.FieldTypeKey, f.Type))
	}

	control := f.Type.Category() == types.CategoryControl
	return Presentation{
		FieldID:     f.ID,
		Type:        f.Type,
		HTML:        html,
		Interactive: f.IsContent() && mode == Filling,
		Control:     control,
	}, nil
}
