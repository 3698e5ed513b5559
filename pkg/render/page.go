package render

import (
	"github.com/flosch/pongo2/v6"
	"github.com/m-mizutani/goerr/v2"
)

// Navigation replaces submit and page_break markers on a filling page
type Navigation struct {
	ShowPrev   bool
	PrevText   string
	ShowNext   bool
	NextText   string
	ShowSubmit bool
	SubmitText string
}

// FillPage is everything a respondent sees for one step of a form
type FillPage struct {
	FormID      string
	Title       string
	Description string
	ActionURL   string

	PageIndex int
	PageCount int
	Fields    []Presentation
	Nav       Navigation

	Submitting          bool
	Submitted           bool
	ConfirmationMessage string
	CanRestart          bool
	Error               string
}

// PreviewPage shows every page of a form in editing mode
type PreviewPage struct {
	Title       string
	Description string
	Pages       [][]Presentation
}

func (r *Renderer) RenderFillPage(p FillPage) (string, error) {
	html, err := r.execute("page_fill.html", pongo2.Context{"page": p})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render fill page", goerr.V("form_id", p.FormID))
	}
	return html, nil
}

func (r *Renderer) RenderPreviewPage(p PreviewPage) (string, error) {
	html, err := r.execute("page_preview.html", pongo2.Context{"page": p})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render preview page")
	}
	return html, nil
}

// RenderMessagePage renders a standalone notice such as "form not found"
func (r *Renderer) RenderMessagePage(title, message string) (string, error) {
	html, err := r.execute("page_message.html", pongo2.Context{
		"title":   title,
		"message": message,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render message page")
	}
	return html, nil
}
