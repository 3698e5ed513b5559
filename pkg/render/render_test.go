package render_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/palette"
	"github.com/secmon-lab/formflow/pkg/render"
)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New()
	gt.NoError(t, err).Required()
	return r
}

func TestRenderEveryPaletteType(t *testing.T) {
	r := newRenderer(t)

	for _, e := range palette.All() {
		t.Run(e.Type.String(), func(t *testing.T) {
			for _, mode := range []render.Mode{render.Editing, render.Filling} {
				p, err := r.Render(e.Template, mode, nil)
				gt.NoError(t, err).Required()
				gt.Value(t, p.FieldID).Equal(e.Template.ID)
				gt.String(t, p.HTML).Contains(`data-field-id="` + e.Template.ID.String() + `"`)
				gt.Value(t, p.Control).Equal(e.Type.Category() == types.CategoryControl)
				gt.Value(t, p.Interactive).Equal(mode == render.Filling && e.Type.IsContent())
			}
		})
	}
}

func TestRenderModes(t *testing.T) {
	r := newRenderer(t)
	f := model.Field{ID: "field_name", Type: types.FieldTypeText, Label: "Name", Required: true}

	editing, err := r.Render(f, render.Editing, nil)
	gt.NoError(t, err).Required()
	gt.String(t, editing.HTML).Contains(" disabled")
	gt.Bool(t, editing.Interactive).False()

	filling, err := r.Render(f, render.Filling, "Ada")
	gt.NoError(t, err).Required()
	gt.Bool(t, filling.Interactive).True()
	gt.String(t, filling.HTML).Contains(`value="Ada"`)
	gt.String(t, filling.HTML).Contains(`<span class="ff-required">*</span>`)
}

func TestRenderEscapesValues(t *testing.T) {
	r := newRenderer(t)
	f := model.Field{ID: "field_name", Type: types.FieldTypeText, Label: "<b>Name</b>"}

	p, err := r.Render(f, render.Filling, `"><script>alert(1)</script>`)
	gt.NoError(t, err).Required()
	gt.Bool(t, strings.Contains(p.HTML, "<script>")).False()
	gt.Bool(t, strings.Contains(p.HTML, "<b>Name</b>")).False()
}

func TestRenderDescriptionIsSanitized(t *testing.T) {
	r := newRenderer(t)
	f := model.Field{ID: "field_d", Type: types.FieldTypeDescription}.WithKind(model.DescriptionKind{
		Text: `<p>Hello <strong>there</strong></p><script>alert(1)</script>`,
	})

	p, err := r.Render(f, render.Filling, nil)
	gt.NoError(t, err).Required()
	gt.String(t, p.HTML).Contains("<strong>there</strong>")
	gt.Bool(t, strings.Contains(p.HTML, "<script>")).False()
	gt.Bool(t, p.Interactive).False()
}

func TestRenderUnknownType(t *testing.T) {
	r := newRenderer(t)
	f := model.Field{ID: "field_r", Type: "rating", Label: "Stars"}

	p, err := r.Render(f, render.Editing, nil)
	gt.NoError(t, err).Required()
	gt.String(t, p.HTML).Contains("Unknown component type: rating")
	gt.String(t, p.HTML).Contains("Stars")
	gt.Bool(t, p.Control).False()
}

func TestRenderChoiceSelection(t *testing.T) {
	r := newRenderer(t)
	f, err := palette.Instantiate(types.FieldTypeCheckboxes)
	gt.NoError(t, err).Required()

	p, err := r.Render(f, render.Filling, []any{"option_2"})
	gt.NoError(t, err).Required()
	gt.String(t, p.HTML).Contains(`type="checkbox" name="` + f.ID.String() + `" value="option_2" checked`)
}

func TestRenderWithError(t *testing.T) {
	r := newRenderer(t)
	f := model.Field{ID: "field_e", Type: types.FieldTypeEmail, Label: "Email"}

	p, err := r.RenderWithError(f, "nope", model.MsgInvalidEmail)
	gt.NoError(t, err).Required()
	gt.String(t, p.HTML).Contains("Please enter a valid email address")
}

func TestRenderFillPage(t *testing.T) {
	r := newRenderer(t)
	f := model.Field{ID: "field_name", Type: types.FieldTypeText, Label: "Name"}
	p, err := r.Render(f, render.Filling, nil)
	gt.NoError(t, err).Required()

	html, err := r.RenderFillPage(render.FillPage{
		FormID:    "f1",
		Title:     "Signup",
		ActionURL: "/f/f1",
		PageIndex: 0,
		PageCount: 2,
		Fields:    []render.Presentation{p},
		Nav:       render.Navigation{ShowNext: true, NextText: "Continue"},
	})
	gt.NoError(t, err).Required()
	gt.String(t, html).Contains("Page 1 of 2")
	gt.String(t, html).Contains(`value="next">Continue</button>`)
	gt.String(t, html).Contains(`action="/f/f1"`)

	done, err := r.RenderFillPage(render.FillPage{
		Title:               "Signup",
		Submitted:           true,
		ConfirmationMessage: "Thanks!",
		CanRestart:          true,
	})
	gt.NoError(t, err).Required()
	gt.String(t, done).Contains("Thanks!")
	gt.String(t, done).Contains(`value="restart"`)
}

func TestDecode(t *testing.T) {
	choice := model.Field{ID: "c", Type: types.FieldTypeChoice}.WithKind(model.ChoiceKind{
		Options:    []model.Option{{Label: "A", Value: "a"}},
		AllowOther: true,
		Multiple:   true,
	})

	testCases := []struct {
		name  string
		field model.Field
		raw   []string
		want  any
	}{
		{name: "text", field: model.Field{Type: types.FieldTypeText}, raw: []string{"hi"}, want: "hi"},
		{name: "text missing", field: model.Field{Type: types.FieldTypeText}, raw: nil, want: ""},
		{name: "number", field: model.Field{Type: types.FieldTypeNumber}, raw: []string{" 4.5 "}, want: 4.5},
		{name: "number empty", field: model.Field{Type: types.FieldTypeNumber}, raw: []string{""}, want: nil},
		{name: "checkbox checked", field: model.Field{Type: types.FieldTypeCheckbox}, raw: []string{"true"}, want: true},
		{name: "checkbox on", field: model.Field{Type: types.FieldTypeCheckbox}, raw: []string{"on"}, want: true},
		{name: "checkbox unchecked", field: model.Field{Type: types.FieldTypeCheckbox}, raw: nil, want: false},
		{name: "checkboxes", field: model.Field{Type: types.FieldTypeCheckboxes}, raw: []string{"a", "", "b"}, want: []string{"a", "b"}},
		{name: "multiple choice", field: choice, raw: []string{"a"}, want: []string{"a"}},
		{name: "phone", field: model.Field{Type: types.FieldTypePhone}, raw: []string{"+1", "5551234"}, want: "+1 5551234"},
		{name: "phone without number", field: model.Field{Type: types.FieldTypePhone}, raw: []string{"+1", ""}, want: ""},
		{name: "heading", field: model.Field{Type: types.FieldTypeFormHeading}, raw: []string{"x"}, want: nil},
		{
			name:  "date time local",
			field: model.Field{Type: types.FieldTypeDateTime},
			raw:   []string{"2024-05-01T10:30"},
			want:  "2024-05-01T10:30:00Z",
		},
		{
			name:  "date only",
			field: model.Field{Type: types.FieldTypeDateTime}.WithKind(model.DateTimeKind{EnableDate: true}),
			raw:   []string{"2024-05-01"},
			want:  "2024-05-01T00:00:00Z",
		},
		{
			name:  "rich text sanitized",
			field: model.Field{Type: types.FieldTypeTextEditor},
			raw:   []string{`<p onclick="x()">Hi</p><script>bad()</script>`},
			want:  "<p>Hi</p>",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := render.Decode(tc.field, tc.raw)
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tc.want)
		})
	}

	t.Run("invalid number", func(t *testing.T) {
		_, err := render.Decode(model.Field{Type: types.FieldTypeNumber}, []string{"abc"})
		gt.Error(t, err).Is(render.ErrInvalidValue)
	})

	t.Run("other option", func(t *testing.T) {
		form := url.Values{
			"c":        {"a", render.OtherOption},
			"c__other": {" custom "},
		}
		got, err := render.DecodeValues(choice, form)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(any([]string{"a", "custom"}))
	})

	t.Run("other option left blank", func(t *testing.T) {
		form := url.Values{"c": {render.OtherOption}}
		got, err := render.DecodeValues(choice, form)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(any([]string{}))
	})
}
