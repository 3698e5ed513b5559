package render

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/secmon-lab/formflow/pkg/domain/model"
)

type optionView struct {
	Label    string
	Value    string
	Selected bool
}

// fieldView is the flat template context of one field
type fieldView struct {
	ID          string
	Type        string
	Template    string
	Label       string
	Description string
	Placeholder string
	Required    bool
	Disabled    bool
	Error       string

	InputType string
	Value     string
	Checked   bool
	Min       string
	Max       string
	MinLength string
	MaxLength string
	Pattern   string

	Options     []optionView
	Multiple    bool
	AllowOther  bool
	OtherName   string
	OtherOption string
	OtherValue  string
	OtherActive bool

	PhoneCode   string
	PhoneNumber string

	Text     string
	TextHTML string
	URL      string
	Size     string
	Style    string
	Height   string
	Tag      string
	NextText string
	PrevText string
}

var phoneCodes = []string{"+1", "+44", "+49", "+33", "+81", "+86", "+91", "+61"}

func newFieldView(f model.Field, mode Mode, value any) fieldView {
	v := fieldView{
		ID:          f.ID.String(),
		Type:        f.Type.String(),
		Label:       f.Label,
		Description: f.Description,
		Placeholder: f.Placeholder,
		Required:    f.Required,
		Disabled:    mode == Editing,
		OtherName:   f.ID.String() + OtherSuffix,
		OtherOption: OtherOption,
	}

	switch k := f.Kind().(type) {
	case model.TextKind:
		v.Template, v.InputType, v.Value = "field_input.html", "text", stringValue(value)
		v.applyLength(k.LengthRules)
	case model.ParagraphKind:
		v.Template, v.Value = "field_textarea.html", stringValue(value)
		v.applyLength(k.LengthRules)
	case model.TextEditorKind:
		v.Template, v.TextHTML = "field_text_editor.html", SanitizeRichText(stringValue(value))
	case model.EmailKind:
		v.Template, v.InputType, v.Value = "field_input.html", "email", stringValue(value)
	case model.NumberKind:
		v.Template, v.InputType, v.Value = "field_input.html", "number", numberValue(value)
		v.Min, v.Max = formatBound(k.Min), formatBound(k.Max)
	case model.PhoneKind:
		v.Template = "field_phone.html"
		v.PhoneCode, v.PhoneNumber = splitPhone(stringValue(value))
		v.Options = phoneOptions(v.PhoneCode)
	case model.SignatureKind:
		v.Template, v.Value = "field_signature.html", stringValue(value)
	case model.DateTimeKind:
		v.Template = "field_input.html"
		v.InputType, v.Value = dateTimeInput(k, stringValue(value))
	case model.ChoiceKind:
		v.Template = "field_choice.html"
		v.Multiple, v.AllowOther = k.Multiple, k.AllowOther
		v.applyOptions(k.Options, value)
	case model.MultipleChoiceKind:
		v.Template = "field_choice.html"
		v.AllowOther = k.AllowOther
		v.applyOptions(k.Options, value)
	case model.CheckboxesKind:
		v.Template, v.Multiple = "field_choice.html", true
		v.applyOptions(k.Options, value)
	case model.DropdownKind:
		v.Template = "field_dropdown.html"
		v.applyOptions(k.Options, value)
	case model.CheckboxKind:
		v.Template, v.Text = "field_checkbox.html", k.Text
		v.Checked, _ = value.(bool)
	case model.DescriptionKind:
		v.Template, v.TextHTML = "field_description.html", SanitizeRichText(k.Text)
	case model.ImageKind:
		v.Template, v.Text, v.URL = "field_image.html", k.Text, safeURL(k.URL)
	case model.LinkKind:
		v.Template, v.Text, v.URL = "field_link.html", k.Text, safeURL(k.URL)
	case model.FormHeadingKind:
		v.applyHeading(k.Heading, "h1")
	case model.SectionHeadingKind:
		v.applyHeading(k.Heading, "h2")
	case model.SubHeadingKind:
		v.applyHeading(k.Heading, "h3")
	case model.DividerKind:
		v.Template, v.Style = "field_divider.html", k.Style
	case model.SpacerKind:
		v.Template, v.Height = "field_spacer.html", k.Height
	case model.SubmitKind:
		v.Template, v.Text, v.Style = "field_submit.html", k.Text, k.Style
	case model.PageBreakKind:
		v.Template, v.NextText, v.PrevText = "field_page_break.html", k.NextButtonText, k.PrevButtonText
	case model.UnknownKind:
		v.Template = "field_unknown.html"
	}

	return v
}

func (v *fieldView) applyLength(r model.LengthRules) {
	if r.MinLength != nil {
		v.MinLength = strconv.Itoa(*r.MinLength)
	}
	if r.MaxLength != nil {
		v.MaxLength = strconv.Itoa(*r.MaxLength)
	}
	v.Pattern = r.Pattern
}

func (v *fieldView) applyHeading(h model.Heading, tag string) {
	v.Template, v.Text, v.Size, v.Tag = "field_heading.html", h.Text, h.Size, tag
}

func (v *fieldView) applyOptions(opts []model.Option, value any) {
	selected, _ := model.ToStrings(value)
	if s, ok := value.(string); ok && s != "" {
		selected = []string{s}
	}

	known := make(map[string]bool, len(opts))
	for _, o := range opts {
		known[o.Value] = true
		v.Options = append(v.Options, optionView{
			Label:    o.Label,
			Value:    o.Value,
			Selected: slices.Contains(selected, o.Value),
		})
	}

	if v.AllowOther {
		for _, s := range selected {
			if !known[s] {
				v.OtherActive, v.OtherValue = true, s
				break
			}
		}
	}
}

func stringValue(value any) string {
	s, _ := value.(string)
	return s
}

func numberValue(value any) string {
	switch x := value.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return ""
}

func formatBound(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func splitPhone(s string) (string, string) {
	code, number, ok := strings.Cut(s, " ")
	if !ok || !strings.HasPrefix(code, "+") {
		return phoneCodes[0], s
	}
	return code, number
}

func phoneOptions(selected string) []optionView {
	out := make([]optionView, 0, len(phoneCodes))
	for _, c := range phoneCodes {
		out = append(out, optionView{Label: c, Value: c, Selected: c == selected})
	}
	return out
}

// dateTimeInput picks the HTML input type and formats a stored RFC3339
// value for it
func dateTimeInput(k model.DateTimeKind, value string) (string, string) {
	inputType, layout := "time", timeLayout
	switch {
	case k.EnableDate && k.EnableTime:
		inputType, layout = "datetime-local", dateTimeLayout
	case k.EnableDate:
		inputType, layout = "date", dateLayout
	}

	if value == "" {
		return inputType, ""
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return inputType, value
	}
	return inputType, t.UTC().Format(layout)
}

// safeURL only lets http(s), relative and empty URLs through
func safeURL(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	if s == "" || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || (strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//")) {
		return s
	}
	return ""
}
