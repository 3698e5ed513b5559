// Package palette is the catalog of field types a builder can drop onto the
// canvas. Every entry carries a template field with sensible defaults.
package palette

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

var ErrUnknownFieldType = goerr.New("unknown field type")

const FieldTypeKey = "field_type"

// Entry is one draggable item of the palette
type Entry struct {
	Type        types.FieldType `json:"type"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Template    model.Field     `json:"template"`
}

func (e Entry) clone() Entry {
	e.Template = e.Template.Clone()
	return e
}

// Content returns the catalog of value-collecting and display fields
func Content() []Entry {
	return cloneEntries(contentEntries)
}

// Layout returns the catalog of headings, separators and flow controls
func Layout() []Entry {
	return cloneEntries(layoutEntries)
}

// All returns Content followed by Layout
func All() []Entry {
	return append(Content(), Layout()...)
}

// Lookup returns the entry of t. Unknown types are never matched.
func Lookup(t types.FieldType) (Entry, bool) {
	for _, entries := range [][]Entry{contentEntries, layoutEntries} {
		for _, e := range entries {
			if e.Type == t {
				return e.clone(), true
			}
		}
	}
	return Entry{}, false
}

// Instantiate returns a copy of the template for t with a fresh field ID
func Instantiate(t types.FieldType) (model.Field, error) {
	entry, ok := Lookup(t)
	if !ok {
		return model.Field{}, goerr.Wrap(ErrUnknownFieldType, "cannot instantiate field", goerr.V(FieldTypeKey, t))
	}

	field := entry.Template
	field.ID = types.NewFieldID()
	return field, nil
}

func cloneEntries(src []Entry) []Entry {
	out := make([]Entry, len(src))
	for i := range src {
		out[i] = src[i].clone()
	}
	return out
}

func defaultOptions() []model.Option {
	return []model.Option{
		{Label: "Option 1", Value: "option_1"},
		{Label: "Option 2", Value: "option_2"},
		{Label: "Option 3", Value: "option_3"},
	}
}

func entry(t types.FieldType, label, description string, build func(f *model.Field)) Entry {
	f := model.Field{
		ID:          types.FieldID(string(t) + "-template"),
		Type:        t,
		Label:       label,
		Description: description,
	}
	if build != nil {
		build(&f)
	}
	return Entry{Type: t, Label: label, Description: description, Template: f}
}

var contentEntries = []Entry{
	entry(types.FieldTypeText, "Short text", "Single line input", func(f *model.Field) {
		f.Placeholder = "Enter text here"
	}),
	entry(types.FieldTypeParagraph, "Long text", "Multi-line input", func(f *model.Field) {
		f.Placeholder = "Enter text here"
	}),
	entry(types.FieldTypeTextEditor, "Text editor", "Text editor that allows formatting", nil),
	entry(types.FieldTypeNumber, "Number", "Input field that only allows numbers", func(f *model.Field) {
		f.Placeholder = "Enter a number"
		f.Validation = &model.Validation{Min: model.Ptr(0.0), Max: model.Ptr(100.0)}
	}),
	entry(types.FieldTypeEmail, "Email", "Input field that expects an email", func(f *model.Field) {
		f.Placeholder = "Enter your email"
	}),
	entry(types.FieldTypePhone, "Phone", "Phone number with country selector", func(f *model.Field) {
		f.Placeholder = "Enter your phone number"
	}),
	entry(types.FieldTypeSignature, "Signature", "Draw, type or upload signature", nil),
	entry(types.FieldTypeDateTime, "Date & Time", "Date and time picker", func(f *model.Field) {
		f.Config = &model.Config{EnableTime: model.Ptr(true), EnableDate: model.Ptr(true)}
	}),
	entry(types.FieldTypeChoice, "Choice", "Single or multiple choice selection", func(f *model.Field) {
		f.Config = &model.Config{
			Options:    defaultOptions(),
			Multiple:   model.Ptr(false),
			AllowOther: model.Ptr(false),
		}
	}),
	entry(types.FieldTypeCheckbox, "Single Checkbox", "A single checkbox for agreement", func(f *model.Field) {
		f.Config = &model.Config{Text: model.Ptr("I agree to the terms and conditions")}
	}),
	entry(types.FieldTypeMultipleChoice, "Multiple choice", "Accept multiple options", func(f *model.Field) {
		f.Config = &model.Config{Options: defaultOptions(), AllowOther: model.Ptr(false)}
	}),
	entry(types.FieldTypeCheckboxes, "Checkboxes", "Select multiple options", func(f *model.Field) {
		f.Config = &model.Config{Options: defaultOptions(), Multiple: model.Ptr(true)}
	}),
	entry(types.FieldTypeDropdown, "Dropdown", "Select from a dropdown list", func(f *model.Field) {
		f.Config = &model.Config{Options: defaultOptions()}
	}),
	entry(types.FieldTypeDescription, "Paragraph", "Formattable text", func(f *model.Field) {
		f.Config = &model.Config{Text: model.Ptr("Add your text here")}
	}),
	entry(types.FieldTypeImage, "Image", "Display an image", func(f *model.Field) {
		f.Config = &model.Config{Text: model.Ptr("Image description"), URL: model.Ptr("")}
	}),
	entry(types.FieldTypeLink, "Link", "Link to another website", func(f *model.Field) {
		f.Config = &model.Config{Text: model.Ptr("Link text"), URL: model.Ptr("https://example.com")}
	}),
}

var layoutEntries = []Entry{
	entry(types.FieldTypeFormHeading, "Form Heading", "Main heading for the form", func(f *model.Field) {
		f.Config = &model.Config{Text: model.Ptr("Form Heading"), Size: "xl"}
	}),
	entry(types.FieldTypeSectionHeading, "Section Heading", "Heading for a section of the form", func(f *model.Field) {
		f.Config = &model.Config{Text: model.Ptr("Section Heading"), Size: "lg"}
	}),
	entry(types.FieldTypeSubHeading, "Sub Heading", "Sub-heading for a section", func(f *model.Field) {
		f.Config = &model.Config{Text: model.Ptr("Sub Heading"), Size: "md"}
	}),
	entry(types.FieldTypeDivider, "Divider", "Visual separator between sections", func(f *model.Field) {
		f.Config = &model.Config{Style: "solid"}
	}),
	entry(types.FieldTypeSpacer, "Spacer", "Add vertical space between components", func(f *model.Field) {
		f.Config = &model.Config{Height: "md"}
	}),
	entry(types.FieldTypeSubmit, "Submit Button", "Button to submit the form", func(f *model.Field) {
		f.Config = &model.Config{Text: model.Ptr("Submit"), Style: "primary"}
	}),
	entry(types.FieldTypePageBreak, "Page Break", "Break the form into multiple pages", func(f *model.Field) {
		f.Config = &model.Config{NextButtonText: "Next", PrevButtonText: "Previous"}
	}),
}
