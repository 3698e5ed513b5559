package formgen

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

var ErrNoJSONObject = goerr.New("reply does not contain a JSON object")

const (
	FallbackTitle      = "Generated Form"
	FallbackImageTitle = "Form from Image"

	// FallbackImageDescription describes a fallback form generated from an
	// image without a prompt
	FallbackImageDescription = "Image-based form"
)

// ExtractJSON returns the first top-level balanced {...} object in s. Braces
// inside JSON strings are ignored.
func ExtractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func (g *Generator) formID() types.FormID {
	if g.newID != nil {
		return types.FormID(g.newID())
	}
	return types.NewFormID()
}

func (g *Generator) fieldID() types.FieldID {
	if g.newID != nil {
		return types.FieldID(g.newID())
	}
	return types.NewFieldID()
}

// parse decodes a model reply and repairs what the model commonly gets
// wrong: ids, orders, settings and the title
func (g *Generator) parse(reply string) (*model.Form, error) {
	body, ok := ExtractJSON(reply)
	if !ok {
		return nil, goerr.Wrap(ErrNoJSONObject, "parse reply", goerr.V(ReplyKey, truncate(reply, 200)))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, goerr.Wrap(err, "reply is not a JSON object", goerr.V(ReplyKey, truncate(body, 200)))
	}

	var form model.Form
	if err := json.Unmarshal([]byte(body), &form); err != nil {
		return nil, goerr.Wrap(err, "reply does not match form shape", goerr.V(ReplyKey, truncate(body, 200)))
	}

	if form.ID.Validate() != nil {
		form.ID = g.formID()
	}
	if _, ok := raw["settings"]; !ok {
		form.Settings = model.DefaultSettings()
	}
	if strings.TrimSpace(form.Title) == "" {
		form.Title = FallbackTitle
	}

	fields := make([]model.Field, 0, len(form.Fields))
	seen := make(map[types.FieldID]bool, len(form.Fields))
	for _, f := range form.Fields {
		// invented types are kept and decode to UnknownKind
		if f.ID == "" || seen[f.ID] {
			f.ID = g.fieldID()
		}
		seen[f.ID] = true
		f.Order = len(fields)
		fields = append(fields, f)
	}
	form.Fields = fields

	return &form, nil
}

// fallback is the minimal form returned whenever generation cannot produce
// a usable document. IDs are fresh on every call.
func (g *Generator) fallback(input Input) *model.Form {
	title := FallbackTitle
	if input.HasImage() {
		title = FallbackImageTitle
	}
	description := input.Prompt
	if strings.TrimSpace(description) == "" {
		description = FallbackImageDescription
	}

	return &model.Form{
		ID:          g.formID(),
		Title:       title,
		Description: description,
		Settings:    model.DefaultSettings(),
		Fields: []model.Field{
			{
				ID:     g.fieldID(),
				Type:   types.FieldTypeFormHeading,
				Order:  0,
				Label:  "Form Heading",
				Config: &model.Config{Text: model.Ptr("Generated Form from Image"), Size: "xl"},
			},
			{
				ID:          g.fieldID(),
				Type:        types.FieldTypeText,
				Order:       1,
				Label:       "Name",
				Required:    true,
				Placeholder: "Enter your name",
			},
			{
				ID:          g.fieldID(),
				Type:        types.FieldTypeEmail,
				Order:       2,
				Label:       "Email",
				Required:    true,
				Placeholder: "Enter your email",
			},
			{
				ID:     g.fieldID(),
				Type:   types.FieldTypeSubmit,
				Order:  3,
				Label:  "Submit Button",
				Config: &model.Config{Text: model.Ptr("Submit"), Style: "primary"},
			},
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
