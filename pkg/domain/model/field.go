package model

import (
	"slices"

	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// Field is one element of a form: an input, display text or layout marker.
// Config and Validation are the loosely typed wire bag; use Kind() to work
// with the per-type payload.
type Field struct {
	ID          types.FieldID   `json:"id"`
	Type        types.FieldType `json:"type"`
	Order       int             `json:"order"`
	Label       string          `json:"label"`
	Description string          `json:"description,omitempty"`
	Required    bool            `json:"required,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	Validation  *Validation     `json:"validation,omitempty"`
	Config      *Config         `json:"config,omitempty"`
}

// Validation holds bounds whose meaning depends on the field type
type Validation struct {
	Pattern   string   `json:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
}

// Option is one entry of a choice-like field
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Config is the type dependent configuration bag
type Config struct {
	Options        []Option `json:"options,omitempty"`
	AllowOther     *bool    `json:"allowOther,omitempty"`
	Multiple       *bool    `json:"multiple,omitempty"`
	Text           *string  `json:"text,omitempty"`
	URL            *string  `json:"url,omitempty"`
	Size           string   `json:"size,omitempty"`
	Style          string   `json:"style,omitempty"`
	Height         string   `json:"height,omitempty"`
	NextButtonText string   `json:"nextButtonText,omitempty"`
	PrevButtonText string   `json:"prevButtonText,omitempty"`
	EnableDate     *bool    `json:"enableDate,omitempty"`
	EnableTime     *bool    `json:"enableTime,omitempty"`
}

// Clone returns a deep copy of the field
func (f Field) Clone() Field {
	out := f
	if f.Validation != nil {
		v := *f.Validation
		v.Min = clonePtr(f.Validation.Min)
		v.Max = clonePtr(f.Validation.Max)
		v.MinLength = clonePtr(f.Validation.MinLength)
		v.MaxLength = clonePtr(f.Validation.MaxLength)
		out.Validation = &v
	}
	if f.Config != nil {
		c := *f.Config
		c.Options = slices.Clone(f.Config.Options)
		c.AllowOther = clonePtr(f.Config.AllowOther)
		c.Multiple = clonePtr(f.Config.Multiple)
		c.Text = clonePtr(f.Config.Text)
		c.URL = clonePtr(f.Config.URL)
		c.EnableDate = clonePtr(f.Config.EnableDate)
		c.EnableTime = clonePtr(f.Config.EnableTime)
		out.Config = &c
	}
	return out
}

// ValueKind returns the semantic type of the value this field produces
func (f Field) ValueKind() types.ValueKind {
	if f.Type == types.FieldTypeChoice && f.Config != nil && f.Config.Multiple != nil && *f.Config.Multiple {
		return types.ValueStrings
	}
	return f.Type.ValueKind()
}

// IsContent reports whether the field collects an end-user value
func (f Field) IsContent() bool {
	return f.Type.IsContent()
}

// Ptr returns a pointer to v. Handy for optional config values.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
