package model

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

const (
	DefaultFormTitle           = "Untitled Form"
	DefaultFormDescription     = "Here goes a nice description about your form"
	DefaultConfirmationMessage = "Thank you for your submission!"
)

// Form is the root document: metadata, settings and ordered fields
type Form struct {
	ID          types.FormID `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Settings    Settings     `json:"settings"`
	Fields      []Field      `json:"fields"`
}

// Settings controls the public submission behaviour of a form
type Settings struct {
	RequiresLogin            bool   `json:"requiresLogin"`
	ConfirmationMessage      string `json:"confirmationMessage"`
	AllowMultipleSubmissions bool   `json:"allowMultipleSubmissions"`
}

// DefaultSettings returns settings applied to new forms
func DefaultSettings() Settings {
	return Settings{
		RequiresLogin:            false,
		ConfirmationMessage:      DefaultConfirmationMessage,
		AllowMultipleSubmissions: true,
	}
}

// NewForm creates an empty untitled form with a fresh ID
func NewForm() *Form {
	return NewFormWithID(types.NewFormID())
}

// NewFormWithID creates an empty untitled form with the given ID. Used when a
// builder opens an ID that does not exist yet.
func NewFormWithID(id types.FormID) *Form {
	return &Form{
		ID:          id,
		Title:       DefaultFormTitle,
		Description: DefaultFormDescription,
		Settings:    DefaultSettings(),
		Fields:      []Field{},
	}
}

// MarshalJSON always emits fields as an array
func (f Form) MarshalJSON() ([]byte, error) {
	type alias Form
	a := alias(f)
	if a.Fields == nil {
		a.Fields = []Field{}
	}
	return json.Marshal(a)
}

// Clone returns a deep copy of the form
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	out := *f
	out.Fields = make([]Field, len(f.Fields))
	for i, field := range f.Fields {
		out.Fields[i] = field.Clone()
	}
	return &out
}

// SortedFields returns deep copies of the fields ordered by Order. Raw slice
// position is not authoritative.
func (f *Form) SortedFields() []Field {
	out := make([]Field, len(f.Fields))
	for i, field := range f.Fields {
		out[i] = field.Clone()
	}
	slices.SortStableFunc(out, func(a, b Field) int {
		return a.Order - b.Order
	})
	return out
}

// FieldByID returns the field with id
func (f *Form) FieldByID(id types.FieldID) (Field, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field.Clone(), true
		}
	}
	return Field{}, false
}

// CheckOrder verifies that field orders are exactly 0..n-1 and IDs are unique
func (f *Form) CheckOrder() error {
	seenIDs := make(map[types.FieldID]bool, len(f.Fields))
	seenOrders := make([]bool, len(f.Fields))

	for _, field := range f.Fields {
		if field.ID == "" {
			return goerr.Wrap(ErrInvalidOrder, "field without id", goerr.V(OrderKey, field.Order))
		}
		if seenIDs[field.ID] {
			return goerr.Wrap(ErrDuplicateFieldID, "duplicate field id", goerr.V(FieldIDKey, field.ID))
		}
		seenIDs[field.ID] = true

		if field.Order < 0 || field.Order >= len(f.Fields) || seenOrders[field.Order] {
			return goerr.Wrap(ErrInvalidOrder, "order is not contiguous",
				goerr.V(FieldIDKey, field.ID),
				goerr.V(OrderKey, field.Order))
		}
		seenOrders[field.Order] = true
	}
	return nil
}

// Renumber returns the fields sorted by their current Order with Order
// re-stamped to 0..n-1. The input is not modified.
func Renumber(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	slices.SortStableFunc(out, func(a, b Field) int {
		return a.Order - b.Order
	})
	for i := range out {
		out[i].Order = i
	}
	return out
}

// FormEnvelope is the REST wire shape for a form document
type FormEnvelope struct {
	ID   types.FormID `json:"id"`
	Data Form         `json:"data"`
}

// FormRecord is a stored form with ownership and timestamps
type FormRecord struct {
	Form      Form
	OwnerID   types.UserID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the record
func (r *FormRecord) Clone() *FormRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Form = *r.Form.Clone()
	return &out
}

// Envelope converts the record into its REST wire shape
func (r *FormRecord) Envelope() FormEnvelope {
	return FormEnvelope{ID: r.Form.ID, Data: *r.Form.Clone()}
}
