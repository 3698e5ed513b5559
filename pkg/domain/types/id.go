package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// FormID identifies a form. Assigned at creation and immutable afterwards.
type FormID string

// FieldID identifies a field within a form. Never reused.
type FieldID string

// ResponseID identifies a single submission
type ResponseID string

// UserID identifies a registered builder user
type UserID string

var ErrEmptyID = goerr.New("id is empty")

func NewFormID() FormID {
	return FormID(uuid.NewString())
}

func NewFieldID() FieldID {
	return FieldID("field_" + uuid.NewString())
}

func NewResponseID() ResponseID {
	return ResponseID(uuid.NewString())
}

func NewUserID() UserID {
	return UserID(uuid.NewString())
}

func (x FormID) String() string     { return string(x) }
func (x FieldID) String() string    { return string(x) }
func (x ResponseID) String() string { return string(x) }
func (x UserID) String() string     { return string(x) }

// Validate checks the form ID is usable as a storage key
func (x FormID) Validate() error {
	if x == "" {
		return goerr.Wrap(ErrEmptyID, "form id")
	}
	if len(x) > 128 {
		return goerr.New("form id too long", goerr.V("length", len(x)))
	}
	for _, r := range x {
		if r == '/' {
			return goerr.New("form id must not contain '/'", goerr.V("id", string(x)))
		}
	}
	return nil
}
