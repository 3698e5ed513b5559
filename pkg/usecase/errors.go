package usecase

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrFormNotFound        = errors.New("form not found")
	ErrFieldNotFound       = errors.New("field not found")
	ErrResponseNotFound    = errors.New("response not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrFillSessionNotFound = errors.New("fill session not found")

	// Conflict errors
	ErrFormExists       = errors.New("form already exists")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrAlreadySubmitted = errors.New("a response was already submitted for this form")

	// Access control errors
	ErrUnauthenticated    = errors.New("authentication required")
	ErrAccessDenied       = errors.New("access denied to form")
	ErrLoginRequired      = errors.New("login is required to submit this form")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Input errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownFieldType = errors.New("unknown field type")
	ErrUnknownAction    = errors.New("unknown action")
	ErrAssetTooLarge    = errors.New("asset is too large")
	ErrAuthDisabled     = errors.New("account management is disabled in no-auth mode")
)

// Context keys for error values
const (
	FormIDKey    = "form_id"
	FieldIDKey   = "field_id"
	UserIDKey    = "user_id"
	FieldTypeKey = "field_type"
	ActionKey    = "action"
	EmailKey     = "email"
	SizeKey      = "size"
)

// ValidationError carries per-field messages of a rejected submission
type ValidationError struct {
	Fields model.ValidationErrors
}

func (e *ValidationError) Error() string {
	ids := slices.Sorted(maps.Keys(e.Fields))
	if len(ids) == 0 {
		return "response validation failed"
	}
	return fmt.Sprintf("response validation failed: %s: %s (and %d more)", ids[0], e.Fields[ids[0]], len(ids)-1)
}

func (e *ValidationError) Unwrap() error {
	return model.ErrValidationFailed
}

// FieldErrors returns the messages keyed by field ID
func (e *ValidationError) FieldErrors() map[types.FieldID]string {
	return maps.Clone(e.Fields)
}
