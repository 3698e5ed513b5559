package editor

import "github.com/m-mizutani/goerr/v2"

var (
	ErrUnknownControl = goerr.New("unknown control for field type")
	ErrInvalidValue   = goerr.New("invalid control value")
	ErrTypeMismatch   = goerr.New("editor does not match field type")
	ErrNoOptions      = goerr.New("field type has no options")
	ErrOptionIndex    = goerr.New("option index out of range")
	ErrLastOption     = goerr.New("cannot remove the last option")
)

const (
	ControlKey   = "control"
	FieldTypeKey = "field_type"
	FieldIDKey   = "field_id"
	IndexKey     = "index"
	ValueKey     = "value"
)
