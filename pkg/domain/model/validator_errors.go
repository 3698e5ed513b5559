package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidOrder      = goerr.New("field order is not contiguous")
	ErrDuplicateFieldID  = goerr.New("duplicate field ID")
	ErrUnknownField      = goerr.New("unknown field in response data")
	ErrInvalidFieldValue = goerr.New("invalid field value")
	ErrValidationFailed  = goerr.New("response validation failed")

	ErrImportMalformed      = goerr.New("form JSON is malformed")
	ErrImportMissingID      = goerr.New("form JSON must have a non-empty string \"id\"")
	ErrImportFieldsNotArray = goerr.New("form JSON must have a \"fields\" array")
)

// Context keys for error values
const (
	FieldIDKey     = "field_id"
	FieldTypeKey   = "field_type"
	OrderKey       = "order"
	FormIDKey      = "form_id"
	FieldValueKey  = "field_value"
	FieldErrorsKey = "field_errors"
)

// User facing validation messages
const (
	MsgRequired      = "This field is required"
	MsgInvalidEmail  = "Please enter a valid email address"
	MsgInvalidNumber = "Please enter a valid number"
	MsgInvalidOption = "Please select a valid option"
	MsgInvalidDate   = "Please enter a valid date"
	MsgInvalidValue  = "Invalid value"
	MsgPattern       = "Value does not match the required format"
)
