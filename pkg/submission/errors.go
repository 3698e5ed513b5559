package submission

import "github.com/m-mizutani/goerr/v2"

var (
	ErrValidation        = goerr.New("current page has validation errors")
	ErrNotLastPage       = goerr.New("submit is only possible on the last page")
	ErrLastPage          = goerr.New("already on the last page")
	ErrFirstPage         = goerr.New("already on the first page")
	ErrNotFilling        = goerr.New("form is not being filled")
	ErrSubmitFailed      = goerr.New("submission failed")
	ErrRestartNotAllowed = goerr.New("restart is not allowed")
	ErrUnknownField      = goerr.New("field is not an input of this form")
)

const (
	FormIDKey  = "form_id"
	FieldIDKey = "field_id"
	PageKey    = "page"
	StateKey   = "state"
)
