package interfaces

import "github.com/m-mizutani/goerr/v2"

// Errors shared by every Repository implementation so that callers do not
// depend on a particular backend
var (
	ErrNotFound      = goerr.New("not found")
	ErrAlreadyExists = goerr.New("already exists")
)
