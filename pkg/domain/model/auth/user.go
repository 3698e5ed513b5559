package auth

import (
	"net/mail"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

var (
	ErrInvalidEmail    = goerr.New("invalid email address")
	ErrWeakPassword    = goerr.New("password must be at least 8 characters")
	ErrInvalidToken    = goerr.New("invalid session token")
	ErrSessionNotFound = goerr.New("session not found")
)

const MinPasswordLength = 8

// User is a registered form builder account
type User struct {
	ID           types.UserID
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// NormalizeEmail lower-cases and validates an email address
func NormalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", goerr.Wrap(ErrInvalidEmail, err.Error(), goerr.V("email", email))
	}
	return strings.ToLower(addr.Address), nil
}

// ValidatePassword enforces the minimum password policy
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
