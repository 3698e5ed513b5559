package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
)

// NoAuthnUseCase treats every caller as the anonymous user (for
// development/testing)
type NoAuthnUseCase struct{}

func NewNoAuthnUseCase() *NoAuthnUseCase {
	return &NoAuthnUseCase{}
}

// Register is not available in no-auth mode
func (uc *NoAuthnUseCase) Register(ctx context.Context, email, name, password string) (*auth.Session, error) {
	return nil, goerr.Wrap(ErrAuthDisabled, "cannot register")
}

// Login returns the anonymous session regardless of credentials
func (uc *NoAuthnUseCase) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	return auth.NewAnonymousSession(), nil
}

// ValidateToken always returns the anonymous session
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, token string) (*auth.Session, error) {
	return auth.NewAnonymousSession(), nil
}

// Logout does nothing in no-auth mode
func (uc *NoAuthnUseCase) Logout(ctx context.Context, token string) error {
	return nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
