package interfaces

import (
	"context"

	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// UserRepository stores builder accounts
type UserRepository interface {
	// Create fails with an ErrAlreadyExists-wrapped error when the email is taken.
	Create(ctx context.Context, user *auth.User) error
	Get(ctx context.Context, id types.UserID) (*auth.User, error)
	GetByEmail(ctx context.Context, email string) (*auth.User, error)
}
