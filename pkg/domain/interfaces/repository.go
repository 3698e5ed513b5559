package interfaces

import (
	"context"

	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
)

// Repository defines the interface for data persistence
type Repository interface {
	Form() FormRepository
	Response() ResponseRepository
	User() UserRepository

	// Session methods
	PutSession(ctx context.Context, session *auth.Session) error
	GetSession(ctx context.Context, id auth.SessionID) (*auth.Session, error)
	DeleteSession(ctx context.Context, id auth.SessionID) error

	Close() error
}
