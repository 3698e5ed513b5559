package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// SessionID is the "jti" of a signed session token
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func (x SessionID) String() string {
	return string(x)
}

// Session is the explicit auth object passed to every collaborator that
// needs the caller's identity. It is acquired at login and invalidated at
// logout or expiry.
type Session struct {
	ID        SessionID
	UserID    types.UserID
	Email     string
	Name      string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Anonymous user used when authentication is disabled
const (
	AnonymousUserID types.UserID = "anonymous"
	AnonymousEmail               = "anonymous@localhost"
	AnonymousName                = "Anonymous"
)

// NewAnonymousSession returns the session used in no-auth mode
func NewAnonymousSession() *Session {
	return &Session{
		ID:        "anonymous",
		UserID:    AnonymousUserID,
		Email:     AnonymousEmail,
		Name:      AnonymousName,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}
}

// IsExpired reports whether the session expired at now
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type ctxSessionKey struct{}

// ContextWithSession embeds the session into ctx
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey{}, s)
}

// SessionFromContext returns the session of the caller, or nil
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxSessionKey{}).(*Session)
	return s
}
