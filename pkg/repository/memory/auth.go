package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
)

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[auth.SessionID]*auth.Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[auth.SessionID]*auth.Session),
	}
}

func (r *Repository) PutSession(ctx context.Context, session *auth.Session) error {
	if session.ID == "" {
		return goerr.New("session ID is empty")
	}

	r.sessions.mu.Lock()
	defer r.sessions.mu.Unlock()

	s := *session
	r.sessions.sessions[session.ID] = &s
	return nil
}

func (r *Repository) GetSession(ctx context.Context, id auth.SessionID) (*auth.Session, error) {
	r.sessions.mu.RLock()
	defer r.sessions.mu.RUnlock()

	session, ok := r.sessions.sessions[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("session_id", id))
	}

	s := *session
	return &s, nil
}

func (r *Repository) DeleteSession(ctx context.Context, id auth.SessionID) error {
	r.sessions.mu.Lock()
	defer r.sessions.mu.Unlock()

	if _, ok := r.sessions.sessions[id]; !ok {
		return goerr.Wrap(ErrNotFound, "session not found", goerr.V("session_id", id))
	}

	delete(r.sessions.sessions, id)
	return nil
}
