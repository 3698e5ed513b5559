package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

type userRepository struct {
	mu      sync.RWMutex
	users   map[types.UserID]*auth.User
	byEmail map[string]types.UserID
}

func newUserRepository() *userRepository {
	return &userRepository{
		users:   make(map[types.UserID]*auth.User),
		byEmail: make(map[string]types.UserID),
	}
}

func copyUser(u *auth.User) *auth.User {
	out := *u
	out.PasswordHash = slices.Clone(u.PasswordHash)
	return &out
}

func (r *userRepository) Create(ctx context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", user.Email))
	}
	if _, exists := r.users[user.ID]; exists {
		return goerr.Wrap(ErrAlreadyExists, "user already exists", goerr.V("id", user.ID))
	}

	r.users[user.ID] = copyUser(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *userRepository) Get(ctx context.Context, id types.UserID) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}
	return copyUser(user), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[email]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
	}
	return copyUser(r.users[id]), nil
}
