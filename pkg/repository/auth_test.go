package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

func newTestUser() *auth.User {
	id := types.NewUserID()
	return &auth.User{
		ID:           id,
		Email:        id.String() + "@example.com",
		Name:         "Test User",
		PasswordHash: []byte("hash"),
		CreatedAt:    time.Now().UTC(),
	}
}

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("Create and lookup", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		user := newTestUser()

		gt.NoError(t, repo.User().Create(ctx, user)).Required()

		byID, err := repo.User().Get(ctx, user.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, byID.Email).Equal(user.Email)
		gt.Value(t, byID.PasswordHash).Equal(user.PasswordHash)

		byEmail, err := repo.User().GetByEmail(ctx, user.Email)
		gt.NoError(t, err).Required()
		gt.Value(t, byEmail.ID).Equal(user.ID)
	})

	t.Run("email is unique", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		user := newTestUser()
		gt.NoError(t, repo.User().Create(ctx, user)).Required()

		dup := newTestUser()
		dup.Email = user.Email
		err := repo.User().Create(ctx, dup)
		gt.Bool(t, isAlreadyExists(err)).True()
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.User().Get(ctx, types.NewUserID())
		gt.Bool(t, isNotFound(err)).True()
		_, err = repo.User().GetByEmail(ctx, "nobody-"+types.NewUserID().String()+"@example.com")
		gt.Bool(t, isNotFound(err)).True()
	})
}

func runSessionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("PutSession and GetSession", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session := &auth.Session{
			ID:        auth.NewSessionID(),
			UserID:    types.NewUserID(),
			Email:     "test@example.com",
			Name:      "Test User",
			ExpiresAt: time.Now().Add(time.Hour),
			CreatedAt: time.Now(),
		}
		gt.NoError(t, repo.PutSession(ctx, session)).Required()

		got, err := repo.GetSession(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.UserID).Equal(session.UserID)
		gt.Value(t, got.Email).Equal(session.Email)

		// Firestore keeps microsecond precision
		diff := got.ExpiresAt.Sub(session.ExpiresAt)
		gt.Bool(t, diff < time.Second && diff > -time.Second).True()
	})

	t.Run("DeleteSession", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session := &auth.Session{
			ID:        auth.NewSessionID(),
			UserID:    types.NewUserID(),
			ExpiresAt: time.Now().Add(time.Hour),
			CreatedAt: time.Now(),
		}
		gt.NoError(t, repo.PutSession(ctx, session)).Required()
		gt.NoError(t, repo.DeleteSession(ctx, session.ID)).Required()

		_, err := repo.GetSession(ctx, session.ID)
		gt.Bool(t, isNotFound(err)).True()
		gt.Bool(t, isNotFound(repo.DeleteSession(ctx, session.ID))).True()
	})

	t.Run("PutSession rejects empty ID", func(t *testing.T) {
		repo := newRepo(t)
		gt.Value(t, repo.PutSession(context.Background(), &auth.Session{})).NotNil()
	})
}
