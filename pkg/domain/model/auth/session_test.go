package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
)

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	gt.Value(t, auth.SessionFromContext(ctx)).Nil()

	s := auth.NewAnonymousSession()
	ctx = auth.ContextWithSession(ctx, s)
	gt.Value(t, auth.SessionFromContext(ctx)).Equal(s)
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Now()
	s := &auth.Session{ExpiresAt: now.Add(time.Minute)}
	gt.Bool(t, s.IsExpired(now)).False()
	gt.Bool(t, s.IsExpired(now.Add(time.Minute))).True()
}

func TestNormalizeEmail(t *testing.T) {
	email, err := auth.NormalizeEmail("  Alice@Example.COM ")
	gt.NoError(t, err).Required()
	gt.Value(t, email).Equal("alice@example.com")

	_, err = auth.NormalizeEmail("not-an-email")
	gt.Error(t, err).Is(auth.ErrInvalidEmail)
}

func TestValidatePassword(t *testing.T) {
	gt.Error(t, auth.ValidatePassword("short")).Is(auth.ErrWeakPassword)
	gt.NoError(t, auth.ValidatePassword("long-enough"))
}
