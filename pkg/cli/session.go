package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/urfave/cli/v3"
)

func ownerFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "owner-email",
		Usage:       "Act as the registered user with this email (anonymous user when empty)",
		Sources:     cli.EnvVars("FORMFLOW_OWNER_EMAIL"),
		Destination: dst,
	}
}

// withOwner embeds a session for the command into ctx. Forms created in
// no-auth mode belong to the anonymous user.
func withOwner(ctx context.Context, repo interfaces.Repository, email string) (context.Context, error) {
	if email == "" {
		return auth.ContextWithSession(ctx, auth.NewAnonymousSession()), nil
	}

	normalized, err := auth.NormalizeEmail(email)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid owner email", goerr.V("email", email))
	}
	user, err := repo.User().GetByEmail(ctx, normalized)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up owner", goerr.V("email", normalized))
	}

	now := time.Now()
	return auth.ContextWithSession(ctx, &auth.Session{
		ID:        auth.NewSessionID(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}), nil
}
