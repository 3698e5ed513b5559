package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const minSecretLength = 32

// Auth holds the session token settings
type Auth struct {
	secret     string
	sessionTTL time.Duration
	noAuth     bool
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HMAC secret for session tokens (at least 32 bytes)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("FORMFLOW_JWT_SECRET"),
			Destination: &x.secret,
		},
		&cli.DurationFlag{
			Name:        "session-ttl",
			Usage:       "Lifetime of a login session",
			Value:       usecase.DefaultSessionTTL,
			Category:    "Authentication",
			Sources:     cli.EnvVars("FORMFLOW_SESSION_TTL"),
			Destination: &x.sessionTTL,
		},
		&cli.BoolFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and act as an anonymous user (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("FORMFLOW_NO_AUTH"),
			Destination: &x.noAuth,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("secret.len", len(x.secret)),
		slog.Duration("session_ttl", x.sessionTTL),
		slog.Bool("no_auth", x.noAuth),
	)
}

func (x *Auth) IsNoAuthMode() bool {
	return x.noAuth
}

// Configure returns the anonymous use case in no-auth mode and the token
// based one otherwise
func (x *Auth) Configure(repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if x.noAuth {
		return usecase.NewNoAuthnUseCase(), nil
	}
	if x.secret == "" {
		return nil, goerr.Wrap(ErrMissingSecret, "configure auth")
	}
	if len(x.secret) < minSecretLength {
		return nil, goerr.Wrap(ErrWeakSecret, "configure auth", goerr.V("length", len(x.secret)))
	}

	var opts []usecase.AuthOption
	if x.sessionTTL > 0 {
		opts = append(opts, usecase.WithSessionTTL(x.sessionTTL))
	}
	return usecase.NewAuthUseCase(repo, []byte(x.secret), opts...), nil
}
