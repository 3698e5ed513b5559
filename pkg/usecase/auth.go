package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
	"golang.org/x/crypto/bcrypt"
)

// AuthUseCaseInterface is implemented by the password based AuthUseCase and
// by NoAuthnUseCase, which treats every caller as the anonymous user
type AuthUseCaseInterface interface {
	IsNoAuthn() bool
	Register(ctx context.Context, email, name, password string) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	ValidateToken(ctx context.Context, token string) (*auth.Session, error)
	Logout(ctx context.Context, token string) error
}

const (
	DefaultSessionTTL = 7 * 24 * time.Hour

	claimEmail = "email"
	claimName  = "name"
)

// AuthUseCase issues HS256 signed session tokens for builder accounts. The
// token id is stored in the repository so that logout revokes it.
type AuthUseCase struct {
	repo   interfaces.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	cost   int
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithSessionTTL sets the lifetime of issued sessions
func WithSessionTTL(ttl time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.ttl = ttl
	}
}

// WithClock replaces the time source, for tests
func WithClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.now = now
	}
}

// WithHashCost sets the bcrypt cost
func WithHashCost(cost int) AuthOption {
	return func(uc *AuthUseCase) {
		uc.cost = cost
	}
}

func NewAuthUseCase(repo interfaces.Repository, secret []byte, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		repo:   repo,
		secret: secret,
		ttl:    DefaultSessionTTL,
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

// IsNoAuthn returns false for AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// Register creates an account and logs it in
func (uc *AuthUseCase) Register(ctx context.Context, email, name, password string) (*auth.Session, error) {
	normalized, err := auth.NormalizeEmail(email)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(EmailKey, email))
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash password")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = normalized
	}

	user := &auth.User{
		ID:           types.NewUserID(),
		Email:        normalized,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    uc.now(),
	}
	if err := uc.repo.User().Create(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrEmailTaken, "failed to register", goerr.V(EmailKey, normalized))
		}
		return nil, goerr.Wrap(err, "failed to create user", goerr.V(EmailKey, normalized))
	}

	logging.From(ctx).Info("user registered", "user_id", user.ID)
	return uc.issue(ctx, user)
}

// Login verifies the password and issues a new session
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	normalized, err := auth.NormalizeEmail(email)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidCredentials, "invalid email")
	}

	user, err := uc.repo.User().GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrInvalidCredentials, "unknown user")
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(EmailKey, normalized))
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, goerr.Wrap(ErrInvalidCredentials, "password mismatch", goerr.V(UserIDKey, user.ID))
	}

	return uc.issue(ctx, user)
}

func (uc *AuthUseCase) issue(ctx context.Context, user *auth.User) (*auth.Session, error) {
	now := uc.now()
	session := &auth.Session{
		ID:        auth.NewSessionID(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}

	tok, err := jwt.NewBuilder().
		JwtID(session.ID.String()).
		Subject(string(user.ID)).
		IssuedAt(now).
		Expiration(session.ExpiresAt).
		Claim(claimEmail, user.Email).
		Claim(claimName, user.Name).
		Build()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build token")
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign token")
	}
	session.Token = string(signed)

	if err := uc.repo.PutSession(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to store session", goerr.V(UserIDKey, user.ID))
	}

	return session, nil
}

func (uc *AuthUseCase) parse(token string, validate bool) (jwt.Token, error) {
	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(validate),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthenticated, err.Error())
	}
	if tok.JwtID() == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "token has no id")
	}
	return tok, nil
}

// ValidateToken checks the signature and expiry of token and that its
// session has not been revoked
func (uc *AuthUseCase) ValidateToken(ctx context.Context, token string) (*auth.Session, error) {
	tok, err := uc.parse(token, true)
	if err != nil {
		return nil, err
	}

	id := auth.SessionID(tok.JwtID())
	session, err := uc.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrUnauthenticated, "session revoked", goerr.V("session_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("session_id", id))
	}
	if session.IsExpired(uc.now()) || string(session.UserID) != tok.Subject() {
		return nil, goerr.Wrap(ErrUnauthenticated, "session expired", goerr.V("session_id", id))
	}

	session.Token = token
	return session, nil
}

// Logout revokes the session of token. Expired tokens are accepted.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	tok, err := uc.parse(token, false)
	if err != nil {
		return err
	}

	if err := uc.repo.DeleteSession(ctx, auth.SessionID(tok.JwtID())); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil
		}
		return goerr.Wrap(err, "failed to delete session")
	}
	return nil
}
