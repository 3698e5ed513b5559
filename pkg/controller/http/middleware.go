package http

import (
	"net/http"
	"strings"

	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/errutil"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
)

// tokenCookie carries the session token for browser requests such as the
// share link pages
const tokenCookie = "formflow_token"

// bearerToken returns the session token of r from the Authorization header,
// falling back to the token cookie
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// authMiddleware puts the caller's session into the request context. With
// required set, requests without a valid session are rejected with 401;
// otherwise they continue anonymously.
func authMiddleware(authUC AuthUseCase, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// For NoAuthn mode, always use anonymous user
			if authUC.IsNoAuthn() {
				ctx = auth.ContextWithSession(ctx, auth.NewAnonymousSession())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := bearerToken(r)
			if token == "" {
				if required {
					errutil.HandleHTTP(ctx, w, usecase.ErrUnauthenticated, http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			session, err := authUC.ValidateToken(ctx, token)
			if err != nil {
				if required {
					errutil.HandleHTTP(ctx, w, err, http.StatusUnauthorized)
					return
				}
				logging.From(ctx).Debug("ignoring invalid token on public route", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx = auth.ContextWithSession(ctx, session)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", session.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
