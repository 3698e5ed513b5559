package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/errutil"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userMe    `json:"user"`
}

type userMe struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newUserMe(s *auth.Session) userMe {
	return userMe{ID: string(s.UserID), Email: s.Email, Name: s.Name}
}

func setTokenCookie(w http.ResponseWriter, r *http.Request, s *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.ExpiresAt,
	})
}

func clearTokenCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func writeSession(w http.ResponseWriter, r *http.Request, status int, s *auth.Session) {
	if s.Token != "" {
		setTokenCookie(w, r, s)
	}
	writeJSON(r.Context(), w, status, sessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      newUserMe(s),
	})
}

// authRegisterHandler creates an account and logs it in
func authRegisterHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		session, err := authUC.Register(r.Context(), req.Email, req.Name, req.Password)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeSession(w, r, http.StatusCreated, session)
	}
}

// authLoginHandler returns a session token and sets it as a cookie
func authLoginHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		session, err := authUC.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeSession(w, r, http.StatusOK, session)
	}
}

// authLogoutHandler revokes the session and clears the cookie
func authLogoutHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" && !authUC.IsNoAuthn() {
			// an unparsable token has nothing to revoke
			if err := authUC.Logout(r.Context(), token); err != nil && !errors.Is(err, usecase.ErrUnauthenticated) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
				return
			}
		}

		clearTokenCookie(w, r)
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// authMeHandler returns current user information
func authMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			handleError(r.Context(), w, usecase.ErrUnauthenticated)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newUserMe(session))
	}
}
