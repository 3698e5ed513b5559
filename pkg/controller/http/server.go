package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
)

const (
	// maxJSONBody bounds JSON request bodies, form documents included
	maxJSONBody = 2 << 20
	// maxUploadBody bounds multipart uploads of images
	maxUploadBody = 12 << 20
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

type Options func(*Server)

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	requireAuth := authMiddleware(uc.Auth, true)
	optionalAuth := authMiddleware(uc.Auth, false)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authRegisterHandler(uc.Auth))
		r.Post("/login", authLoginHandler(uc.Auth))
		r.Post("/logout", authLogoutHandler(uc.Auth))
		r.With(requireAuth).Get("/me", authMeHandler())
	})

	r.Route("/api", func(r chi.Router) {
		// public reads and submissions
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/forms/{id}", getFormHandler(uc.Form))
			r.Post("/forms/{id}/responses", submitResponseHandler(uc.Response))
			r.Get("/field-types", fieldTypesHandler())
			r.Get("/field-types/{type}/editor", fieldEditorHandler())
			r.Get("/assets/{name}", getAssetHandler(uc.Asset))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/forms", listFormsHandler(uc.Form))
			r.Post("/forms", createFormHandler(uc.Form))
			r.Put("/forms/{id}", updateFormHandler(uc.Form))
			r.Delete("/forms/{id}", deleteFormHandler(uc.Form))
			r.Post("/forms/import", importFormHandler(uc.Form))
			r.Get("/forms/{id}/export", exportFormHandler(uc.Form))

			r.Get("/forms/{id}/responses", listResponsesHandler(uc.Response))
			r.Get("/forms/{id}/responses/export", exportResponsesHandler(uc.Response))
			r.Get("/forms/{id}/responses/{responseId}", getResponseHandler(uc.Response))

			r.Post("/generate-form", generateFormHandler(uc.Generate))
			r.Post("/generate-form-from-image", generateFormFromImageHandler(uc.Generate))

			r.Post("/assets", uploadAssetHandler(uc.Asset))

			r.Route("/builder/{id}", builderRoutes(uc.Builder))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/f/{id}", fillPageHandler(uc.Fill))
		r.Post("/f/{id}", fillActionHandler(uc.Fill))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
