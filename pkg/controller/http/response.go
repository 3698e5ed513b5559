package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/service/formgen"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/errutil"
	"github.com/secmon-lab/formflow/pkg/utils/safe"
)

type errorResponse struct {
	Error string `json:"error"`
}

type validationErrorResponse struct {
	Error  string                   `json:"error"`
	Fields map[types.FieldID]string `json:"fields"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(r *http.Request, v any) error {
	data, truncated, err := safe.ReadAll(r.Body, maxJSONBody)
	if err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "failed to read body")
	}
	if truncated {
		return goerr.Wrap(usecase.ErrInvalidInput, "request body too large")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "malformed JSON body: "+err.Error())
	}
	return nil
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrFormNotFound),
		errors.Is(err, usecase.ErrFieldNotFound),
		errors.Is(err, usecase.ErrResponseNotFound),
		errors.Is(err, usecase.ErrAssetNotFound):
		return http.StatusNotFound

	case errors.Is(err, usecase.ErrFormExists),
		errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, usecase.ErrAlreadySubmitted):
		return http.StatusConflict

	case errors.Is(err, usecase.ErrUnauthenticated),
		errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrLoginRequired):
		return http.StatusUnauthorized

	case errors.Is(err, usecase.ErrAccessDenied),
		errors.Is(err, usecase.ErrAuthDisabled):
		return http.StatusForbidden

	case errors.Is(err, usecase.ErrAssetTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrUnknownFieldType),
		errors.Is(err, usecase.ErrUnknownAction),
		errors.Is(err, formgen.ErrUnsupportedImage):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// handleError writes err with the matching status. Rejected submissions
// carry their per-field messages.
func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *usecase.ValidationError
	if errors.As(err, &verr) {
		writeJSON(ctx, w, http.StatusUnprocessableEntity, validationErrorResponse{
			Error:  verr.Error(),
			Fields: verr.FieldErrors(),
		})
		return
	}
	errutil.HandleHTTP(ctx, w, err, statusOf(err))
}
