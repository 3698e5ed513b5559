package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/errutil"
)

// fillCookie addresses the respondent's server side flow. It is scoped to
// the share link path so that each form keeps its own flow.
const fillCookie = "formflow_fill"

func fillCookiePath(r *http.Request) string {
	return "/f/" + url.PathEscape(string(formID(r)))
}

func fillSessionID(r *http.Request) string {
	if c, err := r.Cookie(fillCookie); err == nil {
		return c.Value
	}
	return ""
}

func writeFillResult(w http.ResponseWriter, r *http.Request, res *usecase.FillResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     fillCookie,
		Value:    res.SessionID,
		Path:     fillCookiePath(r),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Cache-Control", "no-store")
	writeHTML(w, r, http.StatusOK, res.HTML)
}

// handleFillError renders failures of share link pages as HTML
func handleFillError(w http.ResponseWriter, r *http.Request, uc *usecase.FillUseCase, err error) {
	status := statusOf(err)
	title, message := "Something went wrong", "Please try again later."
	switch {
	case errors.Is(err, usecase.ErrFormNotFound):
		title, message = "Form not found", "This form does not exist or has been removed."
	case errors.Is(err, usecase.ErrLoginRequired):
		title, message = "Login required", "Please log in to fill out this form."
	case errors.Is(err, usecase.ErrUnknownAction), errors.Is(err, usecase.ErrInvalidInput):
		title, message = "Invalid request", "The form could not process this request."
	}

	if status >= http.StatusInternalServerError {
		errutil.Handle(r.Context(), err, "failed to serve form page")
	}

	html, renderErr := uc.MessagePage(title, message)
	if renderErr != nil {
		errutil.HandleHTTP(r.Context(), w, renderErr, http.StatusInternalServerError)
		return
	}
	writeHTML(w, r, status, html)
}

func fillPageHandler(uc *usecase.FillUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := uc.Page(r.Context(), formID(r), fillSessionID(r))
		if err != nil {
			handleFillError(w, r, uc, err)
			return
		}
		writeFillResult(w, r, res)
	}
}

func fillActionHandler(uc *usecase.FillUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			handleFillError(w, r, uc, usecase.ErrInvalidInput)
			return
		}

		action := usecase.FillAction(r.PostForm.Get("action"))
		res, err := uc.Act(r.Context(), formID(r), fillSessionID(r), action, r.PostForm)
		if err != nil {
			handleFillError(w, r, uc, err)
			return
		}
		writeFillResult(w, r, res)
	}
}
