package usecase

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/pager"
	"github.com/secmon-lab/formflow/pkg/render"
	"github.com/secmon-lab/formflow/pkg/submission"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
)

// FillAction is a button pressed on a share link page
type FillAction string

const (
	FillNext    FillAction = "next"
	FillPrev    FillAction = "prev"
	FillSubmit  FillAction = "submit"
	FillRestart FillAction = "restart"
)

// FillResult is a rendered share link page together with the session that
// produced it
type FillResult struct {
	SessionID string
	HTML      string
	State     submission.State
}

type fillSession struct {
	formID    types.FormID
	flow      *submission.Flow
	expiresAt time.Time
}

// FillUseCase runs the multi page submission flow of share links on the
// server. Each respondent holds one flow, addressed by a cookie.
type FillUseCase struct {
	forms     *FormUseCase
	responses *ResponseUseCase
	renderer  *render.Renderer
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*fillSession
}

func NewFillUseCase(forms *FormUseCase, responses *ResponseUseCase, renderer *render.Renderer, ttl time.Duration) *FillUseCase {
	return &FillUseCase{
		forms:     forms,
		responses: responses,
		renderer:  renderer,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[string]*fillSession),
	}
}

// ActionURL is the address fill pages post to
func ActionURL(formID types.FormID) string {
	return "/f/" + url.PathEscape(formID.String())
}

// session returns the respondent's flow for the form, starting a new one
// when the id is unknown, expired or belongs to another form
func (uc *FillUseCase) session(ctx context.Context, formID types.FormID, sessionID string) (string, *fillSession, error) {
	now := uc.now()

	uc.mu.Lock()
	uc.purgeLocked(now)
	s, ok := uc.sessions[sessionID]
	if ok && s.formID == formID {
		s.expiresAt = now.Add(uc.ttl)
		uc.mu.Unlock()
		return sessionID, s, nil
	}
	uc.mu.Unlock()

	rec, err := uc.forms.Get(ctx, formID)
	if err != nil {
		return "", nil, err
	}
	if rec.Form.Settings.RequiresLogin && auth.SessionFromContext(ctx) == nil {
		return "", nil, goerr.Wrap(ErrLoginRequired, "open form", goerr.V(FormIDKey, formID))
	}

	s = &fillSession{
		formID:    formID,
		flow:      submission.New(&rec.Form),
		expiresAt: now.Add(uc.ttl),
	}
	id := uuid.NewString()

	uc.mu.Lock()
	uc.sessions[id] = s
	uc.mu.Unlock()

	logging.From(ctx).Debug("fill session started", "form_id", formID)
	return id, s, nil
}

func (uc *FillUseCase) purgeLocked(now time.Time) int {
	n := 0
	for id, s := range uc.sessions {
		if now.After(s.expiresAt) {
			delete(uc.sessions, id)
			n++
		}
	}
	return n
}

// PurgeExpired drops flows whose respondents went away and returns how many
// were removed
func (uc *FillUseCase) PurgeExpired(ctx context.Context) int {
	uc.mu.Lock()
	n := uc.purgeLocked(uc.now())
	uc.mu.Unlock()

	if n > 0 {
		logging.From(ctx).Debug("expired fill sessions removed", "count", n)
	}
	return n
}

// ActiveSessions returns the number of flows held in memory
func (uc *FillUseCase) ActiveSessions() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.sessions)
}

// Page renders the current step of the respondent's flow
func (uc *FillUseCase) Page(ctx context.Context, formID types.FormID, sessionID string) (*FillResult, error) {
	id, s, err := uc.session(ctx, formID, sessionID)
	if err != nil {
		return nil, err
	}
	return uc.result(id, s)
}

// Act records the posted values of the current page and performs action
func (uc *FillUseCase) Act(ctx context.Context, formID types.FormID, sessionID string, action FillAction, values url.Values) (*FillResult, error) {
	id, s, err := uc.session(ctx, formID, sessionID)
	if err != nil {
		return nil, err
	}
	flow := s.flow

	if flow.State() == submission.StateFilling && action != FillRestart {
		for _, f := range flow.CurrentPage().Fields {
			if !f.IsContent() {
				continue
			}
			v, err := render.DecodeValues(f, values)
			if err != nil {
				// keep the raw text so that validation reports it
				v = values.Get(f.ID.String())
			}
			if err := flow.SetValue(f.ID, v); err != nil {
				return nil, err
			}
		}
	}

	switch action {
	case FillNext:
		err = flow.Next()
	case FillPrev:
		err = flow.Prev()
	case FillSubmit:
		err = flow.Submit(ctx, submission.SubmitterFunc(func(ctx context.Context, data map[types.FieldID]any) error {
			_, err := uc.responses.Submit(ctx, formID, data)
			return err
		}))
	case FillRestart:
		err = flow.Restart()
	default:
		return nil, goerr.Wrap(ErrUnknownAction, "fill form",
			goerr.V(FormIDKey, formID),
			goerr.V(ActionKey, action))
	}

	if err != nil && !isFlowFeedback(err) {
		return nil, err
	}
	if err != nil {
		logging.From(ctx).Debug("fill action not completed", "form_id", formID, "action", action, "error", err)
	}

	return uc.result(id, s)
}

// isFlowFeedback reports errors that are shown on the page rather than
// failing the request
func isFlowFeedback(err error) bool {
	for _, target := range []error{
		submission.ErrValidation,
		submission.ErrSubmitFailed,
		submission.ErrFirstPage,
		submission.ErrLastPage,
		submission.ErrNotLastPage,
		submission.ErrNotFilling,
		submission.ErrRestartNotAllowed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (uc *FillUseCase) result(id string, s *fillSession) (*FillResult, error) {
	html, err := uc.render(s.flow)
	if err != nil {
		return nil, err
	}
	return &FillResult{SessionID: id, HTML: html, State: s.flow.State()}, nil
}

func (uc *FillUseCase) render(flow *submission.Flow) (string, error) {
	form := flow.Form()
	index := flow.Page()
	count := len(flow.Pages())

	page := render.FillPage{
		FormID:      form.ID.String(),
		Title:       form.Title,
		Description: form.Description,
		ActionURL:   ActionURL(form.ID),
		PageIndex:   index,
		PageCount:   count,
	}

	state := flow.State()
	if state == submission.StateSubmitted {
		page.Submitted = true
		page.ConfirmationMessage = flow.ConfirmationMessage()
		page.CanRestart = flow.CanRestart()
		return uc.renderer.RenderFillPage(page)
	}
	page.Submitting = state == submission.StateSubmitting

	errs := flow.Errors()
	current := flow.CurrentPage()
	for _, f := range current.Fields {
		value := flow.Value(f.ID)
		var (
			pr  render.Presentation
			err error
		)
		if msg, ok := errs[f.ID]; ok {
			pr, err = uc.renderer.RenderWithError(f, value, msg)
		} else {
			pr, err = uc.renderer.Render(f, render.Filling, value)
		}
		if err != nil {
			return "", err
		}
		page.Fields = append(page.Fields, pr)
	}

	page.Nav = navigation(form, current, index, count)
	if err := flow.LastError(); err != nil {
		page.Error = submitErrorMessage(err)
	}

	return uc.renderer.RenderFillPage(page)
}

// navigation takes button labels from the page breaks around the page and
// from a submit field on the last page
func navigation(form *model.Form, current pager.Page, index, count int) render.Navigation {
	nav := render.Navigation{
		ShowPrev:   index > 0,
		PrevText:   model.DefaultPrevButtonText,
		ShowNext:   index < count-1,
		NextText:   model.DefaultNextButtonText,
		ShowSubmit: index == count-1,
		SubmitText: model.DefaultSubmitText,
	}

	if nav.ShowPrev {
		if f, ok := pager.Boundary(form.Fields, index-1); ok {
			if k, ok := f.Kind().(model.PageBreakKind); ok {
				nav.PrevText = k.PrevButtonText
			}
		}
	}
	if nav.ShowNext {
		if f, ok := pager.Boundary(form.Fields, index); ok {
			if k, ok := f.Kind().(model.PageBreakKind); ok {
				nav.NextText = k.NextButtonText
			}
		}
	}
	for _, f := range current.Fields {
		if k, ok := f.Kind().(model.SubmitKind); ok {
			nav.SubmitText = k.Text
			break
		}
	}
	return nav
}

func submitErrorMessage(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return "Some answers were rejected. Please review the form and try again."
	case errors.Is(err, ErrAlreadySubmitted):
		return "You have already submitted this form."
	case errors.Is(err, ErrLoginRequired):
		return "Please log in to submit this form."
	case errors.Is(err, ErrFormNotFound):
		return "This form is no longer available."
	default:
		return "Failed to submit the form. Please try again."
	}
}

// MessagePage renders a standalone notice, used when a share link cannot be
// opened
func (uc *FillUseCase) MessagePage(title, message string) (string, error) {
	return uc.renderer.RenderMessagePage(title, message)
}
