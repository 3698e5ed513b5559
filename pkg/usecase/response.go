package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
)

// ExportFormat selects the serialisation of a response export
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

type ResponseUseCase struct {
	repo  interfaces.Repository
	forms *FormUseCase
}

func NewResponseUseCase(repo interfaces.Repository, forms *FormUseCase) *ResponseUseCase {
	return &ResponseUseCase{repo: repo, forms: forms}
}

// respondent returns the logged in user behind ctx. The anonymous no-auth
// user does not count as a respondent.
func respondent(ctx context.Context) (types.UserID, bool) {
	s := auth.SessionFromContext(ctx)
	if s == nil || s.UserID == auth.AnonymousUserID {
		return "", false
	}
	return s.UserID, true
}

// Submit validates and stores one submission. Submitting is public unless
// the form requires login.
func (uc *ResponseUseCase) Submit(ctx context.Context, formID types.FormID, data map[types.FieldID]any) (*model.FormResponse, error) {
	rec, err := uc.forms.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	settings := rec.Form.Settings

	userID, loggedIn := respondent(ctx)
	if settings.RequiresLogin && auth.SessionFromContext(ctx) == nil {
		return nil, goerr.Wrap(ErrLoginRequired, "submit response", goerr.V(FormIDKey, formID))
	}

	if !settings.AllowMultipleSubmissions && loggedIn {
		exists, err := uc.repo.Response().ExistsByRespondent(ctx, formID, userID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to check previous submission", goerr.V(FormIDKey, formID))
		}
		if exists {
			return nil, goerr.Wrap(ErrAlreadySubmitted, "submit response",
				goerr.V(FormIDKey, formID),
				goerr.V(UserIDKey, userID))
		}
	}

	if data == nil {
		data = map[types.FieldID]any{}
	}
	fieldErrs, err := model.ValidateResponse(&rec.Form, data)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(FormIDKey, formID))
	}
	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	once := !settings.AllowMultipleSubmissions && loggedIn
	resp, err := uc.store(ctx, model.NewFormResponse(formID, data, userID), once)
	if err != nil {
		if once && errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrAlreadySubmitted, "submit response",
				goerr.V(FormIDKey, formID),
				goerr.V(UserIDKey, userID))
		}
		return nil, goerr.Wrap(err, "failed to store response", goerr.V(FormIDKey, formID))
	}

	logging.From(ctx).Info("response submitted",
		"form_id", formID,
		"response_id", resp.ID,
		"logged_in", loggedIn)
	return resp, nil
}

// store writes resp. With once set, a concurrent submission by the same
// respondent cannot be stored as well.
func (uc *ResponseUseCase) store(ctx context.Context, resp *model.FormResponse, once bool) (*model.FormResponse, error) {
	if once {
		return uc.repo.Response().CreateOnce(ctx, resp)
	}
	return uc.repo.Response().Create(ctx, resp)
}

// List returns the responses of a form the caller owns, newest first
func (uc *ResponseUseCase) List(ctx context.Context, formID types.FormID) ([]*model.FormResponse, error) {
	if _, err := uc.forms.GetOwned(ctx, formID); err != nil {
		return nil, err
	}
	responses, err := uc.repo.Response().ListByForm(ctx, formID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list responses", goerr.V(FormIDKey, formID))
	}
	return responses, nil
}

// Get returns one response of a form the caller owns
func (uc *ResponseUseCase) Get(ctx context.Context, formID types.FormID, id types.ResponseID) (*model.FormResponse, error) {
	if _, err := uc.forms.GetOwned(ctx, formID); err != nil {
		return nil, err
	}
	resp, err := uc.repo.Response().Get(ctx, formID, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrResponseNotFound, "get response",
				goerr.V(FormIDKey, formID),
				goerr.V("response_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get response", goerr.V(FormIDKey, formID))
	}
	return resp, nil
}

// ExportResult describes a written export
type ExportResult struct {
	FileName    string
	ContentType string
}

// Export writes all responses of a form in the requested format
func (uc *ResponseUseCase) Export(ctx context.Context, formID types.FormID, format ExportFormat, w io.Writer) (*ExportResult, error) {
	rec, err := uc.forms.GetOwned(ctx, formID)
	if err != nil {
		return nil, err
	}
	responses, err := uc.repo.Response().ListByForm(ctx, formID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list responses", goerr.V(FormIDKey, formID))
	}

	switch format {
	case ExportCSV, "":
		if err := model.WriteResponsesCSV(w, &rec.Form, responses); err != nil {
			return nil, err
		}
		return &ExportResult{
			FileName:    model.ExportFileName(&rec.Form, "csv"),
			ContentType: "text/csv; charset=utf-8",
		}, nil

	case ExportJSON:
		if err := model.WriteResponsesJSON(w, &rec.Form, responses); err != nil {
			return nil, err
		}
		return &ExportResult{
			FileName:    model.ExportFileName(&rec.Form, "json"),
			ContentType: "application/json",
		}, nil

	default:
		return nil, goerr.Wrap(ErrInvalidInput, "unsupported export format", goerr.V("format", format))
	}
}
