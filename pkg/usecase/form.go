package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

// dashboardConcurrency bounds the response count queries of one listing
const dashboardConcurrency = 8

type FormUseCase struct {
	repo interfaces.Repository

	// replaced is called before a stored form is overwritten or deleted
	// outside the builder
	replaced func(ctx context.Context, id types.FormID)
}

func NewFormUseCase(repo interfaces.Repository) *FormUseCase {
	return &FormUseCase{repo: repo}
}

func (uc *FormUseCase) notifyReplaced(ctx context.Context, id types.FormID) {
	if uc.replaced != nil {
		uc.replaced(ctx, id)
	}
}

// FormSummary is one row of the dashboard
type FormSummary struct {
	ID            types.FormID `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	FieldCount    int          `json:"fieldCount"`
	ResponseCount int          `json:"responseCount"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func requireSession(ctx context.Context) (*auth.Session, error) {
	s := auth.SessionFromContext(ctx)
	if s == nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "no session in context")
	}
	return s, nil
}

// prepare checks the envelope and normalises field orders
func prepare(id types.FormID, form model.Form) (*model.Form, error) {
	if form.ID == "" {
		form.ID = id
	}
	if id != "" && form.ID != id {
		return nil, goerr.Wrap(ErrInvalidInput, "envelope id does not match form id",
			goerr.V(FormIDKey, id),
			goerr.V("data_id", form.ID))
	}
	if err := form.ID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(FormIDKey, form.ID))
	}

	out := form.Clone()
	out.Fields = model.Renumber(out.Fields)
	if err := out.CheckOrder(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(FormIDKey, form.ID))
	}
	return out, nil
}

// Create stores a new form owned by the caller
func (uc *FormUseCase) Create(ctx context.Context, env model.FormEnvelope) (*model.FormRecord, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	form, err := prepare(env.ID, env.Data)
	if err != nil {
		return nil, err
	}

	rec, err := uc.repo.Form().Create(ctx, form, session.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrFormExists, "create form", goerr.V(FormIDKey, form.ID))
		}
		return nil, goerr.Wrap(err, "failed to create form", goerr.V(FormIDKey, form.ID))
	}
	return rec, nil
}

// Get returns a form. Reading is public so that share links work without
// an account.
func (uc *FormUseCase) Get(ctx context.Context, id types.FormID) (*model.FormRecord, error) {
	rec, err := uc.repo.Form().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrFormNotFound, "get form", goerr.V(FormIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get form", goerr.V(FormIDKey, id))
	}
	return rec, nil
}

// GetOwned returns a form that the caller owns
func (uc *FormUseCase) GetOwned(ctx context.Context, id types.FormID) (*model.FormRecord, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != session.UserID {
		return nil, goerr.Wrap(ErrAccessDenied, "form belongs to another user",
			goerr.V(FormIDKey, id),
			goerr.V(UserIDKey, session.UserID))
	}
	return rec, nil
}

// Update replaces a form the caller owns
func (uc *FormUseCase) Update(ctx context.Context, id types.FormID, env model.FormEnvelope) (*model.FormRecord, error) {
	if env.ID != "" && env.ID != id {
		return nil, goerr.Wrap(ErrInvalidInput, "envelope id does not match path", goerr.V(FormIDKey, id))
	}
	form, err := prepare(id, env.Data)
	if err != nil {
		return nil, err
	}

	if _, err := uc.GetOwned(ctx, id); err != nil {
		return nil, err
	}
	uc.notifyReplaced(ctx, id)

	rec, err := uc.repo.Form().Update(ctx, form)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrFormNotFound, "update form", goerr.V(FormIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to update form", goerr.V(FormIDKey, id))
	}
	return rec, nil
}

// Save creates or updates a form for owner. Used by autosave and import.
func (uc *FormUseCase) Save(ctx context.Context, form *model.Form, owner types.UserID) (*model.FormRecord, error) {
	rec, err := uc.repo.Form().Update(ctx, form)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to save form", goerr.V(FormIDKey, form.ID))
	}

	rec, err = uc.repo.Form().Create(ctx, form, owner)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save new form", goerr.V(FormIDKey, form.ID))
	}
	return rec, nil
}

// Delete removes a form and all of its responses
func (uc *FormUseCase) Delete(ctx context.Context, id types.FormID) error {
	if _, err := uc.GetOwned(ctx, id); err != nil {
		return err
	}
	uc.notifyReplaced(ctx, id)

	if err := uc.repo.Response().DeleteByForm(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete responses", goerr.V(FormIDKey, id))
	}
	if err := uc.repo.Form().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrFormNotFound, "delete form", goerr.V(FormIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete form", goerr.V(FormIDKey, id))
	}
	return nil
}

// List returns the caller's forms with their response counts, most
// recently updated first
func (uc *FormUseCase) List(ctx context.Context) ([]*FormSummary, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	records, err := uc.repo.Form().ListByOwner(ctx, session.UserID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list forms", goerr.V(UserIDKey, session.UserID))
	}

	summaries := make([]*FormSummary, len(records))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(dashboardConcurrency)

	for i, rec := range records {
		summaries[i] = &FormSummary{
			ID:          rec.Form.ID,
			Title:       rec.Form.Title,
			Description: rec.Form.Description,
			FieldCount:  len(rec.Form.Fields),
			CreatedAt:   rec.CreatedAt,
			UpdatedAt:   rec.UpdatedAt,
		}
		eg.Go(func() error {
			n, err := uc.repo.Response().CountByForm(egCtx, rec.Form.ID)
			if err != nil {
				return goerr.Wrap(err, "failed to count responses", goerr.V(FormIDKey, rec.Form.ID))
			}
			summaries[i].ResponseCount = n
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Import validates a form document and stores it for the caller, replacing
// a form with the same ID that the caller owns
func (uc *FormUseCase) Import(ctx context.Context, data []byte) (*model.FormRecord, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	form, err := model.ImportForm(data)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error())
	}

	existing, err := uc.Get(ctx, form.ID)
	switch {
	case errors.Is(err, ErrFormNotFound):
	case err != nil:
		return nil, err
	case existing.OwnerID != session.UserID:
		return nil, goerr.Wrap(ErrAccessDenied, "form id is used by another user", goerr.V(FormIDKey, form.ID))
	default:
		uc.notifyReplaced(ctx, form.ID)
	}

	return uc.Save(ctx, form, session.UserID)
}

// Export returns the pretty printed form document
func (uc *FormUseCase) Export(ctx context.Context, id types.FormID) ([]byte, error) {
	rec, err := uc.GetOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.ExportForm(&rec.Form)
}
