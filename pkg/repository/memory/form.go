package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

type formRepository struct {
	mu    sync.RWMutex
	forms map[types.FormID]*model.FormRecord
}

func newFormRepository() *formRepository {
	return &formRepository{
		forms: make(map[types.FormID]*model.FormRecord),
	}
}

func (r *formRepository) Create(ctx context.Context, form *model.Form, owner types.UserID) (*model.FormRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.forms[form.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "form already exists", goerr.V("id", form.ID))
	}

	now := time.Now().UTC()
	record := &model.FormRecord{
		Form:      *form.Clone(),
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.forms[form.ID] = record
	return record.Clone(), nil
}

func (r *formRepository) Get(ctx context.Context, id types.FormID) (*model.FormRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.forms[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
	}
	return record.Clone(), nil
}

func (r *formRepository) Update(ctx context.Context, form *model.Form) (*model.FormRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.forms[form.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", form.ID))
	}

	updated := &model.FormRecord{
		Form:      *form.Clone(),
		OwnerID:   existing.OwnerID,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	r.forms[form.ID] = updated
	return updated.Clone(), nil
}

func (r *formRepository) Delete(ctx context.Context, id types.FormID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.forms[id]; !exists {
		return goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
	}
	delete(r.forms, id)
	return nil
}

func (r *formRepository) ListByOwner(ctx context.Context, owner types.UserID) ([]*model.FormRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.FormRecord, 0)
	for _, record := range r.forms {
		if record.OwnerID == owner {
			records = append(records, record.Clone())
		}
	}
	slices.SortFunc(records, func(a, b *model.FormRecord) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return records, nil
}
