package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

type responseRepository struct {
	mu        sync.RWMutex
	responses map[types.FormID]map[types.ResponseID]*model.FormResponse
}

func newResponseRepository() *responseRepository {
	return &responseRepository{
		responses: make(map[types.FormID]map[types.ResponseID]*model.FormResponse),
	}
}

func (r *responseRepository) Create(ctx context.Context, response *model.FormResponse) (*model.FormResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byForm, ok := r.responses[response.FormID]
	if !ok {
		byForm = make(map[types.ResponseID]*model.FormResponse)
		r.responses[response.FormID] = byForm
	}
	if _, exists := byForm[response.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "response already exists", goerr.V("id", response.ID))
	}

	byForm[response.ID] = response.Clone()
	return response.Clone(), nil
}

func (r *responseRepository) CreateOnce(ctx context.Context, response *model.FormResponse) (*model.FormResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if response.RespondentID != "" {
		for _, existing := range r.responses[response.FormID] {
			if existing.RespondentID == response.RespondentID {
				return nil, goerr.Wrap(ErrAlreadyExists, "respondent already submitted",
					goerr.V("form_id", response.FormID),
					goerr.V("respondent_id", response.RespondentID))
			}
		}
	}

	byForm, ok := r.responses[response.FormID]
	if !ok {
		byForm = make(map[types.ResponseID]*model.FormResponse)
		r.responses[response.FormID] = byForm
	}
	if _, exists := byForm[response.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "response already exists", goerr.V("id", response.ID))
	}

	byForm[response.ID] = response.Clone()
	return response.Clone(), nil
}

func (r *responseRepository) Get(ctx context.Context, formID types.FormID, id types.ResponseID) (*model.FormResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	response, exists := r.responses[formID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "response not found",
			goerr.V("form_id", formID),
			goerr.V("id", id))
	}
	return response.Clone(), nil
}

func (r *responseRepository) ListByForm(ctx context.Context, formID types.FormID) ([]*model.FormResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	responses := make([]*model.FormResponse, 0, len(r.responses[formID]))
	for _, response := range r.responses[formID] {
		responses = append(responses, response.Clone())
	}
	slices.SortFunc(responses, func(a, b *model.FormResponse) int {
		return b.SubmittedAt.Compare(a.SubmittedAt)
	})
	return responses, nil
}

func (r *responseRepository) CountByForm(ctx context.Context, formID types.FormID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.responses[formID]), nil
}

func (r *responseRepository) ExistsByRespondent(ctx context.Context, formID types.FormID, respondent types.UserID) (bool, error) {
	if respondent == "" {
		return false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, response := range r.responses[formID] {
		if response.RespondentID == respondent {
			return true, nil
		}
	}
	return false, nil
}

func (r *responseRepository) DeleteByForm(ctx context.Context, formID types.FormID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.responses, formID)
	return nil
}
