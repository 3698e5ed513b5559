package interfaces

import (
	"context"

	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// ResponseRepository stores end-user submissions
type ResponseRepository interface {
	Create(ctx context.Context, response *model.FormResponse) (*model.FormResponse, error)
	// CreateOnce stores the response unless its respondent already submitted
	// to the form. The check and the write are atomic; a repeated submission
	// fails with an ErrAlreadyExists-wrapped error.
	CreateOnce(ctx context.Context, response *model.FormResponse) (*model.FormResponse, error)
	Get(ctx context.Context, formID types.FormID, id types.ResponseID) (*model.FormResponse, error)
	// ListByForm returns the form's responses ordered by submission time, newest first.
	ListByForm(ctx context.Context, formID types.FormID) ([]*model.FormResponse, error)
	CountByForm(ctx context.Context, formID types.FormID) (int, error)
	ExistsByRespondent(ctx context.Context, formID types.FormID, respondent types.UserID) (bool, error)
	DeleteByForm(ctx context.Context, formID types.FormID) error
}
