package interfaces

import (
	"context"

	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// FormRepository stores form documents together with their owner
type FormRepository interface {
	// Create stores a new form. It fails when the ID already exists.
	Create(ctx context.Context, form *model.Form, owner types.UserID) (*model.FormRecord, error)
	Get(ctx context.Context, id types.FormID) (*model.FormRecord, error)
	// Update replaces the form document; owner and creation time are kept.
	Update(ctx context.Context, form *model.Form) (*model.FormRecord, error)
	Delete(ctx context.Context, id types.FormID) error
	// ListByOwner returns the owner's forms, most recently updated first.
	ListByOwner(ctx context.Context, owner types.UserID) ([]*model.FormRecord, error)
}
