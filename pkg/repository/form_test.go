package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

func newTestForm() *model.Form {
	form := model.NewForm()
	form.Title = "Event signup"
	form.Fields = []model.Field{
		{
			ID:       types.NewFieldID(),
			Type:     types.FieldTypeText,
			Order:    0,
			Label:    "Name",
			Required: true,
			Validation: &model.Validation{
				MinLength: model.Ptr(2),
			},
		},
		{
			ID:    types.NewFieldID(),
			Type:  types.FieldTypeChoice,
			Order: 1,
			Label: "Meal",
			Config: &model.Config{
				Options: []model.Option{
					{Label: "Fish", Value: "fish"},
					{Label: "Vegan", Value: "vegan"},
				},
				Multiple: model.Ptr(true),
			},
		},
	}
	return form
}

func runFormRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("Create and Get keeps the document", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := types.NewUserID()
		form := newTestForm()

		created, err := repo.Form().Create(ctx, form, owner)
		gt.NoError(t, err).Required()
		gt.Value(t, created.OwnerID).Equal(owner)
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		got, err := repo.Form().Get(ctx, form.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Form.Title).Equal("Event signup")
		gt.Value(t, got.Form.Settings).Equal(form.Settings)
		gt.Array(t, got.Form.Fields).Length(2)
		gt.Value(t, got.Form.Fields[0]).Equal(form.Fields[0])
		gt.Value(t, got.Form.Fields[1]).Equal(form.Fields[1])
		gt.Value(t, got.OwnerID).Equal(owner)
	})

	t.Run("Create rejects a duplicate ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		form := newTestForm()

		_, err := repo.Form().Create(ctx, form, types.NewUserID())
		gt.NoError(t, err).Required()

		_, err = repo.Form().Create(ctx, form, types.NewUserID())
		gt.Value(t, err).NotNil()
		gt.Bool(t, isAlreadyExists(err)).True()
	})

	t.Run("stored form is isolated from caller mutation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		form := newTestForm()

		_, err := repo.Form().Create(ctx, form, types.NewUserID())
		gt.NoError(t, err).Required()
		form.Fields[0].Label = "changed"

		got, err := repo.Form().Get(ctx, form.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Form.Fields[0].Label).Equal("Name")
	})

	t.Run("Update keeps owner and creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := types.NewUserID()
		form := newTestForm()

		created, err := repo.Form().Create(ctx, form, owner)
		gt.NoError(t, err).Required()

		time.Sleep(10 * time.Millisecond)
		form.Title = "Renamed"
		form.Fields = form.Fields[:1]
		updated, err := repo.Form().Update(ctx, form)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.OwnerID).Equal(owner)
		gt.Bool(t, updated.UpdatedAt.After(created.UpdatedAt)).True()

		got, err := repo.Form().Get(ctx, form.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Form.Title).Equal("Renamed")
		gt.Array(t, got.Form.Fields).Length(1)
		gt.Value(t, got.OwnerID).Equal(owner)
	})

	t.Run("Update of missing form is not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Form().Update(context.Background(), newTestForm())
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Get of missing form is not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Form().Get(context.Background(), types.NewFormID())
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Delete removes the form", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		form := newTestForm()

		_, err := repo.Form().Create(ctx, form, types.NewUserID())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Form().Delete(ctx, form.ID)).Required()

		_, err = repo.Form().Get(ctx, form.ID)
		gt.Bool(t, isNotFound(err)).True()
		gt.Bool(t, isNotFound(repo.Form().Delete(ctx, form.ID))).True()
	})

	t.Run("ListByOwner returns newest update first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := types.NewUserID()

		first := newTestForm()
		second := newTestForm()
		other := newTestForm()

		_, err := repo.Form().Create(ctx, first, owner)
		gt.NoError(t, err).Required()
		time.Sleep(10 * time.Millisecond)
		_, err = repo.Form().Create(ctx, second, owner)
		gt.NoError(t, err).Required()
		_, err = repo.Form().Create(ctx, other, types.NewUserID())
		gt.NoError(t, err).Required()

		time.Sleep(10 * time.Millisecond)
		first.Title = "touched"
		_, err = repo.Form().Update(ctx, first)
		gt.NoError(t, err).Required()

		list, err := repo.Form().ListByOwner(ctx, owner)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)
		gt.Value(t, list[0].Form.ID).Equal(first.ID)
		gt.Value(t, list[1].Form.ID).Equal(second.ID)
	})
}
