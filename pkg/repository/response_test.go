package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

func runResponseRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("Create and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		formID := types.NewFormID()

		resp := model.NewFormResponse(formID, map[types.FieldID]any{
			"field_name": "Ada",
			"field_age":  float64(36),
			"field_tags": []any{"a", "b"},
			"field_ok":   true,
		}, "")
		_, err := repo.Response().Create(ctx, resp)
		gt.NoError(t, err).Required()

		got, err := repo.Response().Get(ctx, formID, resp.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.FormID).Equal(formID)
		gt.Value(t, got.Data["field_name"]).Equal(any("Ada"))
		gt.Value(t, got.Data["field_age"]).Equal(any(float64(36)))
		gt.Value(t, got.Data["field_tags"]).Equal(any([]any{"a", "b"}))
		gt.Value(t, got.Data["field_ok"]).Equal(any(true))
	})

	t.Run("Get with another form ID is not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		resp := model.NewFormResponse(types.NewFormID(), map[types.FieldID]any{}, "")
		_, err := repo.Response().Create(ctx, resp)
		gt.NoError(t, err).Required()

		_, err = repo.Response().Get(ctx, types.NewFormID(), resp.ID)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("ListByForm is newest first and scoped to the form", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		formID := types.NewFormID()

		older := model.NewFormResponse(formID, map[types.FieldID]any{"field_a": "1"}, "")
		older.SubmittedAt = time.Now().UTC().Add(-time.Hour)
		newer := model.NewFormResponse(formID, map[types.FieldID]any{"field_a": "2"}, "")
		unrelated := model.NewFormResponse(types.NewFormID(), map[types.FieldID]any{}, "")

		for _, r := range []*model.FormResponse{older, newer, unrelated} {
			_, err := repo.Response().Create(ctx, r)
			gt.NoError(t, err).Required()
		}

		list, err := repo.Response().ListByForm(ctx, formID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)
		gt.Value(t, list[0].ID).Equal(newer.ID)
		gt.Value(t, list[1].ID).Equal(older.ID)

		count, err := repo.Response().CountByForm(ctx, formID)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(2)
	})

	t.Run("ExistsByRespondent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		formID := types.NewFormID()
		user := types.NewUserID()

		exists, err := repo.Response().ExistsByRespondent(ctx, formID, user)
		gt.NoError(t, err).Required()
		gt.Bool(t, exists).False()

		_, err = repo.Response().Create(ctx, model.NewFormResponse(formID, map[types.FieldID]any{}, user))
		gt.NoError(t, err).Required()

		exists, err = repo.Response().ExistsByRespondent(ctx, formID, user)
		gt.NoError(t, err).Required()
		gt.Bool(t, exists).True()

		exists, err = repo.Response().ExistsByRespondent(ctx, formID, "")
		gt.NoError(t, err).Required()
		gt.Bool(t, exists).False()
	})

	t.Run("CreateOnce admits one submission per respondent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		formID := types.NewFormID()
		user := types.NewUserID()

		const attempts = 8
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = repo.Response().CreateOnce(ctx, model.NewFormResponse(formID, map[types.FieldID]any{}, user))
			}()
		}
		wg.Wait()

		stored := 0
		for _, err := range errs {
			if err == nil {
				stored++
			}
		}
		gt.Value(t, stored).Equal(1)

		_, err := repo.Response().CreateOnce(ctx, model.NewFormResponse(formID, map[types.FieldID]any{}, user))
		gt.Bool(t, isAlreadyExists(err)).True()

		count, err := repo.Response().CountByForm(ctx, formID)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(1)

		// anonymous submissions are never limited
		for range 2 {
			_, err := repo.Response().CreateOnce(ctx, model.NewFormResponse(formID, map[types.FieldID]any{}, ""))
			gt.NoError(t, err).Required()
		}

		// deleting the form's responses lets the respondent submit again
		gt.NoError(t, repo.Response().DeleteByForm(ctx, formID)).Required()
		_, err = repo.Response().CreateOnce(ctx, model.NewFormResponse(formID, map[types.FieldID]any{}, user))
		gt.NoError(t, err)
	})

	t.Run("DeleteByForm", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		formID := types.NewFormID()
		keep := model.NewFormResponse(types.NewFormID(), map[types.FieldID]any{}, "")

		for i := 0; i < 3; i++ {
			_, err := repo.Response().Create(ctx, model.NewFormResponse(formID, map[types.FieldID]any{}, ""))
			gt.NoError(t, err).Required()
		}
		_, err := repo.Response().Create(ctx, keep)
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Response().DeleteByForm(ctx, formID)).Required()

		count, err := repo.Response().CountByForm(ctx, formID)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(0)

		_, err = repo.Response().Get(ctx, keep.FormID, keep.ID)
		gt.NoError(t, err)
	})
}
