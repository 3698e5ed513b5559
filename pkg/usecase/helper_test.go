package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/repository/memory"
	"github.com/secmon-lab/formflow/pkg/usecase"
)

func newUseCases(t *testing.T, opts ...usecase.Option) (*usecase.UseCases, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	opts = append([]usecase.Option{usecase.WithAutosaveDelay(10 * time.Millisecond)}, opts...)
	uc, err := usecase.New(repo, opts...)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		gt.NoError(t, uc.Shutdown(ctx))
	})
	return uc, repo
}

func ctxAs(user types.UserID) context.Context {
	return auth.ContextWithSession(context.Background(), &auth.Session{
		ID:        auth.NewSessionID(),
		UserID:    user,
		Email:     string(user) + "@example.com",
		Name:      string(user),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
}

// contactForm has a required name, an optional email and a submit button
func contactForm(id types.FormID) model.Form {
	return model.Form{
		ID:          id,
		Title:       "Contact",
		Description: "Say hello",
		Settings:    model.DefaultSettings(),
		Fields: []model.Field{
			{ID: "name", Type: types.FieldTypeText, Order: 0, Label: "Name", Required: true},
			{ID: "email", Type: types.FieldTypeEmail, Order: 1, Label: "Email"},
			{ID: "send", Type: types.FieldTypeSubmit, Order: 2, Label: "Submit Button", Config: &model.Config{Text: model.Ptr("Send")}},
		},
	}
}

// twoPageForm splits a required name and a required email by a page break
func twoPageForm(id types.FormID) model.Form {
	return model.Form{
		ID:       id,
		Title:    "Survey",
		Settings: model.DefaultSettings(),
		Fields: []model.Field{
			{ID: "name", Type: types.FieldTypeText, Order: 0, Label: "Name", Required: true},
			{ID: "break", Type: types.FieldTypePageBreak, Order: 1, Label: "Page Break", Config: &model.Config{NextButtonText: "Continue", PrevButtonText: "Back"}},
			{ID: "email", Type: types.FieldTypeEmail, Order: 2, Label: "Email", Required: true},
		},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
