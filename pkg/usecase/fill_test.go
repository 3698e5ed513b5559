package usecase_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/submission"
	"github.com/secmon-lab/formflow/pkg/usecase"
)

func TestFillUseCase_MultiPage(t *testing.T) {
	uc, repo := newUseCases(t)
	createForm(t, uc, "alice", twoPageForm("survey"))
	ctx := context.Background()

	page, err := uc.Fill.Page(ctx, "survey", "")
	gt.NoError(t, err).Required()
	gt.String(t, page.SessionID).NotEqual("")
	gt.String(t, page.HTML).Contains("Page 1 of 2")
	gt.String(t, page.HTML).Contains("Continue")
	gt.String(t, page.HTML).Contains(`action="/f/survey"`)
	sid := page.SessionID

	t.Run("next blocked by required field", func(t *testing.T) {
		res, err := uc.Fill.Act(ctx, "survey", sid, usecase.FillNext, url.Values{})
		gt.NoError(t, err).Required()
		gt.Value(t, res.SessionID).Equal(sid)
		gt.String(t, res.HTML).Contains("Page 1 of 2")
		gt.String(t, res.HTML).Contains(model.MsgRequired)
	})

	t.Run("next and back keep values", func(t *testing.T) {
		res, err := uc.Fill.Act(ctx, "survey", sid, usecase.FillNext, url.Values{"name": {"Carol"}})
		gt.NoError(t, err).Required()
		gt.String(t, res.HTML).Contains("Page 2 of 2")
		gt.String(t, res.HTML).Contains("Back")

		res, err = uc.Fill.Act(ctx, "survey", sid, usecase.FillPrev, url.Values{})
		gt.NoError(t, err).Required()
		gt.String(t, res.HTML).Contains("Page 1 of 2")
		gt.String(t, res.HTML).Contains("Carol")

		_, err = uc.Fill.Act(ctx, "survey", sid, usecase.FillNext, url.Values{"name": {"Carol"}})
		gt.NoError(t, err).Required()
	})

	t.Run("submit stores the response", func(t *testing.T) {
		res, err := uc.Fill.Act(ctx, "survey", sid, usecase.FillSubmit, url.Values{"email": {"carol@example.com"}})
		gt.NoError(t, err).Required()
		gt.Value(t, res.State).Equal(submission.StateSubmitted)
		gt.String(t, res.HTML).Contains(model.DefaultConfirmationMessage)
		gt.String(t, res.HTML).Contains("Submit another response")

		n, err := repo.Response().CountByForm(ctx, "survey")
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(1)
	})

	t.Run("restart", func(t *testing.T) {
		res, err := uc.Fill.Act(ctx, "survey", sid, usecase.FillRestart, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, res.State).Equal(submission.StateFilling)
		gt.String(t, res.HTML).Contains("Page 1 of 2")
	})
}

func TestFillUseCase_SubmitRejected(t *testing.T) {
	uc, _ := newUseCases(t)
	form := contactForm("once")
	form.Settings.AllowMultipleSubmissions = false
	createForm(t, uc, "alice", form)

	bob := ctxAs("bob")
	values := url.Values{"name": {"Bob"}}

	first, err := uc.Fill.Act(bob, "once", "", usecase.FillSubmit, values)
	gt.NoError(t, err).Required()
	gt.Value(t, first.State).Equal(submission.StateSubmitted)
	gt.Bool(t, strings.Contains(first.HTML, "Submit another response")).False()

	// a second flow of the same user is refused by the response store
	second, err := uc.Fill.Act(bob, "once", "", usecase.FillSubmit, values)
	gt.NoError(t, err).Required()
	gt.Value(t, second.State).Equal(submission.StateFilling)
	gt.String(t, second.HTML).Contains("You have already submitted this form.")
}

func TestFillUseCase_Errors(t *testing.T) {
	uc, _ := newUseCases(t)
	form := contactForm("private")
	form.Settings.RequiresLogin = true
	createForm(t, uc, "alice", form)
	createForm(t, uc, "alice", contactForm("public"))

	_, err := uc.Fill.Page(context.Background(), "missing", "")
	gt.Error(t, err).Is(usecase.ErrFormNotFound)

	_, err = uc.Fill.Page(context.Background(), "private", "")
	gt.Error(t, err).Is(usecase.ErrLoginRequired)

	page, err := uc.Fill.Page(ctxAs("bob"), "private", "")
	gt.NoError(t, err).Required()
	gt.String(t, page.HTML).Contains("Send")

	// a session of another form is not reused
	other, err := uc.Fill.Page(context.Background(), "public", page.SessionID)
	gt.NoError(t, err).Required()
	gt.Value(t, other.SessionID).NotEqual(page.SessionID)

	_, err = uc.Fill.Act(context.Background(), "public", other.SessionID, usecase.FillAction("jump"), nil)
	gt.Error(t, err).Is(usecase.ErrUnknownAction)
}

func TestFillUseCase_PurgeExpired(t *testing.T) {
	uc, _ := newUseCases(t, usecase.WithFillSessionTTL(200*time.Millisecond))
	createForm(t, uc, "alice", contactForm("contact"))
	ctx := context.Background()

	_, err := uc.Fill.Page(ctx, "contact", "")
	gt.NoError(t, err).Required()
	_, err = uc.Fill.Page(ctx, "contact", "")
	gt.NoError(t, err).Required()
	gt.Value(t, uc.Fill.ActiveSessions()).Equal(2)

	time.Sleep(300 * time.Millisecond)
	gt.Value(t, uc.Fill.PurgeExpired(ctx)).Equal(2)
	gt.Value(t, uc.Fill.ActiveSessions()).Equal(0)
}
