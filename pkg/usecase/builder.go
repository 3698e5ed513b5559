package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/builder"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/editor"
	"github.com/secmon-lab/formflow/pkg/palette"
	"github.com/secmon-lab/formflow/pkg/pager"
	"github.com/secmon-lab/formflow/pkg/render"
	"github.com/secmon-lab/formflow/pkg/service/formgen"
	"github.com/secmon-lab/formflow/pkg/utils/async"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

// OptionAction is an operation on the options list of a choice-like field
type OptionAction string

const (
	OptionActionAdd    OptionAction = "add"
	OptionActionEdit   OptionAction = "edit"
	OptionActionRemove OptionAction = "remove"
)

// OptionEdit describes one options list operation
type OptionEdit struct {
	Action OptionAction `json:"action"`
	Index  int          `json:"index"`
	Label  string       `json:"label"`
}

// BuilderState is what the editor needs to redraw the canvas
type BuilderState struct {
	Form     *model.Form        `json:"form"`
	Selected types.FieldID      `json:"selected,omitempty"`
	Version  uint64             `json:"version"`
	Save     builder.SaveStatus `json:"save"`
}

// builderSession is the server side editing state of one form
type builderSession struct {
	owner      types.UserID
	controller *builder.Controller
	autosaver  *builder.Autosaver
	// guarded by BuilderUseCase.mu
	lastUsed time.Time
	dropped  bool
}

// BuilderUseCase keeps one controller per form being edited and saves
// changes in the background
type BuilderUseCase struct {
	repo      interfaces.Repository
	forms     *FormUseCase
	renderer  *render.Renderer
	generator *formgen.Generator

	delay               time.Duration
	idleTTL             time.Duration
	group               *async.Group
	confirmationMessage string

	loader   singleflight.Group
	mu       sync.Mutex
	sessions map[types.FormID]*builderSession
}

type builderOption func(*BuilderUseCase)

func withBuilderDelay(d time.Duration) builderOption {
	return func(uc *BuilderUseCase) {
		uc.delay = d
	}
}

func withBuilderIdleTTL(d time.Duration) builderOption {
	return func(uc *BuilderUseCase) {
		uc.idleTTL = d
	}
}

func withBuilderGroup(g *async.Group) builderOption {
	return func(uc *BuilderUseCase) {
		uc.group = g
	}
}

func withBuilderConfirmation(msg string) builderOption {
	return func(uc *BuilderUseCase) {
		uc.confirmationMessage = msg
	}
}

func NewBuilderUseCase(repo interfaces.Repository, forms *FormUseCase, renderer *render.Renderer, generator *formgen.Generator, opts ...builderOption) *BuilderUseCase {
	uc := &BuilderUseCase{
		repo:      repo,
		forms:     forms,
		renderer:  renderer,
		generator: generator,
		delay:     DefaultAutosaveDelay,
		idleTTL:   DefaultBuilderIdleTTL,
		group:     &async.Group{},
		sessions:  make(map[types.FormID]*builderSession),
	}
	for _, opt := range opts {
		opt(uc)
	}
	forms.replaced = uc.evict
	return uc
}

// open returns the caller's editing session of a form, loading it from
// storage on first use. A form that does not exist yet starts as a new
// untitled form with that ID.
func (uc *BuilderUseCase) open(ctx context.Context, id types.FormID) (*builderSession, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(FormIDKey, id))
	}

	uc.mu.Lock()
	s, ok := uc.sessions[id]
	uc.mu.Unlock()

	if !ok {
		v, err, _ := uc.loader.Do(string(id), func() (any, error) {
			return uc.load(ctx, id, session.UserID)
		})
		if err != nil {
			return nil, err
		}
		s = v.(*builderSession)
	}

	uc.mu.Lock()
	s.lastUsed = time.Now()
	uc.mu.Unlock()

	if s.owner != session.UserID {
		return nil, goerr.Wrap(ErrAccessDenied, "form belongs to another user",
			goerr.V(FormIDKey, id),
			goerr.V(UserIDKey, session.UserID))
	}
	return s, nil
}

func (uc *BuilderUseCase) load(ctx context.Context, id types.FormID, user types.UserID) (*builderSession, error) {
	uc.mu.Lock()
	if s, ok := uc.sessions[id]; ok {
		uc.mu.Unlock()
		return s, nil
	}
	uc.mu.Unlock()

	var form *model.Form
	owner := user

	rec, err := uc.forms.Get(ctx, id)
	switch {
	case err == nil:
		form = &rec.Form
		owner = rec.OwnerID
	case errors.Is(err, ErrFormNotFound):
		form = model.NewFormWithID(id)
		if uc.confirmationMessage != "" {
			form.Settings.ConfirmationMessage = uc.confirmationMessage
		}
	default:
		return nil, err
	}

	s := &builderSession{
		owner:      owner,
		controller: builder.New(form),
		lastUsed:   time.Now(),
	}
	s.autosaver = builder.NewAutosaver(
		func(ctx context.Context, form *model.Form) error {
			if uc.isDropped(s) {
				return nil
			}
			_, err := uc.forms.Save(ctx, form, owner)
			return err
		},
		builder.WithDelay(uc.delay),
		builder.WithGroup(uc.group),
		builder.WithOnSaved(func(form *model.Form) {
			logging.From(ctx).Debug("form autosaved", "form_id", form.ID)
		}),
	)

	uc.mu.Lock()
	uc.sessions[id] = s
	uc.mu.Unlock()
	return s, nil
}

// changed schedules an autosave of the current snapshot
func (uc *BuilderUseCase) changed(ctx context.Context, s *builderSession) {
	s.autosaver.Schedule(ctx, s.controller.Snapshot())
}

func (uc *BuilderUseCase) state(s *builderSession) *BuilderState {
	st := &BuilderState{
		Form:    s.controller.Snapshot(),
		Version: s.controller.Version(),
		Save:    s.autosaver.Status(),
	}
	if f, ok := s.controller.Selected(); ok {
		st.Selected = f.ID
	}
	return st
}

// State returns the current canvas of a form
func (uc *BuilderUseCase) State(ctx context.Context, id types.FormID) (*BuilderState, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.state(s), nil
}

// AddField appends a new field built from the palette entry of t
func (uc *BuilderUseCase) AddField(ctx context.Context, id types.FormID, t types.FieldType) (model.Field, error) {
	entry, ok := palette.Lookup(t)
	if !ok {
		return model.Field{}, goerr.Wrap(ErrUnknownFieldType, "add field", goerr.V(FieldTypeKey, t))
	}
	s, err := uc.open(ctx, id)
	if err != nil {
		return model.Field{}, err
	}

	f := s.controller.AddField(entry.Template)
	uc.changed(ctx, s)
	return f, nil
}

// UpdateField replaces a field with a complete new value
func (uc *BuilderUseCase) UpdateField(ctx context.Context, id types.FormID, field model.Field) (model.Field, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return model.Field{}, err
	}

	f, ok := s.controller.UpdateField(field)
	if !ok {
		return model.Field{}, goerr.Wrap(ErrFieldNotFound, "update field",
			goerr.V(FormIDKey, id),
			goerr.V(FieldIDKey, field.ID))
	}
	uc.changed(ctx, s)
	return f, nil
}

// modify runs an editor operation on a field atomically
func (uc *BuilderUseCase) modify(ctx context.Context, id types.FormID, fieldID types.FieldID, fn func(model.Field) (model.Field, error)) (model.Field, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return model.Field{}, err
	}

	f, found, err := s.controller.ModifyField(fieldID, fn)
	if !found {
		return model.Field{}, goerr.Wrap(ErrFieldNotFound, "modify field",
			goerr.V(FormIDKey, id),
			goerr.V(FieldIDKey, fieldID))
	}
	if err != nil {
		return model.Field{}, goerr.Wrap(ErrInvalidInput, err.Error(),
			goerr.V(FormIDKey, id),
			goerr.V(FieldIDKey, fieldID))
	}

	s.controller.Select(fieldID)
	uc.changed(ctx, s)
	return f, nil
}

// EditField sets one editor control of a field
func (uc *BuilderUseCase) EditField(ctx context.Context, id types.FormID, fieldID types.FieldID, change editor.Change) (model.Field, error) {
	return uc.modify(ctx, id, fieldID, func(f model.Field) (model.Field, error) {
		return editor.Resolve(f.Type).Apply(f, change)
	})
}

// EditOptions adds, relabels or removes an option of a choice-like field
func (uc *BuilderUseCase) EditOptions(ctx context.Context, id types.FormID, fieldID types.FieldID, op OptionEdit) (model.Field, error) {
	var fn func(model.Field) (model.Field, error)
	switch op.Action {
	case OptionActionAdd:
		fn = editor.AddOption
	case OptionActionEdit:
		fn = func(f model.Field) (model.Field, error) {
			return editor.EditOption(f, op.Index, op.Label)
		}
	case OptionActionRemove:
		fn = func(f model.Field) (model.Field, error) {
			return editor.RemoveOption(f, op.Index)
		}
	default:
		return model.Field{}, goerr.Wrap(ErrUnknownAction, "edit options", goerr.V(ActionKey, op.Action))
	}
	return uc.modify(ctx, id, fieldID, fn)
}

func (uc *BuilderUseCase) DeleteField(ctx context.Context, id types.FormID, fieldID types.FieldID) error {
	s, err := uc.open(ctx, id)
	if err != nil {
		return err
	}
	if !s.controller.DeleteField(fieldID) {
		return goerr.Wrap(ErrFieldNotFound, "delete field",
			goerr.V(FormIDKey, id),
			goerr.V(FieldIDKey, fieldID))
	}
	uc.changed(ctx, s)
	return nil
}

// SelectField marks the field shown in the property panel
func (uc *BuilderUseCase) SelectField(ctx context.Context, id types.FormID, fieldID types.FieldID) error {
	s, err := uc.open(ctx, id)
	if err != nil {
		return err
	}
	if !s.controller.Select(fieldID) {
		return goerr.Wrap(ErrFieldNotFound, "select field",
			goerr.V(FormIDKey, id),
			goerr.V(FieldIDKey, fieldID))
	}
	return nil
}

func (uc *BuilderUseCase) ReorderFields(ctx context.Context, id types.FormID, sequence []types.FieldID) (*BuilderState, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return nil, err
	}
	s.controller.ReorderFields(sequence)
	uc.changed(ctx, s)
	return uc.state(s), nil
}

func (uc *BuilderUseCase) MoveField(ctx context.Context, id types.FormID, fieldID types.FieldID, index int) (*BuilderState, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.controller.MoveField(fieldID, index) {
		return nil, goerr.Wrap(ErrFieldNotFound, "move field",
			goerr.V(FormIDKey, id),
			goerr.V(FieldIDKey, fieldID))
	}
	uc.changed(ctx, s)
	return uc.state(s), nil
}

func (uc *BuilderUseCase) UpdateForm(ctx context.Context, id types.FormID, patch builder.FormPatch) (*BuilderState, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return nil, err
	}
	s.controller.UpdateForm(patch)
	uc.changed(ctx, s)
	return uc.state(s), nil
}

// Import replaces the canvas with a form document. The document is
// validated first and the canvas is untouched on error. The editing form
// keeps its ID.
func (uc *BuilderUseCase) Import(ctx context.Context, id types.FormID, data []byte) (*BuilderState, error) {
	form, err := model.ImportForm(data)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(FormIDKey, id))
	}

	s, err := uc.open(ctx, id)
	if err != nil {
		return nil, err
	}
	s.controller.ReplaceFormKeepID(form)
	uc.changed(ctx, s)
	return uc.state(s), nil
}

// Export returns the current canvas as a form document
func (uc *BuilderUseCase) Export(ctx context.Context, id types.FormID) ([]byte, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.ExportForm(s.controller.Snapshot())
}

// Generate replaces the canvas with a generated form, keeping the ID
func (uc *BuilderUseCase) Generate(ctx context.Context, id types.FormID, input formgen.Input) (*BuilderState, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return nil, err
	}

	form, err := uc.generator.Generate(ctx, input)
	if err != nil {
		return nil, err
	}
	s.controller.ReplaceFormKeepID(form)
	uc.changed(ctx, s)
	return uc.state(s), nil
}

// Revert discards unsaved changes and reloads the stored form
func (uc *BuilderUseCase) Revert(ctx context.Context, id types.FormID) (*BuilderState, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return nil, err
	}

	rec, err := uc.forms.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.autosaver.Discard()
	s.controller.ReplaceForm(&rec.Form)
	return uc.state(s), nil
}

// Save stores the current canvas immediately
func (uc *BuilderUseCase) Save(ctx context.Context, id types.FormID) (*BuilderState, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return nil, err
	}
	s.autosaver.Schedule(ctx, s.controller.Snapshot())
	if err := s.autosaver.Flush(ctx); err != nil {
		return nil, err
	}
	return uc.state(s), nil
}

// Preview renders every page of the canvas as the respondent would see it,
// with inputs disabled
func (uc *BuilderUseCase) Preview(ctx context.Context, id types.FormID) (string, error) {
	s, err := uc.open(ctx, id)
	if err != nil {
		return "", err
	}

	form := s.controller.Snapshot()
	page := render.PreviewPage{
		Title:       form.Title,
		Description: form.Description,
	}
	for _, p := range pager.Paginate(form.Fields) {
		var fields []render.Presentation
		for _, f := range p.Fields {
			pr, err := uc.renderer.Render(f, render.Editing, nil)
			if err != nil {
				return "", err
			}
			fields = append(fields, pr)
		}
		page.Pages = append(page.Pages, fields)
	}

	return uc.renderer.RenderPreviewPage(page)
}

// evict drops the editing session of a form whose stored document is being
// replaced or deleted. Unsaved canvas changes are discarded.
func (uc *BuilderUseCase) evict(ctx context.Context, id types.FormID) {
	uc.mu.Lock()
	s, ok := uc.sessions[id]
	if ok {
		s.dropped = true
		delete(uc.sessions, id)
	}
	uc.mu.Unlock()

	if !ok {
		return
	}
	s.autosaver.Discard()
	s.autosaver.Close()
	logging.From(ctx).Debug("builder session dropped", "form_id", id)
}

func (uc *BuilderUseCase) isDropped(s *builderSession) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return s.dropped
}

// PurgeExpired saves and drops editing sessions that were not used for the
// idle TTL. It returns the number of sessions dropped.
func (uc *BuilderUseCase) PurgeExpired(ctx context.Context) int {
	deadline := time.Now().Add(-uc.idleTTL)

	uc.mu.Lock()
	var idle []*builderSession
	for id, s := range uc.sessions {
		if s.lastUsed.Before(deadline) {
			idle = append(idle, s)
			delete(uc.sessions, id)
		}
	}
	uc.mu.Unlock()

	for _, s := range idle {
		if err := s.autosaver.Flush(ctx); err != nil {
			logging.From(ctx).Error("failed to flush idle builder session", "error", err)
		}
		s.autosaver.Close()
	}
	if len(idle) > 0 {
		logging.From(ctx).Debug("idle builder sessions purged", "count", len(idle))
	}
	return len(idle)
}

// ActiveSessions returns the number of forms currently open in the builder
func (uc *BuilderUseCase) ActiveSessions() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.sessions)
}

// Close flushes and stops every editing session
func (uc *BuilderUseCase) Close(ctx context.Context) {
	uc.mu.Lock()
	sessions := make([]*builderSession, 0, len(uc.sessions))
	for _, s := range uc.sessions {
		sessions = append(sessions, s)
	}
	uc.sessions = make(map[types.FormID]*builderSession)
	uc.mu.Unlock()

	for _, s := range sessions {
		if err := s.autosaver.Flush(ctx); err != nil {
			logging.From(ctx).Error("failed to flush builder session", "error", err)
		}
		s.autosaver.Close()
	}
}
