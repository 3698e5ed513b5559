// Package submission drives a respondent through the pages of a form:
// per-page validation, navigation, submit and optional restart.
package submission

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/pager"
)

type State string

const (
	StateFilling    State = "filling"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
)

// Submitter delivers the collected values, typically to the response store
type Submitter interface {
	Submit(ctx context.Context, values map[types.FieldID]any) error
}

// SubmitterFunc adapts a function to Submitter
type SubmitterFunc func(ctx context.Context, values map[types.FieldID]any) error

func (f SubmitterFunc) Submit(ctx context.Context, values map[types.FieldID]any) error {
	return f(ctx, values)
}

// Flow is the state of one respondent filling one form. It is safe for
// concurrent use; a second Submit while one is running is rejected.
type Flow struct {
	mu sync.Mutex

	form   *model.Form
	pages  []pager.Page
	fields map[types.FieldID]model.Field

	state   State
	page    int
	values  map[types.FieldID]any
	errors  model.ValidationErrors
	lastErr error
}

type Option func(*Flow)

// WithValues pre-fills values, e.g. when a session is restored
func WithValues(values map[types.FieldID]any) Option {
	return func(f *Flow) {
		for id, v := range values {
			if field, ok := f.fields[id]; ok && field.IsContent() {
				f.values[id] = cloneValue(v)
			}
		}
	}
}

func New(form *model.Form, opts ...Option) *Flow {
	f := &Flow{
		form:   form.Clone(),
		pages:  pager.Paginate(form.Fields),
		fields: make(map[types.FieldID]model.Field, len(form.Fields)),
		state:  StateFilling,
		values: make(map[types.FieldID]any),
		errors: make(model.ValidationErrors),
	}
	for _, field := range f.form.Fields {
		f.fields[field.ID] = field
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) Form() *model.Form {
	return f.form.Clone()
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

func (f *Flow) Pages() []pager.Page {
	out := make([]pager.Page, len(f.pages))
	for i, p := range f.pages {
		out[i] = pager.Page{Index: p.Index, Fields: cloneFields(p.Fields)}
	}
	return out
}

func (f *Flow) CurrentPage() pager.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.pages[f.page]
	return pager.Page{Index: p.Index, Fields: cloneFields(p.Fields)}
}

func (f *Flow) IsLastPage() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isLastPage()
}

func (f *Flow) isLastPage() bool {
	return f.page == len(f.pages)-1
}

// Values returns a copy of everything entered so far
func (f *Flow) Values() map[types.FieldID]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneValues(f.values)
}

func (f *Flow) Value(id types.FieldID) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneValue(f.values[id])
}

func (f *Flow) Errors() model.ValidationErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(model.ValidationErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// LastError is the cause of the most recent failed submit
func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Flow) ConfirmationMessage() string {
	return f.form.Settings.ConfirmationMessage
}

// SetValue records the respondent's value. A non-empty value clears the
// field's validation message.
func (f *Flow) SetValue(id types.FieldID, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateFilling {
		return goerr.Wrap(ErrNotFilling, "cannot set value", goerr.V(StateKey, f.state))
	}
	field, ok := f.fields[id]
	if !ok || !field.IsContent() {
		return goerr.Wrap(ErrUnknownField, "cannot set value",
			goerr.V(FormIDKey, f.form.ID),
			goerr.V(FieldIDKey, id))
	}

	f.values[id] = cloneValue(value)
	if !model.IsEmptyValue(value) {
		delete(f.errors, id)
	}
	return nil
}

// ValidateCurrentPage checks the content fields of the current page and
// replaces their messages in Errors
func (f *Flow) ValidateCurrentPage() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validatePage(f.page)
}

func (f *Flow) validatePage(index int) bool {
	valid := true
	for _, field := range f.pages[index].Fields {
		if !field.IsContent() {
			continue
		}
		if msg := model.ValidateValue(field, f.values[field.ID]); msg != "" {
			f.errors[field.ID] = msg
			valid = false
		} else {
			delete(f.errors, field.ID)
		}
	}
	return valid
}

// Next moves forward when the current page is valid
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateFilling {
		return goerr.Wrap(ErrNotFilling, "cannot go to next page", goerr.V(StateKey, f.state))
	}
	if f.isLastPage() {
		return goerr.Wrap(ErrLastPage, "cannot go to next page", goerr.V(PageKey, f.page))
	}
	if !f.validatePage(f.page) {
		return goerr.Wrap(ErrValidation, "cannot go to next page", goerr.V(PageKey, f.page))
	}

	f.page++
	return nil
}

// Prev moves back without validating
func (f *Flow) Prev() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateFilling {
		return goerr.Wrap(ErrNotFilling, "cannot go to previous page", goerr.V(StateKey, f.state))
	}
	if f.page == 0 {
		return goerr.Wrap(ErrFirstPage, "cannot go to previous page")
	}

	f.page--
	return nil
}

// Submit validates the last page and hands the content values to s. On
// failure the flow returns to the last page with LastError set, so the
// respondent can retry.
func (f *Flow) Submit(ctx context.Context, s Submitter) error {
	f.mu.Lock()
	if f.state != StateFilling {
		state := f.state
		f.mu.Unlock()
		return goerr.Wrap(ErrNotFilling, "cannot submit", goerr.V(StateKey, state))
	}
	if !f.isLastPage() {
		page := f.page
		f.mu.Unlock()
		return goerr.Wrap(ErrNotLastPage, "cannot submit", goerr.V(PageKey, page))
	}
	// earlier pages were validated by Next; the submitter checks the whole set
	if !f.validatePage(f.page) {
		page := f.page
		f.mu.Unlock()
		return goerr.Wrap(ErrValidation, "cannot submit", goerr.V(PageKey, page))
	}

	values := f.contentValues()
	f.state = StateSubmitting
	f.lastErr = nil
	f.mu.Unlock()

	err := s.Submit(ctx, values)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = StateFilling
		f.page = len(f.pages) - 1
		f.lastErr = err
		return goerr.Wrap(ErrSubmitFailed, err.Error(), goerr.V(FormIDKey, f.form.ID))
	}

	f.state = StateSubmitted
	return nil
}

// contentValues collects values of content fields only, in the form's
// field set regardless of page
func (f *Flow) contentValues() map[types.FieldID]any {
	out := make(map[types.FieldID]any)
	for id, v := range f.values {
		if field, ok := f.fields[id]; ok && field.IsContent() {
			out[id] = cloneValue(v)
		}
	}
	return out
}

// CanRestart reports whether another response may be entered
func (f *Flow) CanRestart() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canRestart()
}

func (f *Flow) canRestart() bool {
	return f.state == StateSubmitted && f.form.Settings.AllowMultipleSubmissions
}

// Restart clears everything and returns to the first page
func (f *Flow) Restart() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.canRestart() {
		return goerr.Wrap(ErrRestartNotAllowed, "cannot restart",
			goerr.V(StateKey, f.state),
			goerr.V("allow_multiple", f.form.Settings.AllowMultipleSubmissions))
	}

	f.state = StateFilling
	f.page = 0
	f.values = make(map[types.FieldID]any)
	f.errors = make(model.ValidationErrors)
	f.lastErr = nil
	return nil
}

func cloneFields(fields []model.Field) []model.Field {
	out := make([]model.Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

func cloneValues(values map[types.FieldID]any) map[types.FieldID]any {
	out := make(map[types.FieldID]any, len(values))
	for k, v := range values {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []string:
		return slices.Clone(x)
	case []any:
		return slices.Clone(x)
	}
	return v
}
