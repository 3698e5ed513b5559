package builder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/utils/async"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
)

const DefaultAutosaveDelay = time.Second

// SaveFunc persists one snapshot of a form
type SaveFunc func(ctx context.Context, form *model.Form) error

type SaveState string

const (
	SaveIdle    SaveState = "idle"
	SavePending SaveState = "pending"
	SaveSaving  SaveState = "saving"
	SaveSaved   SaveState = "saved"
	SaveError   SaveState = "error"
)

// SaveStatus describes the autosave progress of the latest scheduled version
type SaveStatus struct {
	State     SaveState `json:"state"`
	Version   uint64    `json:"version"`
	LastError string    `json:"lastError,omitempty"`
	SavedAt   time.Time `json:"savedAt,omitzero"`
}

type AutosaveOption func(*Autosaver)

func WithDelay(d time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		a.delay = d
	}
}

// WithGroup dispatches saves through g so that shutdown can wait for them
func WithGroup(g *async.Group) AutosaveOption {
	return func(a *Autosaver) {
		a.dispatch = g.Dispatch
	}
}

// WithOnSaved registers a callback invoked after the latest version was saved
func WithOnSaved(fn func(form *model.Form)) AutosaveOption {
	return func(a *Autosaver) {
		a.onSaved = fn
	}
}

// Autosaver debounces form changes. Each Schedule supersedes the pending
// save and cancels one in flight; a completed save only updates the status
// when its version is still the latest.
type Autosaver struct {
	save     SaveFunc
	delay    time.Duration
	dispatch func(ctx context.Context, handler func(ctx context.Context) error)
	onSaved  func(form *model.Form)

	mu       sync.Mutex
	version  uint64
	pending  *model.Form
	timer    *time.Timer
	cancel   context.CancelFunc
	status   SaveStatus
	closed   bool
	lastSave *model.Form
}

func NewAutosaver(save SaveFunc, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		save:     save,
		delay:    DefaultAutosaveDelay,
		dispatch: async.Dispatch,
		status:   SaveStatus{State: SaveIdle},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Schedule queues form to be saved after the debounce delay
func (a *Autosaver) Schedule(ctx context.Context, form *model.Form) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}

	a.version++
	v := a.version
	a.pending = form.Clone()
	a.stopLocked()
	a.status = SaveStatus{State: SavePending, Version: v, SavedAt: a.status.SavedAt}

	a.timer = time.AfterFunc(a.delay, func() {
		a.dispatch(ctx, func(ctx context.Context) error {
			return a.run(ctx, v)
		})
	})
}

// stopLocked stops the debounce timer and cancels an in-flight save
func (a *Autosaver) stopLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// take claims the pending snapshot of version v
func (a *Autosaver) take(ctx context.Context, v uint64) (*model.Form, context.Context, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || v != a.version || a.pending == nil {
		return nil, nil, false
	}
	form := a.pending
	a.pending = nil

	saveCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.status.State = SaveSaving
	return form, saveCtx, true
}

func (a *Autosaver) run(ctx context.Context, v uint64) error {
	form, saveCtx, ok := a.take(ctx, v)
	if !ok {
		return nil
	}

	err := a.save(saveCtx, form)
	applied := a.finish(v, form, err)

	if err != nil {
		if !applied && errors.Is(err, context.Canceled) {
			return nil
		}
		return goerr.Wrap(err, "autosave failed",
			goerr.V(FormIDKey, form.ID),
			goerr.V(VersionKey, v))
	}
	return nil
}

// finish records the result of saving version v. It reports whether the
// result was applied, which only happens for the latest version.
func (a *Autosaver) finish(v uint64, form *model.Form, err error) bool {
	a.mu.Lock()
	if v != a.version || a.closed {
		a.mu.Unlock()
		return false
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	if err != nil {
		a.status.State = SaveError
		a.status.LastError = err.Error()
		a.mu.Unlock()
		return true
	}

	a.status = SaveStatus{State: SaveSaved, Version: v, SavedAt: time.Now()}
	a.lastSave = form
	onSaved := a.onSaved
	a.mu.Unlock()

	if onSaved != nil {
		onSaved(form.Clone())
	}
	return true
}

// Flush saves the pending snapshot immediately, if any
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.closed || a.pending == nil {
		a.mu.Unlock()
		return nil
	}
	v := a.version
	a.stopLocked()
	a.mu.Unlock()

	form, saveCtx, ok := a.take(ctx, v)
	if !ok {
		return nil
	}

	logging.From(ctx).Debug("flushing autosave", "form_id", form.ID, "version", v)
	err := a.save(saveCtx, form)
	a.finish(v, form, err)
	if err != nil {
		return goerr.Wrap(err, "flush autosave",
			goerr.V(FormIDKey, form.ID),
			goerr.V(VersionKey, v))
	}
	return nil
}

func (a *Autosaver) Status() SaveStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// LastSaved returns the most recent snapshot that was saved successfully
func (a *Autosaver) LastSaved() *model.Form {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSave.Clone()
}

// Discard drops the pending save and ignores the one in flight. Later
// changes are scheduled as usual.
func (a *Autosaver) Discard() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.version++
	a.pending = nil
	a.stopLocked()
	a.status = SaveStatus{State: SaveIdle, Version: a.version, SavedAt: a.status.SavedAt}
}

// Close drops any pending save and cancels the one in flight
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	a.pending = nil
	a.stopLocked()
}
