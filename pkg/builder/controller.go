// Package builder holds the server side state of a form being edited on the
// canvas and saves it in the background.
package builder

import (
	"slices"
	"sync"

	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// FormPatch updates form level attributes. Nil members are left unchanged.
type FormPatch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Settings    *model.Settings `json:"settings,omitempty"`
}

// Controller owns one form. Fields are stored by ID and replaced as whole
// values; every operation keeps orders contiguous and never fails.
type Controller struct {
	mu sync.Mutex

	id          types.FormID
	title       string
	description string
	settings    model.Settings
	fields      map[types.FieldID]model.Field
	selected    types.FieldID
	version     uint64
}

func New(form *model.Form) *Controller {
	c := &Controller{}
	c.load(form)
	return c
}

func (c *Controller) load(form *model.Form) {
	c.id = form.ID
	c.title = form.Title
	c.description = form.Description
	c.settings = form.Settings
	c.fields = make(map[types.FieldID]model.Field, len(form.Fields))

	for _, f := range model.Renumber(form.Fields) {
		if f.ID == "" || c.has(f.ID) {
			f.ID = types.NewFieldID()
		}
		c.fields[f.ID] = f
	}
}

func (c *Controller) has(id types.FieldID) bool {
	_, ok := c.fields[id]
	return ok
}

// sorted returns the fields by order
func (c *Controller) sorted() []model.Field {
	out := make([]model.Field, 0, len(c.fields))
	for _, f := range c.fields {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b model.Field) int {
		return a.Order - b.Order
	})
	return out
}

// restamp writes order = index for the given sequence
func (c *Controller) restamp(seq []model.Field) {
	for i, f := range seq {
		f.Order = i
		c.fields[f.ID] = f
	}
}

func (c *Controller) touch() {
	c.version++
}

func (c *Controller) FormID() types.FormID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Version increases with every mutation
func (c *Controller) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Snapshot returns a deep copy of the form with fields in order
func (c *Controller) Snapshot() *model.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() *model.Form {
	fields := c.sorted()
	for i := range fields {
		fields[i] = fields[i].Clone()
	}
	return &model.Form{
		ID:          c.id,
		Title:       c.title,
		Description: c.description,
		Settings:    c.settings,
		Fields:      fields,
	}
}

func (c *Controller) Field(id types.FieldID) (model.Field, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.fields[id]
	if !ok {
		return model.Field{}, false
	}
	return f.Clone(), true
}

// AddField appends a copy of template with a fresh ID and selects it
func (c *Controller) AddField(template model.Field) model.Field {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := template.Clone()
	f.ID = types.NewFieldID()
	f.Order = len(c.fields)
	c.fields[f.ID] = f
	c.selected = f.ID
	c.touch()

	return f.Clone()
}

// UpdateField replaces the field with the same ID. The stored order is kept.
// It reports false when no such field exists.
func (c *Controller) UpdateField(updated model.Field) (model.Field, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateField(updated)
}

func (c *Controller) updateField(updated model.Field) (model.Field, bool) {
	current, ok := c.fields[updated.ID]
	if !ok {
		return model.Field{}, false
	}

	f := updated.Clone()
	f.Order = current.Order
	c.fields[f.ID] = f
	c.touch()
	return f.Clone(), true
}

// ModifyField applies fn to the current value of the field and stores the
// result atomically. Errors from fn leave the field unchanged.
func (c *Controller) ModifyField(id types.FieldID, fn func(model.Field) (model.Field, error)) (model.Field, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.fields[id]
	if !ok {
		return model.Field{}, false, nil
	}
	updated, err := fn(current.Clone())
	if err != nil {
		return model.Field{}, true, err
	}
	updated.ID = id

	f, _ := c.updateField(updated)
	return f, true, nil
}

// DeleteField removes the field and renumbers the rest
func (c *Controller) DeleteField(id types.FieldID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.has(id) {
		return false
	}
	delete(c.fields, id)
	c.restamp(c.sorted())
	if c.selected == id {
		c.selected = ""
	}
	c.touch()
	return true
}

// ReorderFields re-stamps orders following sequence. Unknown IDs are
// ignored, repeated IDs keep their first position and fields missing from the
// sequence follow in their previous relative order.
func (c *Controller) ReorderFields(sequence []types.FieldID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reorder(sequence)
}

func (c *Controller) reorder(sequence []types.FieldID) {
	seen := make(map[types.FieldID]bool, len(c.fields))
	next := make([]model.Field, 0, len(c.fields))

	for _, id := range sequence {
		f, ok := c.fields[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		next = append(next, f)
	}
	for _, f := range c.sorted() {
		if !seen[f.ID] {
			next = append(next, f)
		}
	}

	c.restamp(next)
	c.touch()
}

// MoveField moves one field to index, clamped to the valid range
func (c *Controller) MoveField(id types.FieldID, index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.has(id) {
		return false
	}

	ids := make([]types.FieldID, 0, len(c.fields))
	for _, f := range c.sorted() {
		if f.ID != id {
			ids = append(ids, f.ID)
		}
	}
	index = max(0, min(index, len(ids)))
	ids = slices.Insert(ids, index, id)

	c.reorder(ids)
	return true
}

func (c *Controller) UpdateForm(patch FormPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if patch.Title != nil {
		c.title = *patch.Title
	}
	if patch.Description != nil {
		c.description = *patch.Description
	}
	if patch.Settings != nil {
		c.settings = *patch.Settings
	}
	c.touch()
}

// ReplaceForm swaps the whole document and clears the selection
func (c *Controller) ReplaceForm(form *model.Form) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.load(form.Clone())
	c.selected = ""
	c.touch()
}

// ReplaceFormKeepID swaps the document but keeps the current form ID, which
// is how generated forms are merged into an existing one
func (c *Controller) ReplaceFormKeepID(form *model.Form) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := form.Clone()
	next.ID = c.id
	c.load(next)
	c.selected = ""
	c.touch()
}

// Select marks a field as the one being edited. Unknown IDs clear the
// selection.
func (c *Controller) Select(id types.FieldID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.has(id) {
		c.selected = ""
		return false
	}
	c.selected = id
	return true
}

func (c *Controller) Selected() (model.Field, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.fields[c.selected]
	if !ok {
		return model.Field{}, false
	}
	return f.Clone(), true
}
