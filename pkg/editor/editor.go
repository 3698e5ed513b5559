// Package editor resolves the property editor of a field type and applies
// edits as complete field replacements.
package editor

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// Editor is the property editor of one field type
type Editor struct {
	fieldType types.FieldType
	controls  []Control
}

// Change sets one control to a new value. Value is what a JSON decoder
// produces: string, float64, bool, nil or a list of options.
type Change struct {
	Control string `json:"control"`
	Value   any    `json:"value"`
}

// Resolve returns the editor of t. Unknown types get the generic editor with
// label, description and required.
func Resolve(t types.FieldType) Editor {
	return Editor{fieldType: t, controls: controlsFor(t)}
}

func (e Editor) FieldType() types.FieldType {
	return e.fieldType
}

// Controls lists the mutable attributes in display order
func (e Editor) Controls() []Control {
	out := make([]Control, len(e.controls))
	for i, c := range e.controls {
		c.Choices = slices.Clone(c.Choices)
		out[i] = c
	}
	return out
}

func (e Editor) control(name string) (Control, bool) {
	for _, c := range e.controls {
		if c.Name == name {
			return c, true
		}
	}
	return Control{}, false
}

// Apply returns a new field with the change applied. The input is never
// modified.
func (e Editor) Apply(field model.Field, change Change) (model.Field, error) {
	if field.Type != e.fieldType {
		return model.Field{}, goerr.Wrap(ErrTypeMismatch, "cannot apply change",
			goerr.V(FieldTypeKey, field.Type),
			goerr.V("editor_type", e.fieldType))
	}

	ctrl, ok := e.control(change.Control)
	if !ok {
		return model.Field{}, goerr.Wrap(ErrUnknownControl, "cannot apply change",
			goerr.V(FieldTypeKey, field.Type),
			goerr.V(ControlKey, change.Control))
	}

	if ctrl.Kind == KindSelect {
		s, err := asString(change.Value)
		if err != nil || !slices.Contains(ctrl.Choices, s) {
			return model.Field{}, goerr.Wrap(ErrInvalidValue, "value is not one of the choices",
				goerr.V(ControlKey, ctrl.Name),
				goerr.V(ValueKey, change.Value))
		}
	}

	out := field.Clone()
	var err error
	switch ctrl.Name {
	case ControlLabel:
		out.Label, err = asString(change.Value)
	case ControlDescription:
		out.Description, err = asString(change.Value)
	case ControlPlaceholder:
		out.Placeholder, err = asString(change.Value)
	case ControlRequired:
		out.Required, err = asBool(change.Value)
	default:
		var k model.Kind
		k, err = applyToKind(out.Kind(), ctrl.Name, change.Value)
		if err == nil {
			out = out.WithKind(k)
		}
	}
	if err != nil {
		return model.Field{}, goerr.Wrap(err, "cannot apply change",
			goerr.V(FieldIDKey, field.ID),
			goerr.V(ControlKey, ctrl.Name))
	}

	return out, nil
}

func applyToKind(k model.Kind, name string, v any) (model.Kind, error) {
	var err error

	switch k := k.(type) {
	case model.TextKind:
		err = applyLength(&k.LengthRules, name, v)
		return k, err

	case model.ParagraphKind:
		err = applyLength(&k.LengthRules, name, v)
		return k, err

	case model.NumberKind:
		switch name {
		case ControlMin:
			k.Min, err = asOptionalFloat(v)
		case ControlMax:
			k.Max, err = asOptionalFloat(v)
		}
		return k, err

	case model.DateTimeKind:
		switch name {
		case ControlEnableDate:
			k.EnableDate, err = asBool(v)
		case ControlEnableTime:
			k.EnableTime, err = asBool(v)
		}
		return k, err

	case model.ChoiceKind:
		switch name {
		case ControlOptions:
			k.Options, err = asOptions(v)
		case ControlAllowOther:
			k.AllowOther, err = asBool(v)
		case ControlMultiple:
			k.Multiple, err = asBool(v)
		}
		return k, err

	case model.MultipleChoiceKind:
		switch name {
		case ControlOptions:
			k.Options, err = asOptions(v)
		case ControlAllowOther:
			k.AllowOther, err = asBool(v)
		}
		return k, err

	case model.CheckboxesKind:
		k.Options, err = asOptions(v)
		return k, err

	case model.DropdownKind:
		k.Options, err = asOptions(v)
		return k, err

	case model.CheckboxKind:
		k.Text, err = asString(v)
		return k, err

	case model.DescriptionKind:
		k.Text, err = asString(v)
		return k, err

	case model.ImageKind:
		err = applyTextURL(&k.Text, &k.URL, name, v)
		return k, err

	case model.LinkKind:
		err = applyTextURL(&k.Text, &k.URL, name, v)
		return k, err

	case model.FormHeadingKind:
		err = applyHeading(&k.Heading, name, v)
		return k, err

	case model.SectionHeadingKind:
		err = applyHeading(&k.Heading, name, v)
		return k, err

	case model.SubHeadingKind:
		err = applyHeading(&k.Heading, name, v)
		return k, err

	case model.DividerKind:
		k.Style, err = asString(v)
		return k, err

	case model.SpacerKind:
		k.Height, err = asString(v)
		return k, err

	case model.SubmitKind:
		switch name {
		case ControlText:
			k.Text, err = asString(v)
		case ControlStyle:
			k.Style, err = asString(v)
		}
		return k, err

	case model.PageBreakKind:
		switch name {
		case ControlNextButtonText:
			k.NextButtonText, err = asString(v)
		case ControlPrevButtonText:
			k.PrevButtonText, err = asString(v)
		}
		return k, err

	case model.TextEditorKind, model.EmailKind, model.PhoneKind, model.SignatureKind, model.UnknownKind:
		// only the shared controls exist for these
	}

	return nil, goerr.Wrap(ErrUnknownControl, "control has no effect on field type",
		goerr.V(ControlKey, name),
		goerr.V(FieldTypeKey, k.FieldType()))
}

func applyLength(r *model.LengthRules, name string, v any) error {
	var err error
	switch name {
	case ControlMinLength:
		r.MinLength, err = asOptionalInt(v)
	case ControlMaxLength:
		r.MaxLength, err = asOptionalInt(v)
	}
	return err
}

func applyTextURL(text, url *string, name string, v any) error {
	var err error
	switch name {
	case ControlText:
		*text, err = asString(v)
	case ControlURL:
		*url, err = asString(v)
	}
	return err
}

func applyHeading(h *model.Heading, name string, v any) error {
	var err error
	switch name {
	case ControlText:
		h.Text, err = asString(v)
	case ControlSize:
		h.Size, err = asString(v)
	}
	return err
}
