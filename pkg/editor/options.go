package editor

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slugify derives an option value from its label. Distinct labels may map to
// the same value; callers accept that.
func Slugify(label string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(label), "_")
}

func optionsOf(k model.Kind) ([]model.Option, bool) {
	switch k := k.(type) {
	case model.ChoiceKind:
		return slices.Clone(k.Options), true
	case model.MultipleChoiceKind:
		return slices.Clone(k.Options), true
	case model.CheckboxesKind:
		return slices.Clone(k.Options), true
	case model.DropdownKind:
		return slices.Clone(k.Options), true
	}
	return nil, false
}

func withOptions(k model.Kind, opts []model.Option) model.Kind {
	switch k := k.(type) {
	case model.ChoiceKind:
		k.Options = opts
		return k
	case model.MultipleChoiceKind:
		k.Options = opts
		return k
	case model.CheckboxesKind:
		k.Options = opts
		return k
	case model.DropdownKind:
		k.Options = opts
		return k
	}
	return k
}

func fieldOptions(field model.Field) (model.Kind, []model.Option, error) {
	k := field.Kind()
	opts, ok := optionsOf(k)
	if !ok {
		return nil, nil, goerr.Wrap(ErrNoOptions, "field has no options",
			goerr.V(FieldIDKey, field.ID),
			goerr.V(FieldTypeKey, field.Type))
	}
	return k, opts, nil
}

// AddOption appends "Option N+1" to a choice-like field
func AddOption(field model.Field) (model.Field, error) {
	k, opts, err := fieldOptions(field)
	if err != nil {
		return model.Field{}, err
	}

	n := len(opts) + 1
	opts = append(opts, model.Option{
		Label: fmt.Sprintf("Option %d", n),
		Value: fmt.Sprintf("option_%d", n),
	})
	return field.WithKind(withOptions(k, opts)), nil
}

// EditOption relabels the option at index and recomputes its value
func EditOption(field model.Field, index int, label string) (model.Field, error) {
	k, opts, err := fieldOptions(field)
	if err != nil {
		return model.Field{}, err
	}
	if index < 0 || index >= len(opts) {
		return model.Field{}, goerr.Wrap(ErrOptionIndex, "cannot edit option",
			goerr.V(FieldIDKey, field.ID),
			goerr.V(IndexKey, index))
	}

	opts[index] = model.Option{Label: label, Value: Slugify(label)}
	return field.WithKind(withOptions(k, opts)), nil
}

// RemoveOption drops the option at index. A field always keeps at least one
// option.
func RemoveOption(field model.Field, index int) (model.Field, error) {
	k, opts, err := fieldOptions(field)
	if err != nil {
		return model.Field{}, err
	}
	if len(opts) <= 1 {
		return model.Field{}, goerr.Wrap(ErrLastOption, "cannot remove option", goerr.V(FieldIDKey, field.ID))
	}
	if index < 0 || index >= len(opts) {
		return model.Field{}, goerr.Wrap(ErrOptionIndex, "cannot remove option",
			goerr.V(FieldIDKey, field.ID),
			goerr.V(IndexKey, index))
	}

	opts = slices.Delete(opts, index, index+1)
	return field.WithKind(withOptions(k, opts)), nil
}
