package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

func TestValidateValue(t *testing.T) {
	email := model.Field{ID: "e", Type: types.FieldTypeEmail}
	requiredText := model.Field{ID: "t", Type: types.FieldTypeText, Required: true}
	number := model.Field{
		ID:         "n",
		Type:       types.FieldTypeNumber,
		Validation: &model.Validation{Min: model.Ptr(0.0), Max: model.Ptr(100.0)},
	}
	heading := model.Field{ID: "h", Type: types.FieldTypeFormHeading, Required: true}
	when := model.Field{ID: "w", Type: types.FieldTypeDateTime}
	consent := model.Field{ID: "c", Type: types.FieldTypeCheckbox, Required: true}
	short := model.Field{
		ID:         "s",
		Type:       types.FieldTypeText,
		Validation: &model.Validation{MinLength: model.Ptr(2), MaxLength: model.Ptr(4)},
	}

	tests := []struct {
		name  string
		field model.Field
		value any
		want  string
	}{
		{name: "invalid email", field: email, value: "not-an-email", want: "Please enter a valid email address"},
		{name: "valid email", field: email, value: "a@b.co", want: ""},
		{name: "empty optional email", field: email, value: "", want: ""},
		{name: "required empty", field: requiredText, value: "", want: "This field is required"},
		{name: "required blank", field: requiredText, value: "   ", want: "This field is required"},
		{name: "required nil", field: requiredText, value: nil, want: "This field is required"},
		{name: "required filled", field: requiredText, value: "x", want: ""},
		{name: "number below min", field: number, value: -1.0, want: "Value must be at least 0"},
		{name: "number above max", field: number, value: 100.5, want: "Value must be at most 100"},
		{name: "number in range", field: number, value: 42.0, want: ""},
		{name: "number as text", field: number, value: "abc", want: "Please enter a valid number"},
		{name: "layout ignored", field: heading, value: nil, want: ""},
		{name: "unchecked consent", field: consent, value: false, want: "This field is required"},
		{name: "checked consent", field: consent, value: true, want: ""},
		{name: "too short", field: short, value: "a", want: "Must be at least 2 characters"},
		{name: "valid timestamp", field: when, value: "2024-05-01T10:30:00Z", want: ""},
		{name: "malformed timestamp", field: when, value: "tomorrow", want: "Please enter a valid date"},
		{name: "too long", field: short, value: "abcde", want: "Must be at most 4 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, model.ValidateValue(tt.field, tt.value)).Equal(tt.want)
		})
	}
}

func TestIsEmptyValue(t *testing.T) {
	gt.Bool(t, model.IsEmptyValue(nil)).True()
	gt.Bool(t, model.IsEmptyValue("")).True()
	gt.Bool(t, model.IsEmptyValue([]string{})).True()
	gt.Bool(t, model.IsEmptyValue([]any{})).True()
	gt.Bool(t, model.IsEmptyValue(false)).True()
	gt.Bool(t, model.IsEmptyValue(0.0)).False()
	gt.Bool(t, model.IsEmptyValue([]string{"a"})).False()
}

func TestValidateResponse(t *testing.T) {
	form := &model.Form{
		ID: "f1",
		Fields: []model.Field{
			{ID: "name", Type: types.FieldTypeText, Order: 0, Required: true},
			{ID: "color", Type: types.FieldTypeDropdown, Order: 1, Config: &model.Config{
				Options: []model.Option{{Label: "Red", Value: "red"}},
			}},
			{ID: "tags", Type: types.FieldTypeCheckboxes, Order: 2, Config: &model.Config{
				Options: []model.Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}},
			}},
			{ID: "when", Type: types.FieldTypeDateTime, Order: 3},
			{ID: "heading", Type: types.FieldTypeFormHeading, Order: 4},
		},
	}

	t.Run("valid", func(t *testing.T) {
		errs, err := model.ValidateResponse(form, map[types.FieldID]any{
			"name":  "Alice",
			"color": "red",
			"tags":  []any{"a", "b"},
			"when":  "2024-01-02T03:04:05Z",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, len(errs)).Equal(0)
	})

	t.Run("field errors", func(t *testing.T) {
		errs, err := model.ValidateResponse(form, map[types.FieldID]any{
			"color": "blue",
			"tags":  []any{"a", 1},
			"when":  "yesterday",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, errs["name"]).Equal("This field is required")
		gt.Value(t, errs["color"]).Equal("Please select a valid option")
		gt.Value(t, errs["tags"]).Equal("Invalid value")
		gt.Value(t, errs["when"]).Equal("Please enter a valid date")
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := model.ValidateResponse(form, map[types.FieldID]any{"name": "A", "ghost": "x"})
		gt.Error(t, err).Is(model.ErrUnknownField)
	})

	t.Run("layout key is unknown", func(t *testing.T) {
		_, err := model.ValidateResponse(form, map[types.FieldID]any{"name": "A", "heading": "x"})
		gt.Error(t, err).Is(model.ErrUnknownField)
	})
}
