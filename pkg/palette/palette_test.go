package palette_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/palette"
)

func TestCatalogCoversEveryType(t *testing.T) {
	all := palette.All()
	gt.Array(t, all).Length(len(types.AllFieldTypes()))

	seen := make(map[types.FieldType]bool)
	for _, e := range all {
		gt.Bool(t, e.Type.IsValid()).True()
		gt.Bool(t, seen[e.Type]).False()
		seen[e.Type] = true
		gt.Value(t, e.Template.Type).Equal(e.Type)
		gt.Value(t, e.Template.Label).Equal(e.Label)
	}

	gt.Array(t, palette.Content()).Length(16)
	gt.Array(t, palette.Layout()).Length(7)
}

func TestLookup(t *testing.T) {
	testCases := []struct {
		name      string
		fieldType types.FieldType
		wantOK    bool
		wantLabel string
	}{
		{name: "text", fieldType: types.FieldTypeText, wantOK: true, wantLabel: "Short text"},
		{name: "date time", fieldType: types.FieldTypeDateTime, wantOK: true, wantLabel: "Date & Time"},
		{name: "page break", fieldType: types.FieldTypePageBreak, wantOK: true, wantLabel: "Page Break"},
		{name: "unknown", fieldType: "rating", wantOK: false},
		{name: "case sensitive", fieldType: "TEXT", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, ok := palette.Lookup(tc.fieldType)
			gt.Value(t, ok).Equal(tc.wantOK)
			gt.Value(t, e.Label).Equal(tc.wantLabel)
		})
	}
}

func TestInstantiate(t *testing.T) {
	t.Run("fresh id each time", func(t *testing.T) {
		a, err := palette.Instantiate(types.FieldTypeChoice)
		gt.NoError(t, err).Required()
		b, err := palette.Instantiate(types.FieldTypeChoice)
		gt.NoError(t, err).Required()

		gt.Value(t, a.ID).NotEqual(b.ID)
		gt.Array(t, a.Config.Options).Length(3)
		gt.Value(t, a.Config.Options[0].Value).Equal("option_1")
	})

	t.Run("templates are not shared", func(t *testing.T) {
		a, err := palette.Instantiate(types.FieldTypeDropdown)
		gt.NoError(t, err).Required()
		a.Config.Options[0].Label = "changed"

		e, ok := palette.Lookup(types.FieldTypeDropdown)
		gt.Bool(t, ok).True()
		gt.Value(t, e.Template.Config.Options[0].Label).Equal("Option 1")
	})

	t.Run("number defaults", func(t *testing.T) {
		f, err := palette.Instantiate(types.FieldTypeNumber)
		gt.NoError(t, err).Required()
		gt.Value(t, *f.Validation.Min).Equal(0.0)
		gt.Value(t, *f.Validation.Max).Equal(100.0)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := palette.Instantiate("rating")
		gt.Error(t, err).Is(palette.ErrUnknownFieldType)
	})
}
