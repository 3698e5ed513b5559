package formgen_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/service/formgen"
)

type fakeBackend struct {
	reply string
	err   error
	calls []formgen.Request
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Generate(ctx context.Context, req formgen.Request) (string, error) {
	b.calls = append(b.calls, req)
	return b.reply, b.err
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

// minimal 1x1 PNG header, enough for content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestExtractJSON(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "plain", input: `{"a":1}`, want: `{"a":1}`, ok: true},
		{name: "fenced", input: "```json\n{\"a\":{\"b\":2}}\n```", want: `{"a":{"b":2}}`, ok: true},
		{name: "braces in strings", input: `note {"t":"a } b","u":"\"{"} tail {"x":1}`, want: `{"t":"a } b","u":"\"{"}`, ok: true},
		{name: "unbalanced", input: `{"a":1`, ok: false},
		{name: "no object", input: `sorry, I cannot`, ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := formgen.ExtractJSON(tc.input)
			gt.Value(t, ok).Equal(tc.ok)
			gt.Value(t, got).Equal(tc.want)
		})
	}
}

func TestGenerateFromText(t *testing.T) {
	backend := &fakeBackend{reply: "Here you go:\n" + `{
		"title": "Contact",
		"fields": [
			{"id": "name", "type": "text", "label": "Name", "order": 7},
			{"id": "name", "type": "email", "label": "Email", "order": 3},
			{"type": "hologram", "label": "Unknown"},
			{"type": "submit", "label": "Submit", "config": {"text": "Send"}}
		]
	}`}
	gen := formgen.New(formgen.WithTextBackend(backend), formgen.WithIDGenerator(sequentialIDs()))

	form, err := gen.Generate(context.Background(), formgen.Input{Prompt: "a contact form"})
	gt.NoError(t, err).Required()

	gt.Array(t, backend.calls).Length(1)
	gt.String(t, backend.calls[0].Instruction).Contains("User Prompt: a contact form")
	gt.Value(t, backend.calls[0].Image).Nil()

	gt.Value(t, form.ID).Equal(types.FormID("gen-1"))
	gt.Value(t, form.Title).Equal("Contact")
	gt.Value(t, form.Settings).Equal(model.DefaultSettings())

	gt.Array(t, form.Fields).Length(4)
	gt.Value(t, form.Fields[0].ID).Equal(types.FieldID("name"))
	gt.Value(t, form.Fields[1].ID).Equal(types.FieldID("gen-2"))
	gt.Value(t, form.Fields[2].ID).Equal(types.FieldID("gen-3"))
	gt.Value(t, form.Fields[3].ID).Equal(types.FieldID("gen-4"))

	// unrecognised types survive and fall back at render time
	gt.Value(t, form.Fields[2].Type).Equal(types.FieldType("hologram"))
	gt.Value(t, form.Fields[2].Label).Equal("Unknown")
	_, unknown := form.Fields[2].Kind().(model.UnknownKind)
	gt.Bool(t, unknown).True()
	for i, f := range form.Fields {
		gt.Value(t, f.Order).Equal(i)
	}
	gt.NoError(t, form.CheckOrder())
}

func TestGenerateKeepsModelValues(t *testing.T) {
	backend := &fakeBackend{reply: `{"id":"survey","title":"","settings":{"requiresLogin":true,"confirmationMessage":"ok","allowMultipleSubmissions":false},"fields":[]}`}
	gen := formgen.New(formgen.WithTextBackend(backend))

	form, err := gen.Generate(context.Background(), formgen.Input{Prompt: "survey"})
	gt.NoError(t, err).Required()
	gt.Value(t, form.ID).Equal(types.FormID("survey"))
	gt.Value(t, form.Title).Equal(formgen.FallbackTitle)
	gt.Bool(t, form.Settings.RequiresLogin).True()
	gt.Array(t, form.Fields).Length(0)
}

func TestGenerateFallback(t *testing.T) {
	testCases := []struct {
		name    string
		backend *fakeBackend
		input   formgen.Input
		title   string
		desc    string
	}{
		{
			name:    "unparseable reply",
			backend: &fakeBackend{reply: "I cannot help with that"},
			input:   formgen.Input{Prompt: "a form"},
			title:   formgen.FallbackTitle,
			desc:    "a form",
		},
		{
			name:    "wrong shape",
			backend: &fakeBackend{reply: `{"fields": "none"}`},
			input:   formgen.Input{Prompt: "a form"},
			title:   formgen.FallbackTitle,
			desc:    "a form",
		},
		{
			name:    "backend error",
			backend: &fakeBackend{err: goerr.New("quota exceeded")},
			input:   formgen.Input{Prompt: "a form"},
			title:   formgen.FallbackTitle,
			desc:    "a form",
		},
		{
			name:    "image backend error",
			backend: &fakeBackend{err: goerr.New("quota exceeded")},
			input:   formgen.Input{Prompt: "scan", Image: pngBytes, MimeType: "image/png"},
			title:   formgen.FallbackImageTitle,
			desc:    "scan",
		},
		{
			name:    "image without prompt",
			backend: &fakeBackend{err: goerr.New("quota exceeded")},
			input:   formgen.Input{Image: pngBytes, MimeType: "image/png"},
			title:   formgen.FallbackImageTitle,
			desc:    formgen.FallbackImageDescription,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gen := formgen.New(
				formgen.WithTextBackend(tc.backend),
				formgen.WithImageBackend(tc.backend),
			)
			form, err := gen.Generate(context.Background(), tc.input)
			gt.NoError(t, err).Required()

			gt.Value(t, form.Title).Equal(tc.title)
			gt.Value(t, form.Description).Equal(tc.desc)
			gt.Array(t, form.Fields).Length(4)
			gt.Value(t, form.Fields[0].Type).Equal(types.FieldTypeFormHeading)
			gt.Value(t, *form.Fields[0].Config.Text).Equal("Generated Form from Image")
			gt.Value(t, form.Fields[1].Label).Equal("Name")
			gt.Bool(t, form.Fields[1].Required).True()
			gt.Value(t, form.Fields[2].Type).Equal(types.FieldTypeEmail)
			gt.Value(t, form.Fields[2].Placeholder).Equal("Enter your email")
			gt.Value(t, form.Fields[3].Type).Equal(types.FieldTypeSubmit)
			gt.NoError(t, form.CheckOrder())
		})
	}
}

func TestGenerateFallbackHasFreshIDs(t *testing.T) {
	gen := formgen.New()
	a, err := gen.Generate(context.Background(), formgen.Input{Prompt: "x"})
	gt.NoError(t, err).Required()
	b, err := gen.Generate(context.Background(), formgen.Input{Prompt: "x"})
	gt.NoError(t, err).Required()

	gt.Value(t, a.ID).NotEqual(b.ID)
	gt.Value(t, a.Fields[1].ID).NotEqual(b.Fields[1].ID)
	gt.Bool(t, gen.Available()).False()
}

func TestGenerateImage(t *testing.T) {
	text := &fakeBackend{reply: `{"title":"text"}`}
	image := &fakeBackend{reply: `{"title":"From scan","fields":[]}`}
	gen := formgen.New(formgen.WithTextBackend(text), formgen.WithImageBackend(image))

	t.Run("declared type", func(t *testing.T) {
		form, err := gen.Generate(context.Background(), formgen.Input{Image: pngBytes, MimeType: "image/png"})
		gt.NoError(t, err).Required()
		gt.Value(t, form.Title).Equal("From scan")
		gt.Value(t, image.calls[len(image.calls)-1].MimeType).Equal("image/png")
	})

	t.Run("sniffed type", func(t *testing.T) {
		_, err := gen.Generate(context.Background(), formgen.Input{Image: pngBytes})
		gt.NoError(t, err).Required()
		gt.Value(t, image.calls[len(image.calls)-1].MimeType).Equal("image/png")
	})

	t.Run("heic accepted", func(t *testing.T) {
		_, err := gen.Generate(context.Background(), formgen.Input{Image: []byte("...."), MimeType: "image/heic"})
		gt.NoError(t, err)
	})

	t.Run("unsupported", func(t *testing.T) {
		before := len(image.calls)
		_, err := gen.Generate(context.Background(), formgen.Input{Image: []byte("GIF89a......"), MimeType: "image/gif"})
		gt.Error(t, err).Is(formgen.ErrUnsupportedImage)
		gt.String(t, formgen.ErrUnsupportedImage.Error()).Equal("The image format is not supported. Please try a different image or format (JPG or PNG recommended).")
		gt.Array(t, image.calls).Length(before)
	})

	t.Run("unsupported sniffed", func(t *testing.T) {
		_, err := gen.Generate(context.Background(), formgen.Input{Image: []byte("plain text, not an image")})
		gt.Error(t, err).Is(formgen.ErrUnsupportedImage)
	})

	gt.Array(t, text.calls).Length(0)
}

func TestBuildInstruction(t *testing.T) {
	gt.String(t, formgen.BuildInstruction("")).Contains(`"fields"`)
	gt.Bool(t, len(formgen.BuildInstruction("")) < len(formgen.BuildInstruction("x"))).True()
}
