package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/cli"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/service/formgen"
)

const formDocument = `{
  "id": "contact",
  "title": "Contact",
  "fields": [
    {"id": "name", "type": "text", "order": 0, "label": "Name", "required": true},
    {"id": "send", "type": "submit", "order": 1, "label": "Submit Button"}
  ]
}`

func TestRun_GenerateCommand(t *testing.T) {
	t.Run("prompt without backend writes the fallback form", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "form.json")
		err := cli.Run(context.Background(), []string{
			"formflow", "generate",
			"--prompt", "event registration",
			"--gemini-project", "",
			"--output", out,
		}, "test")
		gt.NoError(t, err).Required()

		data, err := os.ReadFile(out)
		gt.NoError(t, err).Required()
		form, err := model.ImportForm(data)
		gt.NoError(t, err).Required()
		gt.Value(t, form.Title).Equal(formgen.FallbackTitle)
		gt.Value(t, form.Description).Equal("event registration")
	})

	t.Run("requires prompt or image", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{"formflow", "generate", "--gemini-project", ""}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("unsupported image", func(t *testing.T) {
		img := filepath.Join(t.TempDir(), "doc.txt")
		gt.NoError(t, os.WriteFile(img, []byte("plain text is not an image"), 0600)).Required()

		err := cli.Run(context.Background(), []string{
			"formflow", "generate", "--image", img, "--gemini-project", "",
		}, "test")
		gt.Error(t, err).Is(formgen.ErrUnsupportedImage)
	})
}

func TestRun_ImportCommand(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid document", func(t *testing.T) {
		path := filepath.Join(dir, "contact.json")
		gt.NoError(t, os.WriteFile(path, []byte(formDocument), 0600)).Required()

		err := cli.Run(context.Background(), []string{
			"formflow", "import", "--file", path, "--repository-backend", "memory",
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("broken document", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		gt.NoError(t, os.WriteFile(path, []byte(`{"title": "no fields"`), 0600)).Required()

		err := cli.Run(context.Background(), []string{
			"formflow", "import", "--file", path, "--repository-backend", "memory",
		}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("unknown owner", func(t *testing.T) {
		path := filepath.Join(dir, "contact.json")
		err := cli.Run(context.Background(), []string{
			"formflow", "import", "--file", path,
			"--repository-backend", "memory",
			"--owner-email", "nobody@example.com",
		}, "test")
		gt.Value(t, err).NotNil()
	})
}

func TestRun_ExportCommand(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"formflow", "export", "--form-id", "missing", "--repository-backend", "memory",
	}, "test")
	gt.Value(t, err).NotNil()
}

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("")
	gt.Array(t, cfg.Collections).Length(2)
	gt.Value(t, cfg.Collections[0].Name).Equal("forms")
	gt.Value(t, cfg.Collections[1].Name).Equal("responses")
	gt.Value(t, cfg.Collections[1].Indexes[0].Fields[0].Path).Equal("form_id")
	gt.NoError(t, cfg.Validate())

	prefixed := cli.GetIndexConfig("test")
	gt.Value(t, prefixed.Collections[0].Name).Equal("test_forms")
	gt.NoError(t, prefixed.Validate())
}
