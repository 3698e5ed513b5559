// Package formgen turns a natural language description or a picture of a
// paper form into a form document using a generative model.
package formgen

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
)

var (
	// ErrUnsupportedImage is the only generation error returned to callers.
	// Every other failure produces the fallback form.
	ErrUnsupportedImage = goerr.New("The image format is not supported. Please try a different image or format (JPG or PNG recommended).")

	ErrNoBackend = goerr.New("no generation backend configured")
)

const (
	MimeTypeKey = "mime_type"
	BackendKey  = "backend"
	ReplyKey    = "reply"
)

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// Input is one generation request. Image is optional; Prompt adds context
// when an image is given.
type Input struct {
	Prompt   string
	Image    []byte
	MimeType string
}

func (x Input) HasImage() bool {
	return len(x.Image) > 0
}

type Generator struct {
	text  Backend
	image Backend
	newID func() string
}

type Option func(*Generator)

// WithTextBackend sets the backend used for prompt-only requests
func WithTextBackend(b Backend) Option {
	return func(g *Generator) {
		g.text = b
	}
}

// WithImageBackend sets the backend used when an image is attached
func WithImageBackend(b Backend) Option {
	return func(g *Generator) {
		g.image = b
	}
}

// WithIDGenerator replaces the id source for forms and fields
func WithIDGenerator(fn func() string) Option {
	return func(g *Generator) {
		g.newID = fn
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Available reports whether any backend is configured
func (g *Generator) Available() bool {
	return g.text != nil || g.image != nil
}

// Generate returns a form for the input. Model failures and unparseable
// replies yield the fallback form; only an unsupported image is an error.
func (g *Generator) Generate(ctx context.Context, input Input) (*model.Form, error) {
	logger := logging.From(ctx)

	req := Request{
		Instruction: BuildInstruction(input.Prompt),
		Prompt:      input.Prompt,
	}
	backend := g.text

	if input.HasImage() {
		mimeType, err := imageMimeType(input)
		if err != nil {
			return nil, err
		}
		req.Image = input.Image
		req.MimeType = mimeType
		backend = g.image
	}

	if backend == nil {
		logger.Warn("generation backend is not configured, using fallback form", "image", input.HasImage())
		return g.fallback(input), nil
	}

	reply, err := backend.Generate(ctx, req)
	if err != nil {
		logger.Error("form generation failed, using fallback form",
			"error", goerr.Wrap(err, "generate form", goerr.V(BackendKey, backend.Name())))
		return g.fallback(input), nil
	}

	form, err := g.parse(reply)
	if err != nil {
		logger.Warn("failed to parse generated form, using fallback form",
			"error", err, "backend", backend.Name())
		return g.fallback(input), nil
	}

	logger.Info("form generated",
		"backend", backend.Name(),
		"form_id", form.ID,
		"fields", len(form.Fields))
	return form, nil
}

// imageMimeType resolves the declared or sniffed content type and checks it
// against the formats the models accept
func imageMimeType(input Input) (string, error) {
	mimeType := strings.ToLower(strings.TrimSpace(input.MimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(input.Image)
		if i := strings.Index(mimeType, ";"); i >= 0 {
			mimeType = mimeType[:i]
		}
	}

	if !supportedImageTypes[mimeType] {
		return "", goerr.Wrap(ErrUnsupportedImage, "unsupported image", goerr.V(MimeTypeKey, mimeType))
	}
	return mimeType, nil
}
