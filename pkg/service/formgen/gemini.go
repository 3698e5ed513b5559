package formgen

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

const (
	DefaultModel           = "gemini-2.0-flash"
	DefaultTemperature     = 0.2
	DefaultTopP            = 0.8
	DefaultTopK            = 40
	DefaultMaxOutputTokens = 4096
)

var ErrEmptyReply = goerr.New("model returned an empty reply")

// ContentGenerator is the part of genai.Models used by GeminiBackend
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiParams are the sampling parameters sent with every request
type GeminiParams struct {
	Model           string
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

func DefaultGeminiParams() GeminiParams {
	return GeminiParams{
		Model:           DefaultModel,
		Temperature:     DefaultTemperature,
		TopP:            DefaultTopP,
		TopK:            DefaultTopK,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// GeminiBackend calls Gemini directly through genai. It accepts text and
// inline images.
type GeminiBackend struct {
	models ContentGenerator
	params GeminiParams
}

type GeminiOption func(*GeminiBackend)

func WithGeminiParams(p GeminiParams) GeminiOption {
	return func(b *GeminiBackend) {
		if p.Model != "" {
			b.params = p
		}
	}
}

func NewGeminiBackend(models ContentGenerator, opts ...GeminiOption) *GeminiBackend {
	b := &GeminiBackend{
		models: models,
		params: DefaultGeminiParams(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *GeminiBackend) Name() string {
	return "gemini:" + b.params.Model
}

func (b *GeminiBackend) config() *genai.GenerateContentConfig {
	threshold := genai.HarmBlockThresholdBlockMediumAndAbove
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(b.params.Temperature),
		TopP:             genai.Ptr(b.params.TopP),
		TopK:             genai.Ptr(b.params.TopK),
		MaxOutputTokens:  b.params.MaxOutputTokens,
		ResponseMIMEType: "application/json",
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: threshold},
			{Category: genai.HarmCategoryHateSpeech, Threshold: threshold},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: threshold},
			{Category: genai.HarmCategoryDangerousContent, Threshold: threshold},
		},
	}
}

func (b *GeminiBackend) Generate(ctx context.Context, req Request) (string, error) {
	var parts []*genai.Part
	if len(req.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image, req.MimeType))
	}
	parts = append(parts, genai.NewPartFromText(req.Instruction))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := b.models.GenerateContent(ctx, b.params.Model, contents, b.config())
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content", goerr.V(BackendKey, b.Name()))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", goerr.Wrap(ErrEmptyReply, "gemini", goerr.V(BackendKey, b.Name()))
	}
	return text, nil
}
