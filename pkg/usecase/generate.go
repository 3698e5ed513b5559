package usecase

import (
	"context"

	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/service/formgen"
)

// GenerateUseCase produces draft forms without storing them. The caller
// decides whether to save the result.
type GenerateUseCase struct {
	generator *formgen.Generator
}

func NewGenerateUseCase(generator *formgen.Generator) *GenerateUseCase {
	return &GenerateUseCase{generator: generator}
}

func (uc *GenerateUseCase) FromPrompt(ctx context.Context, prompt string) (*model.Form, error) {
	return uc.generator.Generate(ctx, formgen.Input{Prompt: prompt})
}

// FromImage fails only with formgen.ErrUnsupportedImage
func (uc *GenerateUseCase) FromImage(ctx context.Context, image []byte, mimeType, prompt string) (*model.Form, error) {
	return uc.generator.Generate(ctx, formgen.Input{
		Prompt:   prompt,
		Image:    image,
		MimeType: mimeType,
	})
}
