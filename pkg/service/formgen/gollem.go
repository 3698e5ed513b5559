package formgen

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// GollemBackend runs text-only generation through a gollem JSON session
// with the instruction as system prompt
type GollemBackend struct {
	llm gollem.LLMClient
}

func NewGollemBackend(llm gollem.LLMClient) *GollemBackend {
	return &GollemBackend{llm: llm}
}

func (b *GollemBackend) Name() string {
	return "gollem"
}

func (b *GollemBackend) Generate(ctx context.Context, req Request) (string, error) {
	if len(req.Image) > 0 {
		return "", goerr.New("gollem backend does not accept images", goerr.V(MimeTypeKey, req.MimeType))
	}

	session, err := b.llm.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionSystemPrompt(req.Instruction),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = "Generate a general purpose contact form."
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(prompt)})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.Wrap(ErrEmptyReply, "gollem")
	}

	return strings.Join(resp.Texts, ""), nil
}
