package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/formflow/pkg/service/formgen"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// Gemini holds configuration for the form generation backends
type Gemini struct {
	projectID string
	location  string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "Generation",
			Sources:     cli.EnvVars("FORMFLOW_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Category:    "Generation",
			Sources:     cli.EnvVars("FORMFLOW_GEMINI_LOCATION"),
			Destination: &g.location,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
	}
}

// Configure creates the form generator. Without a project ID the generator
// has no backend and every request yields the fallback form.
func (g *Gemini) Configure(ctx context.Context, params formgen.GeminiParams) (*formgen.Generator, error) {
	if g.projectID == "" {
		logging.Default().Info("Gemini project not configured, form generation returns the fallback form")
		return formgen.New(), nil
	}

	llm, err := gemini.New(ctx, g.projectID, g.location,
		gemini.WithModel(params.Model),
		gemini.WithTemperature(params.Temperature),
		gemini.WithTopP(params.TopP),
		gemini.WithTopK(params.TopK),
		gemini.WithMaxTokens(params.MaxOutputTokens),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  g.projectID,
		Location: g.location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	logging.Default().Info("Gemini form generation enabled",
		"project_id", g.projectID,
		"location", g.location,
		"model", params.Model)

	return formgen.New(
		formgen.WithTextBackend(formgen.NewGollemBackend(llm)),
		formgen.WithImageBackend(formgen.NewGeminiBackend(client.Models, formgen.WithGeminiParams(params))),
	), nil
}
