package cli

import (
	"context"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/cli/config"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/service/formgen"
	"github.com/urfave/cli/v3"
)

func cmdGenerate() *cli.Command {
	var prompt string
	var imagePath string
	var output string
	var appCfg config.AppConfig
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "prompt",
			Aliases:     []string{"p"},
			Usage:       "Description of the form to generate",
			Destination: &prompt,
		},
		&cli.StringFlag{
			Name:        "image",
			Aliases:     []string{"i"},
			Usage:       "Path to an image of a paper or screenshot form",
			Destination: &imagePath,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file for the form JSON (stdout when empty)",
			Destination: &output,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   "Generate a form document from a prompt or an image",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			input := formgen.Input{Prompt: strings.TrimSpace(prompt)}
			if imagePath != "" {
				// #nosec G304 - path is expected to be provided by CLI argument
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return goerr.Wrap(err, "failed to read image", goerr.V("path", imagePath))
				}
				input.Image = data
			}
			if input.Prompt == "" && !input.HasImage() {
				return goerr.New("either --prompt or --image is required")
			}

			if err := appCfg.Load(); err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}
			generator, err := geminiCfg.Configure(ctx, appCfg.GeminiParams())
			if err != nil {
				return err
			}

			form, err := generator.Generate(ctx, input)
			if err != nil {
				return goerr.Wrap(err, "failed to generate form")
			}

			data, err := model.ExportForm(form)
			if err != nil {
				return goerr.Wrap(err, "failed to encode form")
			}
			if err := writeOutput(c, output, data); err != nil {
				return err
			}

			printFormSummary(stderr(c), "Generated form", form)
			return nil
		},
	}
}
