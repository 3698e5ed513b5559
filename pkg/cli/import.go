package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/cli/config"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdImport() *cli.Command {
	var file string
	var owner string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Form JSON document to import",
			Required:    true,
			Destination: &file,
		},
		ownerFlag(&owner),
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "import",
		Usage: "Validate a form JSON document and store it",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// #nosec G304 - path is expected to be provided by CLI argument
			data, err := os.ReadFile(file)
			if err != nil {
				return goerr.Wrap(err, "failed to read form document", goerr.V("path", file))
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			ctx, err = withOwner(ctx, repo, owner)
			if err != nil {
				return err
			}

			uc, err := usecase.New(repo)
			if err != nil {
				return err
			}
			defer func() {
				if err := uc.Shutdown(ctx); err != nil {
					logging.Default().Error("failed to shutdown use cases", "error", err.Error())
				}
			}()

			rec, err := uc.Form.Import(ctx, data)
			if err != nil {
				return goerr.Wrap(err, "failed to import form", goerr.V("path", file))
			}

			printFormSummary(stderr(c), "Imported form", &rec.Form)
			return nil
		},
	}
}
