package cli

import (
	"bytes"
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/cli/config"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const exportFormDocument = "form"

func cmdExport() *cli.Command {
	var formID string
	var format string
	var output string
	var owner string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "form-id",
			Usage:       "ID of the form to export",
			Required:    true,
			Destination: &formID,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "What to export: form (the form document), csv or json (its responses)",
			Value:       exportFormDocument,
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file (stdout when empty)",
			Destination: &output,
		},
		ownerFlag(&owner),
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export a form document or its responses",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
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

			id := types.FormID(formID)
			if format == exportFormDocument {
				data, err := uc.Form.Export(ctx, id)
				if err != nil {
					return goerr.Wrap(err, "failed to export form", goerr.V("form_id", formID))
				}
				return writeOutput(c, output, data)
			}

			var buf bytes.Buffer
			if _, err := uc.Response.Export(ctx, id, usecase.ExportFormat(format), &buf); err != nil {
				return goerr.Wrap(err, "failed to export responses",
					goerr.V("form_id", formID),
					goerr.V("format", format))
			}
			return writeOutput(c, output, buf.Bytes())
		},
	}
}
