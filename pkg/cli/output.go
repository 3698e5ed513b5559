package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/pager"
	"github.com/urfave/cli/v3"
)

var (
	labelColor = color.New(color.FgCyan, color.Bold)
	okColor    = color.New(color.FgGreen)
)

func stdout(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty or "-"
func writeOutput(c *cli.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		if _, err := stdout(c).Write(data); err != nil {
			return goerr.Wrap(err, "failed to write output")
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write output file", goerr.V("path", path))
	}
	return nil
}

// printFormSummary prints a short human readable description of form
func printFormSummary(w io.Writer, heading string, form *model.Form) {
	content := 0
	for _, f := range form.Fields {
		if f.IsContent() {
			content++
		}
	}

	_, _ = okColor.Fprintln(w, heading)
	_, _ = labelColor.Fprint(w, "  id:     ")
	_, _ = fmt.Fprintln(w, form.ID)
	_, _ = labelColor.Fprint(w, "  title:  ")
	_, _ = fmt.Fprintln(w, form.Title)
	_, _ = labelColor.Fprint(w, "  fields: ")
	_, _ = fmt.Fprintf(w, "%d (%d answerable)\n", len(form.Fields), content)
	_, _ = labelColor.Fprint(w, "  pages:  ")
	_, _ = fmt.Fprintln(w, len(pager.Paginate(form.Fields)))
}
