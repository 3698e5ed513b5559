package model

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFileName returns "<title with whitespace as _>_responses.<ext>"
func ExportFileName(form *Form, ext string) string {
	title := whitespaceRun.ReplaceAllString(strings.TrimSpace(form.Title), "_")
	if title == "" {
		title = "form"
	}
	return title + "_responses." + ext
}

// WriteResponsesCSV writes one row per response. The header holds the labels
// of the content fields in form order.
func WriteResponsesCSV(w io.Writer, form *Form, responses []*FormResponse) error {
	var columns []Field
	for _, f := range form.SortedFields() {
		if f.IsContent() {
			columns = append(columns, f)
		}
	}

	cw := csv.NewWriter(w)
	header := make([]string, len(columns))
	for i, f := range columns {
		header[i] = f.Label
	}
	if err := cw.Write(header); err != nil {
		return goerr.Wrap(err, "failed to write CSV header")
	}

	for _, resp := range responses {
		row := make([]string, len(columns))
		for i, f := range columns {
			row[i] = csvCell(resp.Data[f.ID])
		}
		if err := cw.Write(row); err != nil {
			return goerr.Wrap(err, "failed to write CSV row", goerr.V("response_id", resp.ID))
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush CSV")
	}
	return nil
}

func csvCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case string:
		return x
	case float64:
		return formatNumber(x)
	default:
		if items, ok := ToStrings(v); ok {
			return strings.Join(items, ", ")
		}
		return fmt.Sprint(v)
	}
}

type responsesExport struct {
	Form struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"form"`
	Responses []*FormResponse `json:"responses"`
}

// WriteResponsesJSON writes {form: {id, title, description}, responses}
func WriteResponsesJSON(w io.Writer, form *Form, responses []*FormResponse) error {
	var out responsesExport
	out.Form.ID = form.ID.String()
	out.Form.Title = form.Title
	out.Form.Description = form.Description
	out.Responses = responses
	if out.Responses == nil {
		out.Responses = []*FormResponse{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return goerr.Wrap(err, "failed to encode responses", goerr.V(FormIDKey, form.ID))
	}
	return nil
}
