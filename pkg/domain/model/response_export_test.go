package model_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

func exportFixture() (*model.Form, []*model.FormResponse) {
	form := &model.Form{
		ID:    "f1",
		Title: "Event  Feedback",
		Fields: []model.Field{
			{ID: "agree", Type: types.FieldTypeCheckbox, Order: 2, Label: "Agree"},
			{ID: "name", Type: types.FieldTypeText, Order: 0, Label: "Name"},
			{ID: "heading", Type: types.FieldTypeFormHeading, Order: 1, Label: "Heading"},
			{ID: "tags", Type: types.FieldTypeCheckboxes, Order: 3, Label: "Tags"},
		},
	}
	responses := []*model.FormResponse{
		{
			ID:          "r1",
			FormID:      "f1",
			SubmittedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Data: map[types.FieldID]any{
				"name":  `Bob "the builder"`,
				"agree": true,
				"tags":  []any{"a", "b"},
			},
		},
		{
			ID:     "r2",
			FormID: "f1",
			Data: map[types.FieldID]any{
				"agree": false,
			},
		},
	}
	return form, responses
}

func TestWriteResponsesCSV(t *testing.T) {
	form, responses := exportFixture()

	var buf bytes.Buffer
	gt.NoError(t, model.WriteResponsesCSV(&buf, form, responses)).Required()

	want := "Name,Agree,Tags\n" +
		`"Bob ""the builder""",Yes,"a, b"` + "\n" +
		",No,\n"
	gt.Value(t, buf.String()).Equal(want)
}

func TestWriteResponsesJSON(t *testing.T) {
	form, responses := exportFixture()

	var buf bytes.Buffer
	gt.NoError(t, model.WriteResponsesJSON(&buf, form, responses)).Required()

	var out map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &out)).Required()
	gt.Map(t, out).HasKey("form")
	gt.Map(t, out).HasKey("responses")
	gt.Value(t, out["form"].(map[string]any)["title"]).Equal(any("Event  Feedback"))
	gt.Array(t, out["responses"].([]any)).Length(2)
}

func TestExportFileName(t *testing.T) {
	form, _ := exportFixture()
	gt.Value(t, model.ExportFileName(form, "csv")).Equal("Event_Feedback_responses.csv")
}
