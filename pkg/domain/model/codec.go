package model

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// ExportForm serialises the form with its fields in order
func ExportForm(form *Form) ([]byte, error) {
	out := form.Clone()
	out.Fields = out.SortedFields()
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal form", goerr.V(FormIDKey, form.ID))
	}
	return data, nil
}

// ImportForm parses a form document. It requires a non-empty string "id"
// and a "fields" array. Missing field IDs are assigned, orders are
// renumbered and missing settings take defaults. The caller's state is never
// touched; callers swap in the result only when err is nil.
func ImportForm(data []byte) (*Form, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, goerr.Wrap(ErrImportMalformed, err.Error())
	}

	var id string
	idRaw, ok := raw["id"]
	if !ok || json.Unmarshal(idRaw, &id) != nil || id == "" {
		return nil, goerr.Wrap(ErrImportMissingID, "invalid form import")
	}
	if err := types.FormID(id).Validate(); err != nil {
		return nil, goerr.Wrap(ErrImportMissingID, err.Error(), goerr.V(FormIDKey, id))
	}

	fieldsRaw, ok := raw["fields"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(fieldsRaw), []byte("[")) {
		return nil, goerr.Wrap(ErrImportFieldsNotArray, "invalid form import", goerr.V(FormIDKey, id))
	}

	var form Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, goerr.Wrap(ErrImportMalformed, err.Error(), goerr.V(FormIDKey, id))
	}

	if _, ok := raw["settings"]; !ok {
		form.Settings = DefaultSettings()
	}

	seen := make(map[types.FieldID]bool, len(form.Fields))
	for i := range form.Fields {
		if form.Fields[i].ID == "" {
			form.Fields[i].ID = types.NewFieldID()
		}
		if seen[form.Fields[i].ID] {
			return nil, goerr.Wrap(ErrDuplicateFieldID, "invalid form import",
				goerr.V(FormIDKey, id),
				goerr.V(FieldIDKey, form.Fields[i].ID))
		}
		seen[form.Fields[i].ID] = true
	}
	form.Fields = Renumber(form.Fields)

	return &form, nil
}
