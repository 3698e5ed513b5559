package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/editor"
	"github.com/secmon-lab/formflow/pkg/palette"
)

type fieldTypesResponse struct {
	Content []palette.Entry `json:"content"`
	Layout  []palette.Entry `json:"layout"`
}

type editorResponse struct {
	Type     types.FieldType  `json:"type"`
	Controls []editor.Control `json:"controls"`
}

func fieldTypesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, fieldTypesResponse{
			Content: palette.Content(),
			Layout:  palette.Layout(),
		})
	}
}

// fieldEditorHandler lists the property panel controls of a field type.
// Unknown types get the generic controls.
func fieldEditorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := types.FieldType(chi.URLParam(r, "type"))
		e := editor.Resolve(t)
		writeJSON(r.Context(), w, http.StatusOK, editorResponse{
			Type:     e.FieldType(),
			Controls: e.Controls(),
		})
	}
}
