package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/formflow/pkg/builder"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/editor"
	"github.com/secmon-lab/formflow/pkg/service/formgen"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/safe"
)

type addFieldRequest struct {
	Type types.FieldType `json:"type"`
}

type updateFieldRequest struct {
	Field model.Field `json:"field"`
}

type reorderRequest struct {
	IDs []types.FieldID `json:"ids"`
}

type moveRequest struct {
	Index int `json:"index"`
}

type fieldResponse struct {
	Field model.Field `json:"field"`
}

func fieldID(r *http.Request) types.FieldID {
	return types.FieldID(chi.URLParam(r, "fieldId"))
}

// builderRoutes mounts the editing session API of one form
func builderRoutes(uc *usecase.BuilderUseCase) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", builderStateHandler(uc))
		r.Patch("/", builderUpdateFormHandler(uc))
		r.Post("/fields", builderAddFieldHandler(uc))
		r.Put("/fields/{fieldId}", builderUpdateFieldHandler(uc))
		r.Delete("/fields/{fieldId}", builderDeleteFieldHandler(uc))
		r.Post("/fields/{fieldId}/edit", builderEditFieldHandler(uc))
		r.Post("/fields/{fieldId}/options", builderEditOptionsHandler(uc))
		r.Post("/fields/{fieldId}/move", builderMoveFieldHandler(uc))
		r.Post("/fields/{fieldId}/select", builderSelectFieldHandler(uc))
		r.Put("/order", builderReorderHandler(uc))
		r.Post("/import", builderImportHandler(uc))
		r.Get("/export", builderExportHandler(uc))
		r.Post("/generate", builderGenerateHandler(uc))
		r.Post("/save", builderSaveHandler(uc))
		r.Post("/revert", builderRevertHandler(uc))
		r.Get("/preview", builderPreviewHandler(uc))
	}
}

func writeState(w http.ResponseWriter, r *http.Request, st *usecase.BuilderState, err error) {
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, st)
}

func writeField(w http.ResponseWriter, r *http.Request, status int, f model.Field, err error) {
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, status, fieldResponse{Field: f})
}

func builderStateHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := uc.State(r.Context(), formID(r))
		writeState(w, r, st, err)
	}
}

func builderUpdateFormHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch builder.FormPatch
		if err := decodeJSON(r, &patch); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		st, err := uc.UpdateForm(r.Context(), formID(r), patch)
		writeState(w, r, st, err)
	}
}

func builderAddFieldHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addFieldRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		f, err := uc.AddField(r.Context(), formID(r), req.Type)
		writeField(w, r, http.StatusCreated, f, err)
	}
}

func builderUpdateFieldHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateFieldRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		// the path decides which field is replaced
		req.Field.ID = fieldID(r)
		f, err := uc.UpdateField(r.Context(), formID(r), req.Field)
		writeField(w, r, http.StatusOK, f, err)
	}
}

func builderDeleteFieldHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteField(r.Context(), formID(r), fieldID(r)); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func builderEditFieldHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var change editor.Change
		if err := decodeJSON(r, &change); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		f, err := uc.EditField(r.Context(), formID(r), fieldID(r), change)
		writeField(w, r, http.StatusOK, f, err)
	}
}

func builderEditOptionsHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var op usecase.OptionEdit
		if err := decodeJSON(r, &op); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		f, err := uc.EditOptions(r.Context(), formID(r), fieldID(r), op)
		writeField(w, r, http.StatusOK, f, err)
	}
}

func builderMoveFieldHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		st, err := uc.MoveField(r.Context(), formID(r), fieldID(r), req.Index)
		writeState(w, r, st, err)
	}
}

func builderSelectFieldHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.SelectField(r.Context(), formID(r), fieldID(r)); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		st, err := uc.State(r.Context(), formID(r))
		writeState(w, r, st, err)
	}
}

func builderReorderHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		st, err := uc.ReorderFields(r.Context(), formID(r), req.IDs)
		writeState(w, r, st, err)
	}
}

func builderImportHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := readRaw(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		st, err := uc.Import(r.Context(), formID(r), data)
		writeState(w, r, st, err)
	}
}

func builderExportHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := formID(r)
		data, err := uc.Export(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeFormDocument(w, r, id, data)
	}
}

func builderGenerateHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		st, err := uc.Generate(r.Context(), formID(r), formgen.Input{Prompt: req.Prompt})
		writeState(w, r, st, err)
	}
}

func builderSaveHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := uc.Save(r.Context(), formID(r))
		writeState(w, r, st, err)
	}
}

func builderRevertHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := uc.Revert(r.Context(), formID(r))
		writeState(w, r, st, err)
	}
}

func builderPreviewHandler(uc *usecase.BuilderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		html, err := uc.Preview(r.Context(), formID(r))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeHTML(w, r, http.StatusOK, html)
	}
}

func writeHTML(w http.ResponseWriter, r *http.Request, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, []byte(html))
}
