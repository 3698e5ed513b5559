package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/safe"
)

func formID(r *http.Request) types.FormID {
	return types.FormID(chi.URLParam(r, "id"))
}

func envelope(rec *model.FormRecord) model.FormEnvelope {
	return model.FormEnvelope{ID: rec.Form.ID, Data: rec.Form}
}

type formListResponse struct {
	Forms []*usecase.FormSummary `json:"forms"`
}

func listFormsHandler(uc *usecase.FormUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := uc.List(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, formListResponse{Forms: forms})
	}
}

func createFormHandler(uc *usecase.FormUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.FormEnvelope
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		rec, err := uc.Create(r.Context(), req)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, envelope(rec))
	}
}

func getFormHandler(uc *usecase.FormUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := uc.Get(r.Context(), formID(r))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, envelope(rec))
	}
}

func updateFormHandler(uc *usecase.FormUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.FormEnvelope
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		rec, err := uc.Update(r.Context(), formID(r), req)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, envelope(rec))
	}
}

func deleteFormHandler(uc *usecase.FormUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.Delete(r.Context(), formID(r)); err != nil {
			handleError(r.Context(), w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// readRaw reads a bounded raw body, used for form documents
func readRaw(r *http.Request) ([]byte, error) {
	data, truncated, err := safe.ReadAll(r.Body, maxJSONBody)
	if err != nil {
		return nil, goerr.Wrap(usecase.ErrInvalidInput, "failed to read body")
	}
	if truncated {
		return nil, goerr.Wrap(usecase.ErrInvalidInput, "request body too large")
	}
	return data, nil
}

func importFormHandler(uc *usecase.FormUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := readRaw(r)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		rec, err := uc.Import(r.Context(), data)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, envelope(rec))
	}
}

// writeFormDocument sends a pretty printed form document as a download
func writeFormDocument(w http.ResponseWriter, r *http.Request, id types.FormID, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+safeFileName(string(id))+`.json"`)
	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, data)
}

func exportFormHandler(uc *usecase.FormUseCase) http.HandlerFunc {
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

// safeFileName keeps characters that need no quoting in a
// Content-Disposition header
func safeFileName(name string) string {
	out := make([]rune, 0, len(name))
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "form"
	}
	return string(out)
}
