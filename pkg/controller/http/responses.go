package http

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/safe"
)

type submitRequest struct {
	Data map[types.FieldID]any `json:"data"`
}

type responseListResponse struct {
	Responses []*model.FormResponse `json:"responses"`
}

func submitResponseHandler(uc *usecase.ResponseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp, err := uc.Submit(r.Context(), formID(r), req.Data)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, resp)
	}
}

func listResponsesHandler(uc *usecase.ResponseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses, err := uc.List(r.Context(), formID(r))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, responseListResponse{Responses: responses})
	}
}

func getResponseHandler(uc *usecase.ResponseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.ResponseID(chi.URLParam(r, "responseId"))
		resp, err := uc.Get(r.Context(), formID(r), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

func exportResponsesHandler(uc *usecase.ResponseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := usecase.ExportFormat(r.URL.Query().Get("format"))

		// buffered so that a failure can still become a JSON error
		var buf bytes.Buffer
		res, err := uc.Export(r.Context(), formID(r), format, &buf)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.Header().Set("Content-Type", res.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+safeFileName(res.FileName)+`"`)
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, buf.Bytes())
	}
}
