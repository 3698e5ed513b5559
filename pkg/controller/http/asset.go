package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/safe"
)

type uploadResponse struct {
	URL string `json:"url"`
}

func uploadAssetHandler(uc *usecase.AssetUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, contentType, err := uploadedFile(w, r, "file")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		url, err := uc.Upload(r.Context(), contentType, data)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, uploadResponse{URL: url})
	}
}

func getAssetHandler(uc *usecase.AssetUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, contentType, err := uc.Get(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, data)
	}
}
