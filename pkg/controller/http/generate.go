package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/service/asset"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/safe"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	FormData *model.Form `json:"formData"`
}

func generateFormHandler(uc *usecase.GenerateUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		form, err := uc.FromPrompt(r.Context(), strings.TrimSpace(req.Prompt))
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, generateResponse{FormData: form})
	}
}

// uploadedFile reads the named multipart file of r
func uploadedFile(w http.ResponseWriter, r *http.Request, name string) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return nil, "", goerr.Wrap(usecase.ErrInvalidInput, "invalid multipart body: "+err.Error())
	}

	file, header, err := r.FormFile(name)
	if err != nil {
		return nil, "", goerr.Wrap(usecase.ErrInvalidInput, "missing file", goerr.V("part", name))
	}
	defer safe.Close(r.Context(), file)

	data, truncated, err := safe.ReadAll(file, asset.MaxSize)
	if err != nil {
		return nil, "", goerr.Wrap(usecase.ErrInvalidInput, "failed to read file")
	}
	if truncated {
		return nil, "", goerr.Wrap(usecase.ErrAssetTooLarge, "upload", goerr.V(usecase.SizeKey, header.Size))
	}
	return data, header.Header.Get("Content-Type"), nil
}

func generateFormFromImageHandler(uc *usecase.GenerateUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image, mimeType, err := uploadedFile(w, r, "image")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		prompt := strings.TrimSpace(r.FormValue("prompt"))
		form, err := uc.FromImage(r.Context(), image, mimeType, prompt)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, generateResponse{FormData: form})
	}
}
