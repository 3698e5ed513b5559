package model

import (
	"maps"
	"slices"
	"time"

	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// FormResponse is one end-user submission of a form
type FormResponse struct {
	ID          types.ResponseID      `json:"id"`
	FormID      types.FormID          `json:"formId"`
	SubmittedAt time.Time             `json:"submittedAt"`
	Data        map[types.FieldID]any `json:"data"`

	// RespondentID is set when the respondent was logged in. It is kept out
	// of exported payloads.
	RespondentID types.UserID `json:"-"`
}

// NewFormResponse creates a response with a fresh ID stamped now
func NewFormResponse(formID types.FormID, data map[types.FieldID]any, respondent types.UserID) *FormResponse {
	return &FormResponse{
		ID:           types.NewResponseID(),
		FormID:       formID,
		SubmittedAt:  time.Now().UTC(),
		Data:         cloneData(data),
		RespondentID: respondent,
	}
}

// Clone returns a deep copy of the response
func (r *FormResponse) Clone() *FormResponse {
	if r == nil {
		return nil
	}
	out := *r
	out.Data = cloneData(r.Data)
	return &out
}

func cloneData(data map[types.FieldID]any) map[types.FieldID]any {
	out := make(map[types.FieldID]any, len(data))
	for k, v := range data {
		switch x := v.(type) {
		case []string:
			out[k] = slices.Clone(x)
		case []any:
			out[k] = slices.Clone(x)
		case map[string]any:
			out[k] = maps.Clone(x)
		default:
			out[k] = v
		}
	}
	return out
}
