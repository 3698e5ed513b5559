package errutil_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/utils/errutil"
)

func TestHandleHTTPWritesJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("form not found", goerr.V("form_id", "f1")), http.StatusNotFound)

	gt.Value(t, w.Code).Equal(http.StatusNotFound)
	gt.String(t, w.Header().Get("Content-Type")).Equal("application/json")

	var body map[string]string
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
	gt.Value(t, body["error"]).Equal("form not found")
}

func TestHandleReturnsSameError(t *testing.T) {
	err := goerr.New("boom")
	gt.Value(t, errutil.Handle(context.Background(), err, "failed")).Equal(err)
	gt.Value(t, errutil.Handle(context.Background(), nil, "failed")).Nil()
}
