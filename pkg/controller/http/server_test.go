package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	server "github.com/secmon-lab/formflow/pkg/controller/http"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"github.com/secmon-lab/formflow/pkg/repository/memory"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"golang.org/x/crypto/bcrypt"
)

func newServer(t *testing.T, opts ...usecase.Option) (*server.Server, *usecase.UseCases) {
	t.Helper()
	repo := memory.New()
	opts = append([]usecase.Option{usecase.WithAutosaveDelay(10 * time.Millisecond)}, opts...)
	uc, err := usecase.New(repo, opts...)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		gt.NoError(t, uc.Shutdown(ctx))
	})

	srv, err := server.New(uc)
	gt.NoError(t, err).Required()
	return srv, uc
}

type call struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
	cookies []*http.Cookie
}

func do(t *testing.T, srv http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	switch v := c.body.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case []byte:
		body = bytes.NewReader(v)
	default:
		data, err := json.Marshal(v)
		gt.NoError(t, err).Required()
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &v)).Required()
	return v
}

func sampleForm(id types.FormID) model.Form {
	return model.Form{
		ID:       id,
		Title:    "Contact",
		Settings: model.DefaultSettings(),
		Fields: []model.Field{
			{ID: "name", Type: types.FieldTypeText, Order: 0, Label: "Name", Required: true},
			{ID: "email", Type: types.FieldTypeEmail, Order: 1, Label: "Email"},
			{ID: "send", Type: types.FieldTypeSubmit, Order: 2, Label: "Submit Button"},
		},
	}
}

func TestFormsAPI(t *testing.T) {
	srv, _ := newServer(t)

	w := do(t, srv, call{method: http.MethodPost, path: "/api/forms", body: model.FormEnvelope{ID: "contact", Data: sampleForm("contact")}})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	created := decode[model.FormEnvelope](t, w)
	gt.Value(t, created.ID).Equal(types.FormID("contact"))
	gt.Array(t, created.Data.Fields).Length(3)

	t.Run("get", func(t *testing.T) {
		w := do(t, srv, call{method: http.MethodGet, path: "/api/forms/contact"})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		got := decode[model.FormEnvelope](t, w)
		gt.Value(t, got.Data.Title).Equal("Contact")
	})

	t.Run("missing", func(t *testing.T) {
		w := do(t, srv, call{method: http.MethodGet, path: "/api/forms/nope"})
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
		body := decode[map[string]string](t, w)
		gt.String(t, body["error"]).Contains("form not found")
	})

	t.Run("duplicate", func(t *testing.T) {
		w := do(t, srv, call{method: http.MethodPost, path: "/api/forms", body: model.FormEnvelope{ID: "contact", Data: sampleForm("contact")}})
		gt.Value(t, w.Code).Equal(http.StatusConflict)
	})

	t.Run("malformed", func(t *testing.T) {
		w := do(t, srv, call{method: http.MethodPost, path: "/api/forms", body: []byte("{")})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("update", func(t *testing.T) {
		form := sampleForm("contact")
		form.Title = "Renamed"
		w := do(t, srv, call{method: http.MethodPut, path: "/api/forms/contact", body: model.FormEnvelope{ID: "contact", Data: form}})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, decode[model.FormEnvelope](t, w).Data.Title).Equal("Renamed")
	})

	t.Run("list", func(t *testing.T) {
		w := do(t, srv, call{method: http.MethodGet, path: "/api/forms"})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		body := decode[struct {
			Forms []usecase.FormSummary `json:"forms"`
		}](t, w)
		gt.Array(t, body.Forms).Length(1)
	})

	t.Run("export and delete", func(t *testing.T) {
		w := do(t, srv, call{method: http.MethodGet, path: "/api/forms/contact/export"})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.String(t, w.Header().Get("Content-Disposition")).Contains("contact.json")

		w = do(t, srv, call{method: http.MethodDelete, path: "/api/forms/contact"})
		gt.Value(t, w.Code).Equal(http.StatusNoContent)

		w = do(t, srv, call{method: http.MethodGet, path: "/api/forms/contact"})
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})
}

func TestResponsesAPI(t *testing.T) {
	srv, _ := newServer(t)
	w := do(t, srv, call{method: http.MethodPost, path: "/api/forms", body: model.FormEnvelope{ID: "contact", Data: sampleForm("contact")}})
	gt.Value(t, w.Code).Equal(http.StatusCreated)

	t.Run("rejected", func(t *testing.T) {
		w := do(t, srv, call{method: http.MethodPost, path: "/api/forms/contact/responses", body: map[string]any{
			"data": map[string]any{"email": "nope"},
		}})
		gt.Value(t, w.Code).Equal(http.StatusUnprocessableEntity)
		body := decode[struct {
			Fields map[string]string `json:"fields"`
		}](t, w)
		gt.Value(t, body.Fields["name"]).Equal(model.MsgRequired)
		gt.Value(t, body.Fields["email"]).Equal(model.MsgInvalidEmail)
	})

	t.Run("accepted and exported", func(t *testing.T) {
		w := do(t, srv, call{method: http.MethodPost, path: "/api/forms/contact/responses", body: map[string]any{
			"data": map[string]any{"name": "Carol", "email": "carol@example.com"},
		}})
		gt.Value(t, w.Code).Equal(http.StatusCreated)

		w = do(t, srv, call{method: http.MethodGet, path: "/api/forms/contact/responses"})
		gt.Value(t, w.Code).Equal(http.StatusOK)

		w = do(t, srv, call{method: http.MethodGet, path: "/api/forms/contact/responses/export?format=csv"})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.String(t, w.Header().Get("Content-Type")).Contains("text/csv")
		gt.String(t, w.Body.String()).Contains("Name,Email")
		gt.String(t, w.Body.String()).Contains("Carol,carol@example.com")
	})
}

func TestGenerateAPI(t *testing.T) {
	srv, _ := newServer(t)

	t.Run("prompt falls back without backend", func(t *testing.T) {
		w := do(t, srv, call{method: http.MethodPost, path: "/api/generate-form", body: map[string]string{"prompt": "job application"}})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		body := decode[struct {
			FormData model.Form `json:"formData"`
		}](t, w)
		gt.Value(t, body.FormData.Title).Equal("Generated Form")
		gt.Value(t, body.FormData.Description).Equal("job application")
	})

	t.Run("unsupported image", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("image", "doc.pdf")
		gt.NoError(t, err).Required()
		_, err = part.Write([]byte("%PDF-1.4 not an image"))
		gt.NoError(t, err).Required()
		gt.NoError(t, mw.WriteField("prompt", "scan")).Required()
		gt.NoError(t, mw.Close()).Required()

		w := do(t, srv, call{
			method:  http.MethodPost,
			path:    "/api/generate-form-from-image",
			body:    buf.Bytes(),
			headers: map[string]string{"Content-Type": mw.FormDataContentType()},
		})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		gt.String(t, decode[map[string]string](t, w)["error"]).Contains("JPG or PNG")
	})
}

func TestAssetsAPI(t *testing.T) {
	srv, _ := newServer(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "pixel.png")
	gt.NoError(t, err).Required()
	_, err = part.Write(png)
	gt.NoError(t, err).Required()
	gt.NoError(t, mw.Close()).Required()

	w := do(t, srv, call{
		method:  http.MethodPost,
		path:    "/api/assets",
		body:    buf.Bytes(),
		headers: map[string]string{"Content-Type": mw.FormDataContentType()},
	})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	u := decode[map[string]string](t, w)["url"]
	gt.String(t, u).Contains("/api/assets/")

	w = do(t, srv, call{method: http.MethodGet, path: u})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Value(t, w.Header().Get("Content-Type")).Equal("image/png")
	gt.Value(t, w.Body.Bytes()).Equal(png)

	w = do(t, srv, call{method: http.MethodGet, path: "/api/assets/unknown.png"})
	gt.Value(t, w.Code).Equal(http.StatusNotFound)
}

func TestBuilderAPI(t *testing.T) {
	srv, uc := newServer(t)

	w := do(t, srv, call{method: http.MethodGet, path: "/api/builder/draft"})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	st := decode[usecase.BuilderState](t, w)
	gt.Value(t, st.Form.Title).Equal(model.DefaultFormTitle)

	w = do(t, srv, call{method: http.MethodPost, path: "/api/builder/draft/fields", body: map[string]string{"type": "email"}})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	added := decode[struct {
		Field model.Field `json:"field"`
	}](t, w).Field
	gt.Value(t, added.Type).Equal(types.FieldTypeEmail)

	w = do(t, srv, call{
		method: http.MethodPost,
		path:   "/api/builder/draft/fields/" + string(added.ID) + "/edit",
		body:   map[string]any{"control": "label", "value": "Work email"},
	})
	gt.Value(t, w.Code).Equal(http.StatusOK)

	w = do(t, srv, call{method: http.MethodPost, path: "/api/builder/draft/fields", body: map[string]string{"type": "rating"}})
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)

	w = do(t, srv, call{method: http.MethodPost, path: "/api/builder/draft/save"})
	gt.Value(t, w.Code).Equal(http.StatusOK)

	rec, err := uc.Form.Get(context.Background(), "draft")
	gt.NoError(t, err).Required()
	gt.Value(t, rec.Form.Fields[0].Label).Equal("Work email")

	w = do(t, srv, call{method: http.MethodGet, path: "/api/builder/draft/preview"})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Header().Get("Content-Type")).Contains("text/html")
	gt.String(t, w.Body.String()).Contains("Work email")
}

func TestFieldTypesAPI(t *testing.T) {
	srv, _ := newServer(t)

	w := do(t, srv, call{method: http.MethodGet, path: "/api/field-types"})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	body := decode[struct {
		Content []map[string]any `json:"content"`
		Layout  []map[string]any `json:"layout"`
	}](t, w)
	gt.Bool(t, len(body.Content) > 0).True()
	gt.Bool(t, len(body.Layout) > 0).True()

	w = do(t, srv, call{method: http.MethodGet, path: "/api/field-types/number/editor"})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`"min"`)
}

func TestFillPages(t *testing.T) {
	srv, uc := newServer(t)
	w := do(t, srv, call{method: http.MethodPost, path: "/api/forms", body: model.FormEnvelope{ID: "contact", Data: sampleForm("contact")}})
	gt.Value(t, w.Code).Equal(http.StatusCreated)

	w = do(t, srv, call{method: http.MethodGet, path: "/f/contact"})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Header().Get("Content-Type")).Contains("text/html")

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "formflow_fill" {
			session = c
		}
	}
	gt.Value(t, session).NotNil()

	form := url.Values{"action": {"submit"}, "name": {"Carol"}}
	w = do(t, srv, call{
		method:  http.MethodPost,
		path:    "/f/contact",
		body:    []byte(form.Encode()),
		headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		cookies: []*http.Cookie{session},
	})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(model.DefaultConfirmationMessage)

	n, err := uc.Response.List(auth.ContextWithSession(context.Background(), auth.NewAnonymousSession()), "contact")
	gt.NoError(t, err).Required()
	gt.Array(t, n).Length(1)

	w = do(t, srv, call{method: http.MethodGet, path: "/f/missing"})
	gt.Value(t, w.Code).Equal(http.StatusNotFound)
	gt.String(t, w.Body.String()).Contains("Form not found")
}

func TestFillCookiePerForm(t *testing.T) {
	srv, _ := newServer(t)
	for _, id := range []types.FormID{"contact", "survey"} {
		w := do(t, srv, call{method: http.MethodPost, path: "/api/forms", body: model.FormEnvelope{ID: id, Data: sampleForm(id)}})
		gt.Value(t, w.Code).Equal(http.StatusCreated)
	}

	jar, err := cookiejar.New(nil)
	gt.NoError(t, err).Required()
	base, err := url.Parse("http://example.com")
	gt.NoError(t, err).Required()

	open := func(id string) *http.Cookie {
		w := do(t, srv, call{method: http.MethodGet, path: "/f/" + id})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		var fill *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == "formflow_fill" {
				fill = c
			}
		}
		gt.Value(t, fill).NotNil()
		gt.Value(t, fill.Path).Equal("/f/" + id)
		jar.SetCookies(base.JoinPath("f", id), []*http.Cookie{fill})
		return fill
	}
	contact := open("contact")
	survey := open("survey")
	gt.String(t, contact.Value).NotEqual(survey.Value)

	// opening the second form leaves the first flow addressable
	for _, c := range []*http.Cookie{contact, survey} {
		sent := jar.Cookies(base.JoinPath("f", strings.TrimPrefix(c.Path, "/f/")))
		gt.Array(t, sent).Length(1)
		gt.Value(t, sent[0].Value).Equal(c.Value)
	}
}

func TestAuthFlow(t *testing.T) {
	repo := memory.New()
	authUC := usecase.NewAuthUseCase(repo, []byte("0123456789abcdef0123456789abcdef"), usecase.WithHashCost(bcrypt.MinCost))
	uc, err := usecase.New(repo, usecase.WithAuth(authUC))
	gt.NoError(t, err).Required()
	t.Cleanup(func() { gt.NoError(t, uc.Shutdown(context.Background())) })
	srv, err := server.New(uc)
	gt.NoError(t, err).Required()

	w := do(t, srv, call{method: http.MethodPost, path: "/api/forms", body: model.FormEnvelope{ID: "contact", Data: sampleForm("contact")}})
	gt.Value(t, w.Code).Equal(http.StatusUnauthorized)

	w = do(t, srv, call{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"email": "alice@example.com", "name": "Alice", "password": "correct horse",
	}})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	token := decode[map[string]any](t, w)["token"].(string)
	gt.String(t, token).NotEqual("")
	gt.Bool(t, strings.Contains(w.Header().Get("Set-Cookie"), "formflow_token=")).True()

	w = do(t, srv, call{method: http.MethodGet, path: "/api/auth/me", token: token})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Value(t, decode[map[string]string](t, w)["email"]).Equal("alice@example.com")

	w = do(t, srv, call{method: http.MethodPost, path: "/api/forms", token: token, body: model.FormEnvelope{ID: "contact", Data: sampleForm("contact")}})
	gt.Value(t, w.Code).Equal(http.StatusCreated)

	// reads stay public
	w = do(t, srv, call{method: http.MethodGet, path: "/api/forms/contact"})
	gt.Value(t, w.Code).Equal(http.StatusOK)

	w = do(t, srv, call{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{
		"email": "alice@example.com", "password": "wrong password",
	}})
	gt.Value(t, w.Code).Equal(http.StatusUnauthorized)

	w = do(t, srv, call{method: http.MethodPost, path: "/api/auth/logout", token: token})
	gt.Value(t, w.Code).Equal(http.StatusOK)

	w = do(t, srv, call{method: http.MethodGet, path: "/api/auth/me", token: token})
	gt.Value(t, w.Code).Equal(http.StatusUnauthorized)
}
