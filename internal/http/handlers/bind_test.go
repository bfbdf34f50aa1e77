package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newBindRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/bind", func(ctx *gin.Context) {
		var req SignUpRequest
		if !BindJSON(ctx, &req) {
			return
		}
		ctx.JSON(http.StatusOK, req)
	})

	return r
}

func postBind(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	return w
}

func bindFieldErrors(t *testing.T, w *httptest.ResponseRecorder) []FieldError {
	t.Helper()

	var body struct {
		Error struct {
			Details struct {
				Fields []FieldError `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, w.Body.String())
	}

	return body.Error.Details.Fields
}

func TestBindJSONValidPayload(t *testing.T) {
	r := newBindRouter()

	w := postBind(t, r, `{"email":"a@example.com","password":"longenough","name":"Ada"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestBindJSONReportsValidatorFieldsByJSONName(t *testing.T) {
	r := newBindRouter()

	w := postBind(t, r, `{"email":"not-an-email","password":"short"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}

	fields := bindFieldErrors(t, w)
	byField := map[string]FieldError{}
	for _, f := range fields {
		byField[f.Field] = f
	}

	if f, ok := byField["email"]; !ok || f.Rule != "email" {
		t.Errorf("email field error = %+v", byField)
	}
	if f, ok := byField["password"]; !ok || f.Rule != "min" || f.Param != "8" {
		t.Errorf("password field error = %+v", byField)
	}
	if f, ok := byField["name"]; !ok || f.Rule != "required" {
		t.Errorf("name field error = %+v", byField)
	}
}

func TestBindJSONTypeMismatch(t *testing.T) {
	r := newBindRouter()

	w := postBind(t, r, `{"email":"a@example.com","password":"longenough","name":7}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Error struct {
			Details struct {
				JSON  string `json:"json"`
				Field string `json:"field"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Details.JSON != "invalid_json_type" {
		t.Errorf("json = %q", body.Error.Details.JSON)
	}
	if body.Error.Details.Field != "name" {
		t.Errorf("field = %q", body.Error.Details.Field)
	}
}

func TestBindJSONSyntaxError(t *testing.T) {
	r := newBindRouter()

	w := postBind(t, r, `{"email":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_json_syntax") && !strings.Contains(w.Body.String(), "reason") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}
