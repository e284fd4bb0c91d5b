package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/vidtrack/internal/domain/user"
	"github.com/geocoder89/vidtrack/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func bindRouter(out func() interface{}) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/bind", func(ctx *gin.Context) {
		req := out()
		if !handlers.BindJSON(ctx, req) {
			return
		}
		ctx.Status(http.StatusOK)
	})

	return r
}

func postBind(t *testing.T, r *gin.Engine, body string) bindErrorResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	return resp
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	r := bindRouter(func() interface{} { return &user.CreateUserRequest{} })

	resp := postBind(t, r, `{}`)

	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}

	if len(resp.Error.Details.Fields) != 1 {
		t.Fatalf("expected one field error, got %+v", resp.Error.Details.Fields)
	}

	fieldErr := resp.Error.Details.Fields[0]

	if fieldErr.Field != "name" {
		t.Fatalf("expected json field name %q, got %q", "name", fieldErr.Field)
	}
	if fieldErr.Rule != "required" {
		t.Fatalf("expected rule required, got %q", fieldErr.Rule)
	}
	if fieldErr.Message == "" {
		t.Fatal("expected a non-empty message")
	}
}

func TestBindJSON_MaxRuleCarriesParam(t *testing.T) {
	r := bindRouter(func() interface{} { return &user.CreateUserRequest{} })

	resp := postBind(t, r, `{"name": "`+strings.Repeat("x", 121)+`"}`)

	if len(resp.Error.Details.Fields) != 1 {
		t.Fatalf("expected one field error, got %+v", resp.Error.Details.Fields)
	}

	fieldErr := resp.Error.Details.Fields[0]

	if fieldErr.Rule != "max" || fieldErr.Param != "120" {
		t.Fatalf("expected max/120, got %q/%q", fieldErr.Rule, fieldErr.Param)
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	r := bindRouter(func() interface{} { return &user.UpdateAssignmentRequest{} })

	resp := postBind(t, r, `{"reset": "yes"}`)

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "reset" {
		t.Fatalf("expected detail field to be reset, got %q", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) == 0 {
		t.Fatal("expected at least one field error in details.fields")
	}
	if resp.Error.Details.Fields[0].Rule != "type" {
		t.Fatalf("expected fields[0].rule=type, got %q", resp.Error.Details.Fields[0].Rule)
	}
}

func TestBindJSON_SyntaxError(t *testing.T) {
	r := bindRouter(func() interface{} { return &user.CreateUserRequest{} })

	resp := postBind(t, r, `{"name": }`)

	if resp.Error.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("expected invalid_json_syntax, got %q", resp.Error.Details.JSON)
	}
}
