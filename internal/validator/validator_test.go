package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type answerBody struct {
	Option string `json:"option" binding:"required,notblank"`
	Index  *int   `json:"index" binding:"required,min=0"`
}

func bindBody(t *testing.T, body string) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var dst answerBody
	return Bind(c, &dst)
}

func TestBindValid(t *testing.T) {
	if fields := bindBody(t, `{"option":"Paris","index":0}`); fields != nil {
		t.Fatalf("Bind() = %v, want nil", fields)
	}
}

func TestBindUsesJSONFieldNames(t *testing.T) {
	fields := bindBody(t, `{"option":"   "}`)
	if fields == nil {
		t.Fatalf("expected validation errors")
	}
	if msg := fields["option"]; msg != "option must not be blank" {
		t.Fatalf("option message = %q", msg)
	}
	if _, ok := fields["index"]; !ok {
		t.Fatalf("expected index error, got %v", fields)
	}
}

func TestBindSyntaxError(t *testing.T) {
	fields := bindBody(t, `{"option":`)
	if _, ok := fields["detail"]; !ok {
		t.Fatalf("expected detail entry, got %v", fields)
	}
}
