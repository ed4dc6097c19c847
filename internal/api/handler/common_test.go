package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
)

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestHandleServiceErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrVideoNotFound, http.StatusNotFound},
		{service.ErrVideoForbidden, http.StatusForbidden},
		{service.ErrAlreadyLiked, http.StatusBadRequest},
		{service.ErrInvalidMediaType, http.StatusBadRequest},
		{service.ErrSelfSubscription, http.StatusBadRequest},
		{service.ErrInvalidCredential, http.StatusUnauthorized},
		{service.ErrUploadFailed, http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", service.ErrCommentNotFound), http.StatusNotFound},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		c, w := testContext("/")
		handleServiceError(c, tt.err)
		if w.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, w.Code, tt.status)
		}
	}
}

func TestParseSkipLimit(t *testing.T) {
	tests := []struct {
		query       string
		skip, limit int
		ok          bool
	}{
		{"", 0, defaultLimit, true},
		{"?skip=5&limit=20", 5, 20, true},
		{"?limit=1000", 0, maxLimit, true},
		{"?skip=-1", 0, 0, false},
		{"?limit=0", 0, 0, false},
		{"?limit=abc", 0, 0, false},
	}
	for _, tt := range tests {
		c, w := testContext("/" + tt.query)
		skip, limit, ok := parseSkipLimit(c)
		if ok != tt.ok || skip != tt.skip || limit != tt.limit {
			t.Errorf("%q: got (%d, %d, %v), want (%d, %d, %v)", tt.query, skip, limit, ok, tt.skip, tt.limit, tt.ok)
		}
		if !ok && w.Code != http.StatusBadRequest {
			t.Errorf("%q: status = %d, want 400", tt.query, w.Code)
		}
	}
}

func TestParseIDParam(t *testing.T) {
	for _, raw := range []string{"0", "-3", "x"} {
		c, w := testContext("/")
		c.Params = gin.Params{{Key: "id", Value: raw}}
		if _, ok := parseIDParam(c, "id"); ok {
			t.Errorf("%q should be rejected", raw)
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("%q: status = %d", raw, w.Code)
		}
	}

	c, _ := testContext("/")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	if id, ok := parseIDParam(c, "id"); !ok || id != 42 {
		t.Errorf("got (%d, %v)", id, ok)
	}
}
