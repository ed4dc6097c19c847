package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidhub-go/internal/model"

	"github.com/gin-gonic/gin"
)

type stubResolver map[string]*model.User

func (r stubResolver) ResolveToken(token string) (*model.User, error) {
	if u, ok := r[token]; ok {
		return u, nil
	}
	return nil, errors.New("unknown token")
}

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/who", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetCurrentUserID(c)})
	})
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	return r
}

func get(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := newEngine(AuthRequired(stubResolver{"good": {ID: 7}}))

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"scheme is case-insensitive", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/who", tt.auth)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("401 must carry WWW-Authenticate: Bearer")
			}
		})
	}
}

func TestAuthOptional(t *testing.T) {
	r := newEngine(AuthOptional(stubResolver{"good": {ID: 7}}))

	if w := get(r, "/who", ""); w.Code != http.StatusOK || w.Body.String() != `{"user_id":0}` {
		t.Errorf("anonymous: %d %s", w.Code, w.Body.String())
	}
	if w := get(r, "/who", "Bearer bad"); w.Code != http.StatusOK || w.Body.String() != `{"user_id":0}` {
		t.Errorf("bad token should fall back to anonymous: %d %s", w.Code, w.Body.String())
	}
	if w := get(r, "/who", "Bearer good"); w.Body.String() != `{"user_id":7}` {
		t.Errorf("valid token: %s", w.Body.String())
	}
}

func TestRecovery(t *testing.T) {
	r := newEngine(AuthOptional(stubResolver{}))
	w := get(r, "/boom", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}
