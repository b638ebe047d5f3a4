package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"merchant-client/internal/domain"

	"github.com/gin-gonic/gin"
)

type stubAuthenticator struct {
	merchantID string
	err        error
	gotKey     string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, key string) (string, error) {
	s.gotKey = key
	return s.merchantID, s.err
}

func serveWithAuth(t *testing.T, auth Authenticator, header string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(merchantMiddleware(auth))
	router.GET("/test", func(c *gin.Context) {
		if merchantID(c) == "" {
			t.Fatalf("expected merchant in context")
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMerchantMiddleware_Success(t *testing.T) {
	auth := &stubAuthenticator{merchantID: "m-1"}
	rec := serveWithAuth(t, auth, "Bearer sk_abc")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if auth.gotKey != "sk_abc" {
		t.Fatalf("expected key sk_abc, got %q", auth.gotKey)
	}
}

func TestMerchantMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	rec := serveWithAuth(t, &stubAuthenticator{merchantID: "m-1"}, "bearer sk_abc")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestMerchantMiddleware_MissingKey(t *testing.T) {
	for _, header := range []string{"", "Basic abc", "Bearer "} {
		rec := serveWithAuth(t, &stubAuthenticator{merchantID: "m-1"}, header)
		expectErrorID(t, rec, http.StatusUnauthorized, "unauthorized")
	}
}

func TestMerchantMiddleware_UnknownKey(t *testing.T) {
	rec := serveWithAuth(t, &stubAuthenticator{err: domain.ErrUnauthorized}, "Bearer nope")
	expectErrorID(t, rec, http.StatusUnauthorized, "unauthorized")
}

func TestMerchantMiddleware_Error(t *testing.T) {
	rec := serveWithAuth(t, &stubAuthenticator{err: errors.New("boom")}, "Bearer sk_abc")
	expectErrorID(t, rec, http.StatusInternalServerError, "internal_error")
}

func TestBuildRouter_RequiresDeps(t *testing.T) {
	if _, err := buildRouter(logDiscard(), nil, Deps{}, nil); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}

func TestHealthAndReadyOnMemoryStorage(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/nothing-here", "")
	expectErrorID(t, rec, http.StatusNotFound, "not_found")
}
