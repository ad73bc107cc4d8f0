package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-system/internal/core/domain"
	"github.com/stockroom/inventory-system/internal/core/ports"
)

type stubVerifier struct {
	verifyFn func(ctx context.Context, token string) (*ports.Claims, error)
}

func (s *stubVerifier) Verify(ctx context.Context, token string) (*ports.Claims, error) {
	return s.verifyFn(ctx, token)
}

func acceptToken(want string) *stubVerifier {
	return &stubVerifier{verifyFn: func(_ context.Context, token string) (*ports.Claims, error) {
		if token != want {
			return nil, domain.ErrUnauthorized
		}
		return &ports.Claims{UserID: "user-1", Role: domain.RoleManager, TokenID: "jti-1"}, nil
	}}
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, req *http.Request, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := mw(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotReach(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	called := false
	rec := runMiddleware(t, Auth(acceptToken("good-token")), req, func(c echo.Context) error {
		called = true
		if c.Get(ContextKeyUserID) != "user-1" {
			t.Fatalf("user_id not set")
		}
		if c.Get(ContextKeyRole) != "manager" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := runMiddleware(t, Auth(acceptToken("good-token")), req, mustNotReach(t))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := runMiddleware(t, Auth(acceptToken("good-token")), req, mustNotReach(t))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := runMiddleware(t, Auth(acceptToken("good-token")), req, mustNotReach(t))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RevokedSession(t *testing.T) {
	verifier := &stubVerifier{verifyFn: func(context.Context, string) (*ports.Claims, error) {
		return nil, domain.ErrSessionRevoked
	}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer old-token")
	rec := runMiddleware(t, Auth(verifier), req, mustNotReach(t))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RegistryFailurePropagates(t *testing.T) {
	boom := errors.New("redis down")
	verifier := &stubVerifier{verifyFn: func(context.Context, string) (*ports.Claims, error) {
		return nil, boom
	}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	c := e.NewContext(req, httptest.NewRecorder())

	err := Auth(verifier)(mustNotReach(t))(c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected registry error to propagate, got %v", err)
	}
}

func TestWebsocketAuth_QueryToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token=good-token", nil)

	called := false
	rec := runMiddleware(t, WebsocketAuth(acceptToken("good-token")), req, func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected query token to authenticate, got %d", rec.Code)
	}
}

func TestWebsocketAuth_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := runMiddleware(t, WebsocketAuth(acceptToken("good-token")), req, mustNotReach(t))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer expired")

	called := false
	rec := runMiddleware(t, OptionalAuth(acceptToken("good-token")), req, func(c echo.Context) error {
		called = true
		if c.Get(ContextKeyUserID) != nil {
			t.Fatalf("user_id must not be set for an invalid token")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestOptionalAuth_SetsIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := runMiddleware(t, OptionalAuth(acceptToken("good-token")), req, func(c echo.Context) error {
		if c.Get(ContextKeyUserID) != "user-1" {
			t.Fatalf("user_id not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
