package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
)

func newTestContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetAuth0ID(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		setup    func(c echo.Context)
		expected string
	}{
		{
			name: "returns auth0 id when present",
			setup: func(c echo.Context) {
				ctx := context.WithValue(c.Request().Context(), Auth0IDKey, "auth0|12345")
				c.SetRequest(c.Request().WithContext(ctx))
			},
			expected: "auth0|12345",
		},
		{
			name:     "returns empty string when not present",
			setup:    func(c echo.Context) {},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(e)
			tt.setup(c)

			if got := GetAuth0ID(c); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestGetWorkspaceID(t *testing.T) {
	e := echo.New()

	t.Run("returns workspace id when present", func(t *testing.T) {
		c, _ := newTestContext(e)
		ctx := context.WithValue(c.Request().Context(), WorkspaceIDKey, int32(42))
		c.SetRequest(c.Request().WithContext(ctx))

		if got := GetWorkspaceID(c); got != 42 {
			t.Errorf("Expected 42, got %d", got)
		}
	})

	t.Run("returns 0 when not present", func(t *testing.T) {
		c, _ := newTestContext(e)
		if got := GetWorkspaceID(c); got != 0 {
			t.Errorf("Expected 0, got %d", got)
		}
	})
}

func TestGetClaims(t *testing.T) {
	e := echo.New()

	t.Run("returns claims when present", func(t *testing.T) {
		c, _ := newTestContext(e)
		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{
				Subject: "auth0|test",
			},
		}
		ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
		c.SetRequest(c.Request().WithContext(ctx))

		result := GetClaims(c)
		if result == nil {
			t.Fatal("Expected claims, got nil")
		}
		if result.RegisteredClaims.Subject != "auth0|test" {
			t.Errorf("Expected subject 'auth0|test', got %q", result.RegisteredClaims.Subject)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		c, _ := newTestContext(e)
		if GetClaims(c) != nil {
			t.Error("Expected nil, got claims")
		}
	})
}

func TestGetCustomClaims(t *testing.T) {
	e := echo.New()

	t.Run("returns custom claims when present", func(t *testing.T) {
		c, _ := newTestContext(e)
		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: "auth0|test"},
			CustomClaims: &CustomClaims{
				Email: "writer@example.com",
				Name:  "Note Writer",
			},
		}
		ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
		c.SetRequest(c.Request().WithContext(ctx))

		result := GetCustomClaims(c)
		if result == nil {
			t.Fatal("Expected custom claims, got nil")
		}
		if result.Email != "writer@example.com" {
			t.Errorf("Expected email 'writer@example.com', got %q", result.Email)
		}
	})

	t.Run("returns nil when claims not present", func(t *testing.T) {
		c, _ := newTestContext(e)
		if GetCustomClaims(c) != nil {
			t.Error("Expected nil, got custom claims")
		}
	})
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{Email: "writer@example.com"}
	if err := claims.Validate(context.Background()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestAuthenticate_HeaderParsing(t *testing.T) {
	e := echo.New()
	// Malformed headers are rejected before the validator runs, so a
	// zero-value middleware is enough here.
	m := &AuthMiddleware{}

	handler := m.Authenticate()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", "invalid-token"},
		{"wrong scheme", "Basic token123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler(c)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("Expected HTTPError, got %T", err)
			}
			if httpErr.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", httpErr.Code)
			}
		})
	}
}

// mockResolver implements WorkspaceResolver for testing
type mockResolver struct {
	workspaceID int32
	err         error
	calls       []string
}

func (m *mockResolver) ResolveWorkspace(ctx context.Context, auth0ID, email, name string) (int32, error) {
	m.calls = append(m.calls, auth0ID)
	if m.err != nil {
		return 0, m.err
	}
	return m.workspaceID, nil
}

func TestWorkspaceResolver(t *testing.T) {
	t.Run("resolves workspace for identity", func(t *testing.T) {
		resolver := &mockResolver{workspaceID: 42}
		var _ WorkspaceResolver = resolver

		id, err := resolver.ResolveWorkspace(context.Background(), "auth0|test", "writer@example.com", "Note Writer")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if id != 42 {
			t.Errorf("Expected workspace ID 42, got %d", id)
		}
		if len(resolver.calls) != 1 || resolver.calls[0] != "auth0|test" {
			t.Errorf("Expected one resolution call for auth0|test, got %v", resolver.calls)
		}
	})

	t.Run("propagates resolution failure", func(t *testing.T) {
		resolver := &mockResolver{err: errors.New("database down")}

		if _, err := resolver.ResolveWorkspace(context.Background(), "auth0|bad", "", ""); err == nil {
			t.Fatal("Expected error, got nil")
		}
	})
}
