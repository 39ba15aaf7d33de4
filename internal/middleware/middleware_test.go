package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fictiondb/internal/models"
	"github.com/localnerve/fictiondb/internal/services"
	"github.com/localnerve/fictiondb/internal/types"
)

type fakeAuthenticator struct {
	users map[string]*models.User
	err   error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, &services.Error{Kind: services.KindUnauthorized, Message: "Invalid token"}
}

func setupApp(auth services.Authenticator) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if errors.As(err, &ce) {
				return c.Status(ce.Code).JSON(fiber.Map{"message": ce.Message, "type": ce.Type})
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Use(VersionMiddleware())
	app.Get("/me", AuthUser(auth), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": CurrentUserID(c), "username": CurrentUser(c).Username})
	})
	return app
}

func TestAuthUser(t *testing.T) {
	auth := &fakeAuthenticator{users: map[string]*models.User{
		"good-token": {ID: "u1", Username: "reader"},
	}}
	app := setupApp(auth)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"empty bearer", "Bearer ", fiber.StatusUnauthorized},
		{"unknown token", "Bearer nope", fiber.StatusUnauthorized},
		{"valid token", "Bearer good-token", fiber.StatusOK},
		{"lowercase scheme", "bearer good-token", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestAuthUserStoreFailure(t *testing.T) {
	app := setupApp(&fakeAuthenticator{err: errors.New("connection refused")})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer any")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
}

func TestVersionMiddleware(t *testing.T) {
	app := setupApp(&fakeAuthenticator{users: map[string]*models.User{"t": {ID: "u1"}}})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer t")
	req.Header.Set("X-Api-Version", "1.0")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got := resp.Header.Get("X-Api-Version"); got != CurrentAPIVersion {
		t.Errorf("expected echoed version %s, got %s", CurrentAPIVersion, got)
	}

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("X-Api-Version", "2.0.0")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for unsupported version, got %d", resp.StatusCode)
	}
}
