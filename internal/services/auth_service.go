package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/authorizerdev/authorizer-go"
	"github.com/localnerve/fictiondb/internal/config"
	"github.com/localnerve/fictiondb/internal/models"
	"github.com/localnerve/fictiondb/internal/utils"
	"gorm.io/gorm"
)

// Authenticator resolves a bearer credential to a local user
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (*models.User, error)
}

// TokenAuthenticator accepts the session tokens issued at signup
type TokenAuthenticator struct {
	DB *gorm.DB
}

// Authenticate implements Authenticator
func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	return Authenticate(ctx, a.DB, token)
}

// AuthorizerAuthenticator accepts Authorizer sessions and maps the session email to a local user
type AuthorizerAuthenticator struct {
	DB    *gorm.DB
	Roles []string
}

// Authenticate implements Authenticator
func (a *AuthorizerAuthenticator) Authenticate(ctx context.Context, session string) (*models.User, error) {
	if session == "" {
		return nil, unauthorizedError("Missing token")
	}

	identity, err := ValidateSession(session, a.Roles)
	if err != nil {
		slog.DebugContext(ctx, "authorizer session rejected", "error", err)
		return nil, unauthorizedError("Invalid token")
	}

	user, err := FindUserByEmail(ctx, a.DB, identity.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, unauthorizedError("Invalid token or user not found")
	}
	return user, err
}

// NewAuthenticator returns the Authenticator selected by AUTH_PROVIDER
func NewAuthenticator(cfg *config.Config, db *gorm.DB, redirectURL string) (Authenticator, error) {
	switch cfg.AuthProvider {
	case config.AuthProviderAuthorizer:
		if err := InitAuthorizer(cfg, redirectURL); err != nil {
			return nil, err
		}
		return &AuthorizerAuthenticator{DB: db, Roles: []string{"user"}}, nil
	default:
		return &TokenAuthenticator{DB: db}, nil
	}
}

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
)

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client (singleton pattern)
func InitAuthorizer(cfg *config.Config, redirectURL string) error {
	var initErr error

	authOnce.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		slog.Info("initializing authorizer",
			"authorizerURL", cfg.AuthzURL, "clientID", cfg.AuthzClientID, "redirectURL", redirectURL)

		var err error
		authClient, err = authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
	})

	return initErr
}

// SessionIdentity is the part of an Authorizer user this service relies on
type SessionIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ValidateSession validates a session for the given roles and returns its identity
func ValidateSession(session string, roles []string) (*SessionIdentity, error) {
	if authClient == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	// Convert roles to []*string
	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: session,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("session is not valid")
	}

	// the SDK user has pointer fields; only id and email matter here
	raw, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	var identity SessionIdentity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("session user has no email")
	}

	return &identity, nil
}
