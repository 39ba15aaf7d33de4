package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/localnerve/fictiondb/internal/config"
	"github.com/localnerve/fictiondb/internal/models"
	"github.com/localnerve/fictiondb/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Schema       string            `json:"schema"`
	Authorizer   string            `json:"authorizer,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(message string) {
	r.Status = "unhealthy"
	if r.ErrorMessage == "" {
		r.ErrorMessage = message
	} else {
		r.ErrorMessage += "; " + message
	}
	slog.Warn("health check failed", "reason", message)
}

// HealthCheck checks database reachability, the presence of the schema and, when configured,
// the Authorizer service
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	sqlDB, err := db.DB()
	switch {
	case err != nil:
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.fail(fmt.Sprintf("Database connection error: %v", err))
	case sqlDB.PingContext(ctx) != nil:
		result.Database = "unreachable"
		result.fail("Database ping failed")
	default:
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	if result.Database == "ok" {
		result.Schema = "ok"
		migrator := db.WithContext(ctx).Migrator()
		for _, model := range []any{&models.User{}, &models.Fandom{}, &models.Fiction{}, &models.Tag{}, &models.FictionTagLink{}} {
			if !migrator.HasTable(model) {
				result.Schema = "missing"
				result.fail(fmt.Sprintf("Missing table for %T", model))
				break
			}
		}
	}

	if cfg.AuthProvider == config.AuthProviderAuthorizer {
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			result.Authorizer = "unreachable"
			result.Details["authorizer_error"] = err.Error()
			result.fail(fmt.Sprintf("Authorizer ping failed: %v", err))
		} else {
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
		}
	}

	if result.Status == "healthy" {
		slog.Debug("health check passed")
	}

	return result
}
