package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/localnerve/fictiondb/internal/database"
	"github.com/localnerve/fictiondb/internal/models"
	"github.com/localnerve/fictiondb/internal/services"
	"github.com/localnerve/fictiondb/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// runAdmin executes the CLI with args and returns what it printed
func runAdmin(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// useDatabaseFile points the configuration at a migrated sqlite file and returns a handle to it
func useDatabaseFile(t *testing.T) *gorm.DB {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "admin.db")

	envFile := filepath.Join(dir, "empty.env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("DB_TYPE", "sqlite-pure")
	t.Setenv("DB_DATABASE", path)
	t.Setenv("AUTH_PROVIDER", "token")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_LEVEL", "error")

	db, err := database.Open(puresqlite.Open(path), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close(db) })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestFlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"delete without a user", []string{"delete-user", "--yes"}, "exactly one of --user or --email is required"},
		{"delete with user and email", []string{"delete-user", "--user", "abc", "--email", "a@example.com", "--yes"}, "exactly one of --user or --email is required"},
		{"delete without confirmation", []string{"delete-user", "--email", "a@example.com"}, "refusing to delete without --yes"},
		{"audit without a user", []string{"audit"}, "--user is required"},
		{"unknown flag", []string{"repair", "--everything"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no database is configured, so these must fail before connecting
			t.Setenv("DB_DATABASE", "")
			_, err := runAdmin(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	t.Setenv("DB_DATABASE", "")

	_, err := runAdmin(t, "delete-user", "--user", "abc", "--yes")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "exactly one of")

	_, err = runAdmin(t, "delete-user", "--email", "a@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to delete without --yes")
}

func TestRepairDryRun(t *testing.T) {
	db := useDatabaseFile(t)
	user := helpers.CreateTestUser(t, db, "drifter")
	fiction := helpers.CreateTestFiction(t, db, user.ID, "Drift", "Naruto", "angst")
	tagID := fiction.Tags[0].ID
	require.NoError(t, db.Model(&models.Tag{}).Where("id = ?", tagID).UpdateColumn("usage_count", 5).Error)

	out, err := runAdmin(t, "repair", "--user", user.ID, "--dry-run")
	require.NoError(t, err)

	var report services.RepairReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Applied)
	require.Len(t, report.Drift, 1)

	var tag models.Tag
	require.NoError(t, db.First(&tag, "id = ?", tagID).Error)
	assert.Equal(t, int64(5), tag.UsageCount, "a dry run writes nothing")

	_, err = runAdmin(t, "repair", "--user", user.ID)
	require.NoError(t, err)
	require.NoError(t, db.First(&tag, "id = ?", tagID).Error)
	assert.Equal(t, int64(1), tag.UsageCount)
}

func TestDeleteUserByEmail(t *testing.T) {
	db := useDatabaseFile(t)
	doomed := helpers.CreateTestUser(t, db, "doomed")
	helpers.CreateTestFiction(t, db, doomed.ID, "Gone", "Bleach", "angst")
	survivor := helpers.CreateTestUser(t, db, "survivor")

	out, err := runAdmin(t, "delete-user", "--email", "doomed@example.com", "--yes")
	require.NoError(t, err)

	var deleted map[string]int64
	require.NoError(t, json.Unmarshal([]byte(out), &deleted))
	assert.Equal(t, int64(1), deleted["users"])
	assert.Equal(t, int64(1), deleted["fictions"])

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)

	_, err = services.GetUser(context.Background(), db, survivor.ID)
	assert.NoError(t, err)
}
