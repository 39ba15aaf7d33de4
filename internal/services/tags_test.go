package services

import (
	"context"
	"errors"
	"testing"

	"github.com/localnerve/fictiondb/internal/config"
	"github.com/localnerve/fictiondb/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTag(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "alice")

	tag, created, err := CreateTag(ctx, db, user.ID, TagInput{Name: "  Slow Burn "})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "slow burn", tag.Name)
	assert.Equal(t, models.DefaultTagColor, tag.Color)
	assert.Zero(t, tag.UsageCount)

	again, created, err := CreateTag(ctx, db, user.ID, TagInput{Name: "SLOW BURN", Color: 5})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tag.ID, again.ID)
	assert.Equal(t, models.DefaultTagColor, again.Color, "existing tag is returned unchanged")

	_, _, err = CreateTag(ctx, db, user.ID, TagInput{Name: "  "})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Missing tag name", err.Error())

	_, _, err = CreateTag(ctx, db, user.ID, TagInput{Name: "colorful", Color: models.MaxTagColor + 1})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestResolveTagNames(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	existing := createTag(t, db, alice.ID, "angst")

	ids, err := ResolveTagNames(ctx, db, alice.ID, []string{"Angst", "", "fluff", "FLUFF", "angst"})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, existing.ID, ids[0])

	fluff, err := GetTag(ctx, db, alice.ID, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "fluff", fluff.Name)

	// same name, different owner, different record
	bobIDs, err := ResolveTagNames(ctx, db, bob.ID, []string{"angst"})
	require.NoError(t, err)
	require.Len(t, bobIDs, 1)
	assert.NotEqual(t, existing.ID, bobIDs[0])

	// a row removed behind the cache's back is recreated
	require.NoError(t, db.Delete(&models.Tag{}, "id = ?", existing.ID).Error)
	fresh, err := ResolveTagNames(ctx, db, alice.ID, []string{"angst"})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.NotEqual(t, existing.ID, fresh[0])
	_, err = GetTag(ctx, db, alice.ID, fresh[0])
	assert.NoError(t, err)
}

func TestCheckTagIDs(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "carol")
	a := createTag(t, db, user.ID, "a")
	b := createTag(t, db, user.ID, "b")

	ids, err := CheckTagIDs(ctx, db, user.ID, []string{a.ID, b.ID, a.ID, ""})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, ids)

	ids, err = CheckTagIDs(ctx, db, user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = CheckTagIDs(ctx, db, user.ID, []string{a.ID, "missing"})
	require.Error(t, err)
	assert.Equal(t, "Unknown tag: missing", err.Error())

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, map[string]string{"tags": "missing"}, svcErr.Details)
}

func TestListTags(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "dave")

	low := createTag(t, db, user.ID, "zeta")
	high := createTag(t, db, user.ID, "omega")
	createTag(t, db, user.ID, "alpha")
	setUsage(t, db, high.ID, 4)
	setUsage(t, db, low.ID, 1)

	tags, err := ListTags(ctx, db, user.ID)
	require.NoError(t, err)
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	assert.Equal(t, []string{"omega", "zeta", "alpha"}, names)

	none, err := ListTags(ctx, db, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHealthCheck(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{DBType: "sqlite-pure", DBDatabase: ":memory:", AuthProvider: config.AuthProviderToken}

	result := HealthCheck(context.Background(), cfg, db)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "ok", result.Schema)
	assert.Empty(t, result.Authorizer)

	require.NoError(t, db.Migrator().DropTable(&models.FictionTagLink{}))
	result = HealthCheck(context.Background(), cfg, db)
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "missing", result.Schema)
	assert.Contains(t, result.ErrorMessage, "Missing table")
}

func TestErrorKinds(t *testing.T) {
	err := &Error{Kind: KindConflict, Message: "busy"}
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 409, err.Kind.HTTPStatus())

	wrapped := storeError("failed to save", errors.New("disk full"))
	assert.Equal(t, "failed to save: disk full", wrapped.Error())
	assert.Equal(t, KindInternal, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("foreign")))
	assert.Equal(t, 500, KindInternal.HTTPStatus())
	assert.Equal(t, 400, KindValidation.HTTPStatus())
	assert.Equal(t, 401, KindUnauthorized.HTTPStatus())
	assert.Equal(t, 404, KindNotFound.HTTPStatus())
}
