package services

import (
	"context"
	"errors"
	"testing"

	"github.com/localnerve/fictiondb/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSignup(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	user, err := Signup(ctx, db, SignupInput{Email: "  Reader@Example.COM ", Username: " reader ", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.Equal(t, "reader", user.Username)
	assert.Len(t, user.Token, TokenLength)
	assert.NotEqual(t, testPassword, user.PasswordHash)
	assert.Equal(t, models.AppearanceSystem, user.AppearanceMode)
	assert.Equal(t, models.NotationHeart, user.NotationIcon)
	assert.NotNil(t, user.LastConnectedAt)

	_, err = Signup(ctx, db, SignupInput{Email: "reader@example.com", Username: "someone-else", Password: testPassword})
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	_, err = Signup(ctx, db, SignupInput{Email: "new@example.com", Username: "reader", Password: testPassword})
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.Equal(t, "User already exists", err.Error())
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	tests := []struct {
		name  string
		input SignupInput
		field string
	}{
		{"invalid email", SignupInput{Email: "not-an-email", Username: "u", Password: testPassword}, "email"},
		{"missing username", SignupInput{Email: "u@example.com", Username: "  ", Password: testPassword}, "username"},
		{"short password", SignupInput{Email: "u@example.com", Username: "u", Password: "short"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Signup(ctx, db, tt.input)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))

			var svcErr *Error
			require.True(t, errors.As(err, &svcErr))
			assert.Contains(t, svcErr.Details, tt.field)
		})
	}
}

func TestSignin(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	created := createUser(t, db, "alice")

	user, err := Signin(ctx, db, SigninInput{Email: "ALICE@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, created.Token, user.Token)

	_, wrongPassword := Signin(ctx, db, SigninInput{Email: "alice@example.com", Password: "wrong-password"})
	_, unknownEmail := Signin(ctx, db, SigninInput{Email: "nobody@example.com", Password: testPassword})
	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.True(t, errors.Is(wrongPassword, ErrUnauthorized))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error(), "no hint which part was wrong")

	_, err = Signin(ctx, db, SigninInput{Email: "alice@example.com"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	created := createUser(t, db, "bob")

	user, err := Authenticate(ctx, db, created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = Authenticate(ctx, db, "")
	assert.True(t, errors.Is(err, ErrUnauthorized))

	_, err = (&TokenAuthenticator{DB: db}).Authenticate(ctx, "not-a-token")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Invalid token", err.Error())
}

func TestUpdateUsername(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	createUser(t, db, "bob")

	user, err := UpdateUsername(ctx, db, alice.ID, "  alicia ")
	require.NoError(t, err)
	assert.Equal(t, "alicia", user.Username)

	same, err := UpdateUsername(ctx, db, alice.ID, "alicia")
	require.NoError(t, err)
	assert.Equal(t, "alicia", same.Username)

	_, err = UpdateUsername(ctx, db, alice.ID, " ")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "New username cannot be empty", err.Error())

	_, err = UpdateUsername(ctx, db, alice.ID, "bob")
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.Equal(t, "This username is already taken", err.Error())

	_, err = UpdateUsername(ctx, db, "missing-user", "carol")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdatePreferences(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "carol")

	themes, err := ListThemes(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, themes)
	theme := themes[0]

	updated, err := UpdatePreferences(ctx, db, user.ID, PreferencesInput{
		AppearanceMode: ptr(models.AppearanceDark),
		ThemeID:        ptr(theme.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppearanceDark, updated.AppearanceMode)
	assert.Equal(t, models.NotationHeart, updated.NotationIcon, "untouched")
	require.NotNil(t, updated.ThemeID)
	assert.Equal(t, theme.ID, *updated.ThemeID)

	cleared, err := UpdatePreferences(ctx, db, user.ID, PreferencesInput{ThemeID: ptr(""), NotationIcon: ptr(models.NotationStar)})
	require.NoError(t, err)
	assert.Nil(t, cleared.ThemeID)
	assert.Equal(t, models.NotationStar, cleared.NotationIcon)

	_, err = UpdatePreferences(ctx, db, user.ID, PreferencesInput{ThemeID: ptr("no-such-theme")})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Unknown theme", err.Error())

	_, err = UpdatePreferences(ctx, db, user.ID, PreferencesInput{AppearanceMode: ptr("sepia")})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestUpdateAvatar(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "dave")

	updated, err := UpdateAvatar(ctx, db, user.ID, "https://cdn.example.com/avatars/dave.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/dave.png", updated.AvatarURL)

	_, err = UpdateAvatar(ctx, db, user.ID, "not a url")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = UpdateAvatar(ctx, db, user.ID, "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func countOwned(t *testing.T, db *gorm.DB, model any, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestDeleteUserCascade(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	createFiction(t, db, alice.ID, FictionInput{Title: "a1", FandomName: "Naruto", TagNames: []string{"angst", "fluff"}})
	createFiction(t, db, alice.ID, FictionInput{Title: "a2", FandomName: "Bleach", TagNames: []string{"angst"}})
	createTag(t, db, alice.ID, "unused")
	kept := createFiction(t, db, bob.ID, FictionInput{Title: "b1", FandomName: "Naruto", TagNames: []string{"angst"}})

	_, err := DeleteUser(ctx, db, alice.ID, "wrong-password")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, int64(2), countOwned(t, db, &models.Fiction{}, alice.ID), "nothing removed on a wrong password")

	deleted, err := DeleteUser(ctx, db, alice.ID, testPassword)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"links":    2,
		"fictions": 2,
		"tags":     3,
		"fandoms":  2,
		"users":    1,
	}, deleted)

	for _, model := range []any{&models.FictionTagLink{}, &models.Fiction{}, &models.Tag{}, &models.Fandom{}} {
		assert.Zero(t, countOwned(t, db, model, alice.ID))
	}
	_, err = GetUser(ctx, db, alice.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	view, err := GetFiction(ctx, db, bob.ID, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, "Naruto", view.FandomName)
	assert.Equal(t, []string{"angst"}, tagNames(view.Tags))
	assert.Equal(t, int64(1), view.Tags[0].UsageCount)

	_, err = PurgeUser(ctx, db, alice.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "a second purge finds no user")
}

func TestListThemes(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Theme{Name: "aaa-retired", Active: false}).Error)
	require.NoError(t, db.Model(&models.Theme{}).Where("name = ?", "aaa-retired").Update("active", false).Error)

	themes, err := ListThemes(context.Background(), db)
	require.NoError(t, err)
	require.NotEmpty(t, themes)
	for i, theme := range themes {
		assert.True(t, theme.Active)
		assert.NotEqual(t, "aaa-retired", theme.Name)
		if i > 0 {
			assert.LessOrEqual(t, themes[i-1].Name, theme.Name)
		}
	}
}
