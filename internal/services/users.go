package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/localnerve/fictiondb/internal/metrics"
	"github.com/localnerve/fictiondb/internal/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenLength is the length of a session token
const TokenLength = 32

// cascadeSteps is the child-first deletion order of user-owned records
var cascadeSteps = []struct {
	entity string
	model  any
}{
	{"links", &models.FictionTagLink{}},
	{"fictions", &models.Fiction{}},
	{"tags", &models.Tag{}},
	{"fandoms", &models.Fandom{}},
}

// SignupInput is the payload for creating an account
type SignupInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// SigninInput is the payload for signing in
type SigninInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PreferencesInput updates display preferences. Nil fields are left alone, an empty themeId clears the theme.
type PreferencesInput struct {
	AppearanceMode *string `json:"appearanceMode" validate:"omitempty,oneof=light dark system"`
	NotationIcon   *string `json:"notationIcon" validate:"omitempty,oneof=heart star flame diamond"`
	ThemeID        *string `json:"themeId"`
}

// Signup creates a user with a bcrypt password hash and a fresh session token
func Signup(ctx context.Context, db *gorm.DB, in SignupInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx)
	if taken, err := userExists(tx, in.Email, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, alreadyExistsError("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, storeError("failed to hash password", err)
	}
	token, err := gonanoid.New(TokenLength)
	if err != nil {
		return nil, storeError("failed to generate token", err)
	}

	now := time.Now().UTC()
	user := models.User{
		Email:           in.Email,
		Username:        in.Username,
		PasswordHash:    string(hash),
		Token:           token,
		AppearanceMode:  models.AppearanceSystem,
		NotationIcon:    models.NotationHeart,
		LastConnectedAt: &now,
	}
	if err := tx.Create(&user).Error; err != nil {
		// lost a race on one of the unique indexes
		if taken, cerr := userExists(tx, in.Email, in.Username); cerr == nil && taken {
			return nil, alreadyExistsError("User already exists")
		}
		return nil, storeError("failed to create user", err)
	}

	return &user, nil
}

// Signin checks the password and records the connection. Unknown email and wrong password
// are reported the same way.
func Signin(ctx context.Context, db *gorm.DB, in SigninInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx)
	var user models.User
	err := tx.Where("email = ?", in.Email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorizedError("User not found or wrong password")
	}
	if err != nil {
		return nil, storeError("failed to load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, unauthorizedError("User not found or wrong password")
	}

	now := time.Now().UTC()
	if err := tx.Model(&user).UpdateColumn("last_connected_at", now).Error; err != nil {
		return nil, storeError("failed to record connection", err)
	}
	user.LastConnectedAt = &now

	return &user, nil
}

// Authenticate resolves a session token to its user
func Authenticate(ctx context.Context, db *gorm.DB, token string) (*models.User, error) {
	if token == "" {
		return nil, unauthorizedError("Missing token")
	}

	var user models.User
	err := quiet(db).WithContext(ctx).Where("token = ?", token).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorizedError("Invalid token")
	}
	if err != nil {
		return nil, storeError("failed to authenticate", err)
	}
	return &user, nil
}

// GetUser loads a user by id
func GetUser(ctx context.Context, db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("User not found")
	}
	if err != nil {
		return nil, storeError("failed to load user", err)
	}
	return &user, nil
}

// FindUserByEmail loads a user by email, used to map external identities to local users
func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("User not found")
	}
	if err != nil {
		return nil, storeError("failed to load user", err)
	}
	return &user, nil
}

// UpdateUsername renames the user. The new name must be non-empty and not used by anyone else.
func UpdateUsername(ctx context.Context, db *gorm.DB, userID, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, validationError("New username cannot be empty")
	}

	user, err := GetUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if user.Username == username {
		return user, nil
	}

	tx := db.WithContext(ctx)
	var n int64
	if err := tx.Model(&models.User{}).Where("username = ? AND id <> ?", username, userID).Count(&n).Error; err != nil {
		return nil, storeError("failed to check username", err)
	}
	if n > 0 {
		return nil, alreadyExistsError("This username is already taken")
	}

	if err := tx.Model(user).Update("username", username).Error; err != nil {
		return nil, storeError("failed to update username", err)
	}
	user.Username = username
	return user, nil
}

// UpdatePreferences changes appearance mode, notation icon and theme
func UpdatePreferences(ctx context.Context, db *gorm.DB, userID string, in PreferencesInput) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	user, err := GetUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx)
	updates := map[string]any{}
	if in.AppearanceMode != nil {
		updates["appearance_mode"] = *in.AppearanceMode
	}
	if in.NotationIcon != nil {
		updates["notation_icon"] = *in.NotationIcon
	}
	if in.ThemeID != nil {
		if *in.ThemeID == "" {
			updates["theme_id"] = nil
		} else {
			var n int64
			if err := tx.Model(&models.Theme{}).Where("id = ? AND active = ?", *in.ThemeID, true).Count(&n).Error; err != nil {
				return nil, storeError("failed to check theme", err)
			}
			if n == 0 {
				return nil, &Error{Kind: KindValidation, Message: "Unknown theme", Details: map[string]string{"themeId": *in.ThemeID}}
			}
			updates["theme_id"] = *in.ThemeID
		}
	}

	if len(updates) > 0 {
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return nil, storeError("failed to update preferences", err)
		}
	}
	return GetUser(ctx, db, userID)
}

// UpdateAvatar stores the URL of an avatar already uploaded to object storage
func UpdateAvatar(ctx context.Context, db *gorm.DB, userID, avatarURL string) (*models.User, error) {
	in := struct {
		AvatarURL string `json:"avatarURL" validate:"required,url,max=1024"`
	}{AvatarURL: strings.TrimSpace(avatarURL)}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := GetUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(user).Update("avatar_url", in.AvatarURL).Error; err != nil {
		return nil, storeError("failed to update avatar", err)
	}
	user.AvatarURL = in.AvatarURL
	return user, nil
}

// DeleteUser re-checks the password and then removes the user and everything it owns
func DeleteUser(ctx context.Context, db *gorm.DB, userID, password string) (map[string]int64, error) {
	user, err := GetUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, unauthorizedError("Wrong password")
	}
	return PurgeUser(ctx, db, user.ID)
}

// PurgeUser deletes link records, fictions, tags, fandoms and then the user, in that order and
// without a transaction. Each completed step is durable, so an interrupted run leaves only
// children-less parents behind and can be repeated.
func PurgeUser(ctx context.Context, db *gorm.DB, userID string) (map[string]int64, error) {
	tx := db.WithContext(ctx)
	deleted := make(map[string]int64, len(cascadeSteps)+1)

	for _, step := range cascadeSteps {
		res := tx.Where("user_id = ?", userID).Delete(step.model)
		if res.Error != nil {
			return deleted, storeError("failed to delete "+step.entity, res.Error)
		}
		deleted[step.entity] = res.RowsAffected
		metrics.CascadeDeletes.WithLabelValues(step.entity).Add(float64(res.RowsAffected))
	}

	res := tx.Where("id = ?", userID).Delete(&models.User{})
	if res.Error != nil {
		return deleted, storeError("failed to delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return deleted, notFoundError("User not found")
	}
	deleted["users"] = res.RowsAffected
	metrics.CascadeDeletes.WithLabelValues("users").Inc()

	clearTagCache()
	return deleted, nil
}

// ListThemes returns the active themes by name
func ListThemes(ctx context.Context, db *gorm.DB) ([]models.Theme, error) {
	themes := []models.Theme{}
	if err := db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&themes).Error; err != nil {
		return nil, storeError("failed to list themes", err)
	}
	return themes, nil
}

func userExists(tx *gorm.DB, email, username string) (bool, error) {
	var n int64
	if err := tx.Model(&models.User{}).Where("email = ? OR username = ?", email, username).Count(&n).Error; err != nil {
		return false, storeError("failed to check user", err)
	}
	return n > 0, nil
}
