package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fictiondb/internal/middleware"
	"github.com/localnerve/fictiondb/internal/models"
	"github.com/localnerve/fictiondb/internal/services"
	"github.com/localnerve/fictiondb/internal/utils"
	"gorm.io/gorm"
)

// UserHandler handles account routes
type UserHandler struct {
	DB *gorm.DB
}

func sessionPayload(user *models.User) fiber.Map {
	return fiber.Map{"user": user, "token": user.Token}
}

// Signup handles POST /api/user/signup
// @Summary Create an account
// @Tags User
// @Accept json
// @Produce json
// @Param body body services.SignupInput true "Account"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user/signup [post]
func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var body services.SignupInput
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, "user.signup")
	}

	user, err := services.Signup(c.UserContext(), h.DB, body)
	if err != nil {
		return respondError(c, err, "user.signup")
	}
	return utils.SuccessResponse(c, sessionPayload(user), fiber.StatusCreated)
}

// Signin handles POST /api/user/signin
// @Summary Sign in
// @Tags User
// @Accept json
// @Produce json
// @Param body body services.SigninInput true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user/signin [post]
func (h *UserHandler) Signin(c *fiber.Ctx) error {
	var body services.SigninInput
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, "user.signin")
	}

	user, err := services.Signin(c.UserContext(), h.DB, body)
	if err != nil {
		return respondError(c, err, "user.signin")
	}
	return utils.SuccessResponse(c, sessionPayload(user), fiber.StatusOK)
}

// Me handles GET /api/user/me
// @Summary Current user
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /user/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.Map{"user": middleware.CurrentUser(c)}, fiber.StatusOK)
}

// UpdateUsername handles PATCH /api/user/username
// @Summary Change username
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "New username"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user/username [patch]
func (h *UserHandler) UpdateUsername(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, "user.username")
	}

	user, err := services.UpdateUsername(c.UserContext(), h.DB, middleware.CurrentUserID(c), body.Username)
	if err != nil {
		return respondError(c, err, "user.username")
	}
	return utils.MutationSuccessResponse(c, "Username updated", fiber.Map{"user": user})
}

// UpdatePreferences handles PATCH /api/user/preferences
// @Summary Update preferences
// @Description Update theme, appearance mode and notation icon
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PreferencesInput true "Preferences"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user/preferences [patch]
func (h *UserHandler) UpdatePreferences(c *fiber.Ctx) error {
	var body services.PreferencesInput
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, "user.preferences")
	}

	user, err := services.UpdatePreferences(c.UserContext(), h.DB, middleware.CurrentUserID(c), body)
	if err != nil {
		return respondError(c, err, "user.preferences")
	}
	return utils.MutationSuccessResponse(c, "Preferences updated", fiber.Map{"user": user})
}

// UpdateAvatar handles PATCH /api/user/avatar
// @Summary Set avatar URL
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "Avatar URL"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user/avatar [patch]
func (h *UserHandler) UpdateAvatar(c *fiber.Ctx) error {
	var body struct {
		AvatarURL string `json:"avatarURL"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, "user.avatar")
	}

	user, err := services.UpdateAvatar(c.UserContext(), h.DB, middleware.CurrentUserID(c), body.AvatarURL)
	if err != nil {
		return respondError(c, err, "user.avatar")
	}
	return utils.MutationSuccessResponse(c, "Avatar updated", fiber.Map{"user": user})
}

// DeleteUser handles DELETE /api/user
// @Summary Delete account
// @Description Verify the password, then delete the account and everything it owns
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "Password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, "user.delete")
	}

	deleted, err := services.DeleteUser(c.UserContext(), h.DB, middleware.CurrentUserID(c), body.Password)
	if err != nil {
		return respondError(c, err, "user.delete")
	}
	return utils.MutationSuccessResponse(c, "Account deleted", fiber.Map{"deleted": deleted})
}
