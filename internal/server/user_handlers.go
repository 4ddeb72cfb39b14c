package server

import (
	"fmt"

	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get current user
// @Description Full record of the authenticated user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PATCH /api/users/me
// @Summary Update current user
// @Description Partial update; omitted or blank fields keep their value
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{firstName=string,surname=string,email=string,gender=string,birthdate=string} true "Fields to change"
// @Success 200 {object} models.ProfileSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/me [patch]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		FirstName *string `json:"firstName"`
		Surname   *string `json:"surname"`
		Email     *string `json:"email"`
		Gender    *string `json:"gender"`
		Birthdate *string `json:"birthdate"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	summary, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:    currentUserID(c),
		FirstName: req.FirstName,
		Surname:   req.Surname,
		Email:     req.Email,
		Gender:    req.Gender,
		Birthdate: req.Birthdate,
	})
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get user profile
// @Description Full record for signed-in callers, profile summary otherwise
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	s.optionalSession(c)
	full := currentSession(c) != nil

	user, err := s.userService.GetUserProfile(c.UserContext(), id, full)
	if err != nil {
		return err
	}
	if !full {
		return c.JSON(user.Summary())
	}
	return c.JSON(user)
}

// FollowUnfollowUser handles PATCH /api/users/:id
// @Summary Follow or unfollow
// @Description Toggle whether the current user follows the given user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [patch]
func (s *Server) FollowUnfollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	followed, err := s.userService.ToggleFollow(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return err
	}
	if followed {
		return message(c, fiber.StatusOK, fmt.Sprintf("User followed : %d", targetID))
	}
	return message(c, fiber.StatusOK, fmt.Sprintf("User unfollowed : %d", targetID))
}

// UpdatePassword handles PATCH /api/users/me/update-password
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{password=string} true "New password"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/update-password [patch]
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := s.userService.UpdatePassword(c.UserContext(), currentUserID(c), req.Password); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Updated password.")
}

// ForgotPassword handles PATCH /api/users/me/forgot-password
// @Summary Request a password reset
// @Description Emails a single-use reset link
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/me/forgot-password [patch]
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	email, err := s.userService.ForgotPassword(c.UserContext(), service.ForgotPasswordInput{
		Email:   req.Email,
		BaseURL: s.baseURL(c),
	})
	if err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Password reset link sent to email : "+email)
}

// ResetPassword handles PATCH /api/users/me/reset-password/:resetToken
// @Summary Reset password
// @Tags users
// @Accept json
// @Produce json
// @Param resetToken path string true "Reset token"
// @Param request body object{password=string} true "New password"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/me/reset-password/{resetToken} [patch]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := s.userService.ResetPassword(c.UserContext(), c.Params("resetToken"), req.Password); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Password successfully reset.")
}

// DeleteProfile handles DELETE /api/users/me/delete-profile
// @Summary Delete account
// @Description Removes the account, its posts, likes and follow edges
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{password=string} true "Current password"
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me/delete-profile [delete]
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	err := s.userService.DeleteProfile(c.UserContext(), service.DeleteProfileInput{
		UserID:   currentUserID(c),
		Password: req.Password,
		Session:  currentSession(c),
	})
	if err != nil {
		return err
	}

	s.clearSessionCookie(c)
	return message(c, fiber.StatusOK, "User profile deleted.")
}
