package server

import (
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an unverified account and email a verification link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{firstName=string,surname=string,email=string,password=string,gender=string,birthdate=string} true "Registration request"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		FirstName string `json:"firstName"`
		Surname   string `json:"surname"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Gender    string `json:"gender"`
		Birthdate string `json:"birthdate"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	err := s.authService.Register(c.UserContext(), service.RegisterInput{
		FirstName: req.FirstName,
		Surname:   req.Surname,
		Email:     req.Email,
		Password:  req.Password,
		Gender:    req.Gender,
		Birthdate: req.Birthdate,
		BaseURL:   s.baseURL(c),
	})
	if err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Verification email sent.")
}

// VerifyEmail handles POST and GET /api/auth/verify-email/:verification_token
// @Summary Verify email
// @Description Redeem a verification token and mark the account verified
// @Tags auth
// @Produce json
// @Param verification_token path string true "Verification token"
// @Success 200 {object} models.ProfileSummary
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/verify-email/{verification_token} [post]
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	summary, err := s.authService.VerifyEmail(c.UserContext(), c.Params("verification_token"))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Check credentials and set the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login request"
// @Success 201 {object} models.ProfileSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := s.authService.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	s.setSessionCookie(c, result.Session)
	return c.Status(fiber.StatusCreated).JSON(result.User)
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the current session and clear its cookie
// @Tags auth
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	s.optionalSession(c)
	s.authService.Logout(c.UserContext(), currentSession(c))
	s.clearSessionCookie(c)
	return message(c, fiber.StatusOK, "User logged out")
}
