package server

import (
	"socialhub/internal/middleware"
	"socialhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired rejects requests without a valid, unrevoked session cookie.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessionCookie)
		if token == "" {
			return models.NewUnauthorizedError("Not authorized, no token.")
		}
		return s.authenticate(c, token)
	}
}

// optionalSession attaches the session when a valid cookie is present and
// otherwise lets the request through anonymously.
func (s *Server) optionalSession(c *fiber.Ctx) {
	token := c.Cookies(sessionCookie)
	if token == "" {
		return
	}
	claims, user, err := s.authService.Authenticate(c.UserContext(), token)
	if err != nil {
		return
	}
	c.Locals(localUserID, user.ID)
	c.Locals(localSession, claims)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
}

func (s *Server) authenticate(c *fiber.Ctx, token string) error {
	claims, user, err := s.authService.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}
	c.Locals(localUserID, user.ID)
	c.Locals(localSession, claims)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
	return c.Next()
}
