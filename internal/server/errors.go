package server

import (
	"socialhub/internal/middleware"
	"socialhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler is the terminal serializer for every error a handler or
// middleware returns.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	status := models.StatusOf(err)
	log := middleware.LoggerFromContext(c.UserContext())
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	return models.RespondWithError(c, err, !s.config.IsProduction())
}

// NotFound answers any request no route matched.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return models.NewNotFoundError("Not found - " + c.OriginalURL())
}
