package middleware

import (
	"devprep/backend/config"
	"devprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware trusts the user_id claim of a token issued by the identity service.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(utils.UserIDLocal, userID)
		return c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := utils.CurrentUserID(c)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !cfg.IsAdmin(userID) {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}
		return c.Next()
	}
}
