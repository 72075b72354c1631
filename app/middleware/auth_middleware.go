package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"

	"zaplinks/app/dto"
	"zaplinks/config"
)

// APIKeyAuth guards the management API. Authentication itself is handled
// upstream by the identity proxy; this middleware checks the shared API
// key and lifts the forwarded subject into request locals.
func APIKeyAuth(cfg *config.SecurityConfig) fiber.Handler {
	header := cfg.APIKeyHeader
	if header == "" {
		header = "X-API-Key"
	}

	return func(c fiber.Ctx) error {
		if cfg.RequireAPIKey {
			provided := c.Get(header)
			if !keyAllowed(provided, cfg.AllowedAPIKeys) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
					Success: false,
					Message: "API key is required",
					Error: dto.ErrorDetail{
						Code: "MISSING_API_KEY",
					},
				})
			}
		}

		subject := c.Get("X-User-ID")
		if subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "User identity is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_USER_ID",
				},
			})
		}
		c.Locals("user_id", subject)

		return c.Next()
	}
}

func keyAllowed(provided string, allowed []string) bool {
	if provided == "" {
		return false
	}
	for _, key := range allowed {
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
			return true
		}
	}
	return false
}
