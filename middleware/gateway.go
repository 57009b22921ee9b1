// middleware/gateway.go
package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GatewayAuthMiddleware validates the shared service token the Gateway
// attaches to every forwarded request. Direct traffic without it is
// rejected before any route runs.
func GatewayAuthMiddleware(logger *zap.Logger) fiber.Handler {
	expectedToken := os.Getenv("TRAVEL_SERVICE_TOKEN")
	if expectedToken == "" {
		logger.Fatal("TRAVEL_SERVICE_TOKEN is not set — service cannot authenticate Gateway")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("X-Service-Token")
		if authHeader == "" {
			// Some gateway deployments send it as a Bearer token instead.
			authHeader = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		}
		if authHeader == "" {
			logger.Warn("missing gateway token", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		if authHeader != expectedToken {
			logger.Warn("invalid gateway token", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		return c.Next()
	}
}
