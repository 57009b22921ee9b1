// handlers/profile.go
package handlers

import (
	"travel-companion-system/middleware"
	"travel-companion-system/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func SetupProfileRoutes(
	app *fiber.App,
	users *services.UserService,
	subscriptions *services.SubscriptionService,
	logger *zap.Logger,
) {
	secured := app.Group("/s", middleware.UserContextMiddleware(logger))

	secured.Get("/profile", users.GetMe)
	secured.Put("/profile", users.UpdateMe)
	secured.Post("/profile/avatar", users.UploadAvatar)

	secured.Get("/subscription", subscriptions.GetStatus)
}
