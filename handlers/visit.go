// handlers/visit.go
package handlers

import (
	"travel-companion-system/middleware"
	"travel-companion-system/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func SetupVisitRoutes(app *fiber.App, visits *services.VisitService, logger *zap.Logger) {
	secured := app.Group("/s", middleware.UserContextMiddleware(logger))

	secured.Post("/visits", visits.LogVisit)
	secured.Get("/visits", visits.GetMyVisits)
	secured.Delete("/visits/:id", visits.DeleteVisit)
}
