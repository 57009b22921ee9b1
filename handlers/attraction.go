// handlers/attraction.go
package handlers

import (
	"travel-companion-system/middleware"
	"travel-companion-system/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func SetupAttractionRoutes(
	app *fiber.App,
	attractions *services.AttractionService,
	locations *services.LocationService,
	reviews *services.ReviewService,
	favorites *services.FavoriteService,
	logger *zap.Logger,
) {
	// 🔓 Public catalog — no user context, still behind Gateway auth
	app.Get("/attractions", attractions.GetAttractions)
	app.Get("/attractions/minimal", attractions.GetMinimalAttractions)
	app.Get("/attractions/:id", attractions.GetAttractionByID)
	app.Get("/attractions/:id/reviews", reviews.GetReviewsByAttraction)

	app.Get("/locations/continents", locations.GetContinents)
	app.Get("/locations/countries", locations.GetCountries)
	app.Get("/locations/cities", locations.GetCities)
	app.Get("/locations/cities/:id", locations.GetCityByID)

	// 🔐 Secured routes — require user context
	secured := app.Group("/s", middleware.UserContextMiddleware(logger))

	secured.Post("/attractions/:id/reviews", reviews.CreateReview)
	secured.Put("/reviews/:review_id", reviews.UpdateReview)
	secured.Delete("/reviews/:review_id", reviews.DeleteReview)

	secured.Get("/favorites", favorites.GetMyFavorites)
	secured.Post("/attractions/:id/favorite", favorites.ToggleFavorite)

	// Admin curation endpoints
	admin := secured.Group("/admin", middleware.RequireRole("admin"))
	admin.Post("/attractions", attractions.CreateAttraction)
	admin.Put("/attractions/:id", attractions.UpdateAttraction)
	admin.Patch("/attractions/:id", attractions.UpdateAttraction)
	admin.Delete("/attractions/:id", attractions.DeleteAttraction)
	admin.Post("/cities", locations.CreateCity)
}
