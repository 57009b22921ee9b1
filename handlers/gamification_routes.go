// handlers/gamification_routes.go
package handlers

import (
	"errors"
	"strconv"

	"travel-companion-system/middleware"
	"travel-companion-system/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
)

// SetupGamificationRoutes wires the leaderboard and badge read models.
// The engines themselves are stateless; the snapshot cache sits here, at
// the handler seam, and only serves anonymous reads (per-user stats are
// always computed fresh).
func SetupGamificationRoutes(
	app *fiber.App,
	ranking *services.RankingService,
	badges *services.BadgeProgressService,
	cache *services.LeaderboardCache,
	logger *zap.Logger,
) {
	withUser := middleware.UserContextMiddleware(logger)

	// 🔓 Public leaderboard — user context attached when present, so the
	// response can include the caller's own position.
	app.Get("/leaderboard", withUser, func(c *fiber.Ctx) error {
		limit := parseLimit(c.Query("limit"), defaultLeaderboardLimit)
		requestingUserID, _ := c.Locals("user_id").(string)

		ctx := c.UserContext()
		if requestingUserID == "" {
			if board, ok := cache.Get(ctx, limit); ok {
				return c.JSON(board)
			}
		}

		board, err := ranking.GetLeaderboard(ctx, limit, requestingUserID)
		if err != nil {
			return serviceError(c, err)
		}

		if requestingUserID == "" {
			cache.Set(ctx, limit, board)
		}
		return c.JSON(board)
	})

	app.Get("/leaderboard/top", func(c *fiber.Ctx) error {
		n := parseLimit(c.Query("n"), 3)
		entries, err := ranking.GetTopUsers(c.UserContext(), n)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(entries)
	})

	secured := app.Group("/s", withUser)

	secured.Get("/leaderboard/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		stats, err := ranking.GetUserRankStats(c.UserContext(), userID, nil)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(stats)
	})

	secured.Get("/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		ctx := c.UserContext()

		summary, err := badges.GetSummary(ctx, userID)
		if err != nil {
			return serviceError(c, err)
		}
		progress, err := badges.GetAllProgress(ctx, userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"summary":  summary,
			"progress": progress,
		})
	})

	secured.Get("/badges/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		progress, err := badges.GetAllProgress(c.UserContext(), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(progress)
	})

	secured.Get("/badges/progress/:locationType/:locationId", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		progress, err := badges.GetProgress(c.UserContext(), userID,
			c.Params("locationType"), c.Params("locationId"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(progress)
	})

	secured.Get("/badges/summary", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		summary, err := badges.GetSummary(c.UserContext(), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(summary)
	})
}

// parseLimit clamps a client-supplied page size to a sane positive bound
// before the engines ever see it.
func parseLimit(raw string, fallback int) int {
	limit := fallback
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	return limit
}

// serviceError maps the service error taxonomy onto HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidArgument):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "store unavailable"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
