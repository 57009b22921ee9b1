package services

import (
	"context"
	"errors"
	"time"

	"travel-companion-system/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionService consumes subscription state. Purchases and receipt
// validation live in the billing service; state arrives here through the
// subscription sync worker and only gets read for premium gating.
type SubscriptionService struct {
	DB     *gorm.DB
	Cache  *LeaderboardCache
	Logger *zap.Logger
}

func NewSubscriptionService(db *gorm.DB, cache *LeaderboardCache, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{DB: db, Cache: cache, Logger: logger}
}

// GetStatus reports the caller's subscription state and whether the
// premium features (leaderboard participation) are unlocked.
func (s *SubscriptionService) GetStatus(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var user models.User
	if err := s.DB.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch subscription"})
	}

	return c.JSON(fiber.Map{
		"tier":       user.SubscriptionTier,
		"status":     user.SubscriptionStatus,
		"expires_at": user.SubscriptionExpiresAt,
		"is_premium": user.IsPremium(),
	})
}

// ApplyEvent records a billing event and moves the user's subscription
// state accordingly. Events are idempotent on their billing-side ID, so
// the sync worker can safely re-deliver.
func (s *SubscriptionService) ApplyEvent(ctx context.Context, event *models.SubscriptionEvent) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_event_id"}},
			DoNothing: true,
		}).Create(event)
		if result.Error != nil {
			return translateStoreErr(result.Error, "record subscription event")
		}
		if result.RowsAffected == 0 {
			// Already applied on a previous poll.
			return nil
		}

		updates := map[string]interface{}{
			"subscription_tier":       event.Tier,
			"subscription_status":     event.Status,
			"subscription_expires_at": event.ExpiresAt,
		}
		if err := tx.Model(&models.User{}).Where("id = ?", event.UserID).Updates(updates).Error; err != nil {
			return translateStoreErr(err, "apply subscription state")
		}

		s.Logger.Info("subscription state applied",
			zap.String("user_id", event.UserID),
			zap.String("tier", event.Tier),
			zap.String("status", event.Status))

		// Eligibility may have changed either way.
		s.Cache.Invalidate(ctx)
		return nil
	})
}

// ExpireLapsed flips premium users whose expiry has passed to expired.
// Run from the maintenance scheduler so gating never depends on the
// billing service being quick about cancellation events.
func (s *SubscriptionService) ExpireLapsed(ctx context.Context) (int64, error) {
	result := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("subscription_tier = ? AND subscription_status = ? AND subscription_expires_at IS NOT NULL AND subscription_expires_at < ?",
			models.SubscriptionTierPremium, models.SubscriptionStatusActive, time.Now()).
		Update("subscription_status", models.SubscriptionStatusExpired)
	if result.Error != nil {
		return 0, translateStoreErr(result.Error, "expire lapsed subscriptions")
	}

	if result.RowsAffected > 0 {
		s.Logger.Info("expired lapsed premium subscriptions", zap.Int64("count", result.RowsAffected))
		s.Cache.Invalidate(ctx)
	}
	return result.RowsAffected, nil
}
