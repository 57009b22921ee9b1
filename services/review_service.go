package services

import (
	"errors"

	"travel-companion-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReviewService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewReviewService(db *gorm.DB, logger *zap.Logger) *ReviewService {
	return &ReviewService{DB: db, Logger: logger}
}

type reviewBody struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// CreateReview adds the caller's review of an attraction. One review per
// user per attraction; the unique index backs this up.
func (s *ReviewService) CreateReview(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	attractionID := c.Params("id")

	var body reviewBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if body.Rating < 1 || body.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rating must be between 1 and 5"})
	}

	var existing models.Review
	err := s.DB.Where("attraction_id = ? AND user_id = ?", attractionID, userID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "you already reviewed this attraction"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to check existing review"})
	}

	review := models.Review{
		ID:           uuid.NewString(),
		AttractionID: attractionID,
		UserID:       userID,
		Rating:       body.Rating,
		Title:        body.Title,
		Comment:      body.Comment,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recomputeAverageRating(tx, attractionID)
	})
	if err != nil {
		s.Logger.Error("failed to create review", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create review"})
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetReviewsByAttraction lists reviews for one attraction.
func (s *ReviewService) GetReviewsByAttraction(c *fiber.Ctx) error {
	var reviews []models.Review
	err := s.DB.WithContext(c.UserContext()).
		Preload("User").
		Where("attraction_id = ?", c.Params("id")).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch reviews"})
	}
	return c.JSON(reviews)
}

// UpdateReview edits the caller's own review.
func (s *ReviewService) UpdateReview(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	reviewID := c.Params("review_id")

	var review models.Review
	if err := s.DB.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "review not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch review"})
	}
	if review.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your review"})
	}

	var body reviewBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if body.Rating != 0 {
		if body.Rating < 1 || body.Rating > 5 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rating must be between 1 and 5"})
		}
		review.Rating = body.Rating
	}
	if body.Title != "" {
		review.Title = body.Title
	}
	if body.Comment != "" {
		review.Comment = body.Comment
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		return recomputeAverageRating(tx, review.AttractionID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update review"})
	}
	return c.JSON(review)
}

// DeleteReview removes the caller's own review.
func (s *ReviewService) DeleteReview(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	reviewID := c.Params("review_id")

	var review models.Review
	if err := s.DB.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "review not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch review"})
	}
	if review.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your review"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recomputeAverageRating(tx, review.AttractionID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete review"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// recomputeAverageRating refreshes the denormalized rating fields inside
// the same transaction as the review write that changed them.
func recomputeAverageRating(tx *gorm.DB, attractionID string) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("attraction_id = ?", attractionID).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Attraction{}).
		Where("id = ?", attractionID).
		Updates(map[string]interface{}{
			"average_rating": agg.Avg,
			"review_count":   agg.Count,
		}).Error
}
