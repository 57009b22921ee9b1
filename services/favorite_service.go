package services

import (
	"errors"

	"travel-companion-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FavoriteService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewFavoriteService(db *gorm.DB, logger *zap.Logger) *FavoriteService {
	return &FavoriteService{DB: db, Logger: logger}
}

// GetMyFavorites lists the caller's saved attractions.
func (s *FavoriteService) GetMyFavorites(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var favorites []models.Favorite
	err := s.DB.WithContext(c.UserContext()).
		Preload("Attraction").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch favorites"})
	}
	return c.JSON(favorites)
}

// ToggleFavorite saves or removes an attraction from the caller's list
// and reports the resulting state.
func (s *FavoriteService) ToggleFavorite(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	attractionID := c.Params("id")

	var attraction models.Attraction
	if err := s.DB.First(&attraction, "id = ?", attractionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "attraction not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to look up attraction"})
	}

	var existing models.Favorite
	err := s.DB.Where("user_id = ? AND attraction_id = ?", userID, attractionID).First(&existing).Error
	switch {
	case err == nil:
		if err := s.DB.Delete(&existing).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to remove favorite"})
		}
		return c.JSON(fiber.Map{"favorited": false})
	case errors.Is(err, gorm.ErrRecordNotFound):
		favorite := models.Favorite{
			ID:           uuid.NewString(),
			UserID:       userID,
			AttractionID: attractionID,
		}
		if err := s.DB.Create(&favorite).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save favorite"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"favorited": true})
	default:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to check favorite"})
	}
}
