package services

import (
	"errors"
	"path/filepath"
	"strconv"

	"travel-companion-system/models"
	"travel-companion-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttractionService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewAttractionService(db *gorm.DB, logger *zap.Logger) *AttractionService {
	return &AttractionService{DB: db, Logger: logger}
}

// MinimalAttraction is the lightweight listing shape for the mobile map.
type MinimalAttraction struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	CityID        string  `json:"city_id"`
	Category      string  `json:"category"`
	MainPhotoURL  string  `json:"main_photo_url"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	AverageRating float64 `json:"average_rating"`
}

// GetAttractions lists attractions, optionally filtered by city.
func (s *AttractionService) GetAttractions(c *fiber.Ctx) error {
	q := s.DB.WithContext(c.UserContext()).Preload("Photos")
	if cityID := c.Query("city_id"); cityID != "" {
		q = q.Where("city_id = ?", cityID)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var attractions []models.Attraction
	if err := q.Order("name ASC").Find(&attractions).Error; err != nil {
		s.Logger.Error("failed to list attractions", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch attractions"})
	}
	return c.JSON(attractions)
}

// GetMinimalAttractions returns the trimmed map-pin listing.
func (s *AttractionService) GetMinimalAttractions(c *fiber.Ctx) error {
	var minimal []MinimalAttraction
	err := s.DB.WithContext(c.UserContext()).
		Model(&models.Attraction{}).
		Select("id, name, slug, city_id, category, main_photo_url, latitude, longitude, average_rating").
		Order("name ASC").
		Scan(&minimal).Error
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch attractions"})
	}
	return c.JSON(minimal)
}

// GetAttractionByID returns one attraction with photos, reviews and city.
func (s *AttractionService) GetAttractionByID(c *fiber.Ctx) error {
	id := c.Params("id")

	var attraction models.Attraction
	err := s.DB.WithContext(c.UserContext()).
		Preload("Photos").
		Preload("Reviews").
		Preload("City").
		First(&attraction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "attraction not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch attraction"})
	}
	return c.JSON(attraction)
}

// CreateAttraction creates an attraction with an optional main photo and
// gallery, uploaded to R2.
func (s *AttractionService) CreateAttraction(c *fiber.Ctx) error {
	name := c.FormValue("name")
	cityID := c.FormValue("city_id")
	if name == "" || cityID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and city_id are required"})
	}

	var city models.City
	if err := s.DB.First(&city, "id = ?", cityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "city not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to look up city"})
	}

	lat, _ := strconv.ParseFloat(c.FormValue("latitude"), 64)
	lng, _ := strconv.ParseFloat(c.FormValue("longitude"), 64)

	attraction := &models.Attraction{
		ID:          uuid.NewString(),
		CityID:      city.ID,
		Name:        name,
		Slug:        slug.Make(city.Name + "-" + name),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category", models.AttractionCategoryOther),
		Latitude:    lat,
		Longitude:   lng,
	}

	if photoFile, err := c.FormFile("main_photo"); err == nil && photoFile.Size > 0 {
		ext := filepath.Ext(photoFile.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "attractions/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(photoFile, key)
		if err != nil {
			s.Logger.Error("main photo upload failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload main photo"})
		}
		attraction.MainPhotoURL = url
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attraction).Error; err != nil {
			return err
		}

		var photos []models.AttractionPhoto
		for i := 0; ; i++ {
			file, err := c.FormFile("photos[" + strconv.Itoa(i) + "]")
			if err != nil {
				break
			}
			ext := filepath.Ext(file.Filename)
			if ext == "" {
				ext = ".jpg"
			}
			key := "attractions/gallery/" + uuid.NewString() + ext
			url, err := utils.UploadFileToR2(file, key)
			if err != nil {
				return err
			}
			photos = append(photos, models.AttractionPhoto{
				ID:           uuid.NewString(),
				AttractionID: attraction.ID,
				URL:          url,
				Order:        i,
			})
		}
		if len(photos) > 0 {
			if err := tx.Create(&photos).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Photos").First(attraction, "id = ?", attraction.ID).Error
	})
	if err != nil {
		s.Logger.Error("failed to create attraction", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(attraction)
}

// UpdateAttraction patches mutable fields.
func (s *AttractionService) UpdateAttraction(c *fiber.Ctx) error {
	id := c.Params("id")

	var attraction models.Attraction
	if err := s.DB.First(&attraction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "attraction not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch attraction"})
	}

	var body struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Category    *string  `json:"category"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if body.Name != nil && *body.Name != "" {
		attraction.Name = *body.Name
		attraction.Slug = slug.Make(*body.Name)
	}
	if body.Description != nil {
		attraction.Description = *body.Description
	}
	if body.Category != nil {
		attraction.Category = *body.Category
	}
	if body.Latitude != nil {
		attraction.Latitude = *body.Latitude
	}
	if body.Longitude != nil {
		attraction.Longitude = *body.Longitude
	}

	if err := s.DB.Save(&attraction).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update attraction"})
	}
	return c.JSON(attraction)
}

// DeleteAttraction soft-deletes.
func (s *AttractionService) DeleteAttraction(c *fiber.Ctx) error {
	id := c.Params("id")
	result := s.DB.Delete(&models.Attraction{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete attraction"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "attraction not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
