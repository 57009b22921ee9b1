package services

import (
	"errors"
	"path/filepath"
	"time"

	"travel-companion-system/models"
	"travel-companion-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{DB: db, Logger: logger}
}

// GetMe returns the caller's profile.
func (s *UserService) GetMe(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var user models.User
	if err := s.DB.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch profile"})
	}

	now := time.Now()
	s.DB.Model(&user).Update("last_seen", now)

	return c.JSON(user)
}

// UpdateMe edits display name and bio.
func (s *UserService) UpdateMe(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var body struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch profile"})
	}

	if body.DisplayName != nil {
		user.DisplayName = body.DisplayName
	}
	if body.Bio != nil {
		user.Bio = body.Bio
	}
	if err := s.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update profile"})
	}
	return c.JSON(user)
}

// UploadAvatar stores a new avatar in R2 and points the profile at it.
func (s *UserService) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if file.Size > 10*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar too large (max 10MB)"})
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".png"
	}
	key := "avatars/" + uuid.NewString() + ext
	url, err := utils.UploadFileToR2(file, key)
	if err != nil {
		s.Logger.Error("avatar upload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload avatar"})
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", url).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save avatar"})
	}
	return c.JSON(fiber.Map{"avatar_url": url})
}
