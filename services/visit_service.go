package services

import (
	"context"
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

// VisitService owns the visit log: the write side of everything the
// ranking and badge engines read.
type VisitService struct {
	DB     *gorm.DB
	Cache  *LeaderboardCache
	Logger *zap.Logger
}

func NewVisitService(db *gorm.DB, cache *LeaderboardCache, logger *zap.Logger) *VisitService {
	return &VisitService{DB: db, Cache: cache, Logger: logger}
}

// LogVisit records that the caller has been to an attraction. A photo
// makes the visit a verification candidate; the verdict comes back later
// through the verification sync worker. Without a photo the visit stays
// self-reported — it still counts toward badge progress.
func (s *VisitService) LogVisit(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	attractionID := c.FormValue("attraction_id")
	if attractionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "attraction_id is required"})
	}

	var attraction models.Attraction
	if err := s.DB.First(&attraction, "id = ?", attractionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "attraction not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to look up attraction"})
	}

	var existing models.Visit
	err := s.DB.Where("user_id = ? AND attraction_id = ?", userID, attractionID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "attraction already visited"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to check existing visit"})
	}

	visitDate := time.Now()
	if raw := c.FormValue("visit_date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "visit_date must be RFC3339"})
		}
		visitDate = parsed
	}

	visit := models.Visit{
		ID:                 uuid.NewString(),
		UserID:             userID,
		AttractionID:       attractionID,
		VisitDate:          visitDate,
		Notes:              c.FormValue("notes"),
		VerificationStatus: models.VerificationNone,
	}

	if photoFile, err := c.FormFile("photo"); err == nil && photoFile.Size > 0 {
		ext := filepath.Ext(photoFile.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "visits/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(photoFile, key)
		if err != nil {
			s.Logger.Error("visit photo upload failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload photo"})
		}
		visit.PhotoURL = &url
		visit.VerificationStatus = models.VerificationPending
	}

	if err := s.DB.Create(&visit).Error; err != nil {
		s.Logger.Error("failed to create visit", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to log visit"})
	}

	// New visit data → any cached leaderboard snapshot is stale.
	s.Cache.Invalidate(c.UserContext())

	return c.Status(fiber.StatusCreated).JSON(visit)
}

// GetMyVisits lists the caller's visit log, newest first.
func (s *VisitService) GetMyVisits(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var visits []models.Visit
	err := s.DB.WithContext(c.UserContext()).
		Preload("Attraction").
		Where("user_id = ?", userID).
		Order("visit_date DESC").
		Find(&visits).Error
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch visits"})
	}
	return c.JSON(visits)
}

// DeleteVisit removes one of the caller's visits.
func (s *VisitService) DeleteVisit(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	result := s.DB.Where("id = ? AND user_id = ?", c.Params("id"), userID).Delete(&models.Visit{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete visit"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "visit not found"})
	}

	s.Cache.Invalidate(c.UserContext())
	return c.SendStatus(fiber.StatusNoContent)
}

// ApplyVerificationVerdict flips a visit's verified flag based on the
// photo-verification outcome. Called by the verification sync worker.
func (s *VisitService) ApplyVerificationVerdict(ctx context.Context, visitID string, approved bool) error {
	updates := map[string]interface{}{
		"verification_status": models.VerificationRejected,
		"is_verified":         false,
	}
	if approved {
		updates["verification_status"] = models.VerificationApproved
		updates["is_verified"] = true
	}

	result := s.DB.WithContext(ctx).
		Model(&models.Visit{}).
		Where("id = ?", visitID).
		Updates(updates)
	if result.Error != nil {
		return translateStoreErr(result.Error, "apply verification verdict")
	}
	if result.RowsAffected == 0 {
		return translateStoreErr(gorm.ErrRecordNotFound, "visit "+visitID)
	}

	if approved {
		// Verified counts drive the leaderboard; drop the snapshot.
		s.Cache.Invalidate(ctx)
	}
	return nil
}

// PendingVerifications returns visits with photos awaiting a verdict,
// for the sync worker to submit.
func (s *VisitService) PendingVerifications(ctx context.Context, limit int) ([]models.Visit, error) {
	var visits []models.Visit
	err := s.DB.WithContext(ctx).
		Where("verification_status = ?", models.VerificationPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&visits).Error
	if err != nil {
		return nil, translateStoreErr(err, "list pending verifications")
	}
	return visits, nil
}
