package services

import (
	"errors"

	"travel-companion-system/models"
	"travel-companion-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LocationService serves the continent → country → city hierarchy the
// badge engine aggregates over.
type LocationService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewLocationService(db *gorm.DB, logger *zap.Logger) *LocationService {
	return &LocationService{DB: db, Logger: logger}
}

func (s *LocationService) GetContinents(c *fiber.Ctx) error {
	var continents []models.Continent
	if err := s.DB.WithContext(c.UserContext()).Order("name ASC").Find(&continents).Error; err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch continents"})
	}
	return c.JSON(continents)
}

func (s *LocationService) GetCountries(c *fiber.Ctx) error {
	q := s.DB.WithContext(c.UserContext())
	if continentID := c.Query("continent_id"); continentID != "" {
		q = q.Where("continent_id = ?", continentID)
	}
	var countries []models.Country
	if err := q.Order("name ASC").Find(&countries).Error; err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch countries"})
	}
	return c.JSON(countries)
}

func (s *LocationService) GetCities(c *fiber.Ctx) error {
	q := s.DB.WithContext(c.UserContext())
	if countryID := c.Query("country_id"); countryID != "" {
		q = q.Where("country_id = ?", countryID)
	}
	var cities []models.City
	if err := q.Order("name ASC").Find(&cities).Error; err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch cities"})
	}
	return c.JSON(cities)
}

func (s *LocationService) GetCityByID(c *fiber.Ctx) error {
	var city models.City
	err := s.DB.WithContext(c.UserContext()).
		Preload("Country").
		Preload("Attractions").
		First(&city, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "city not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to fetch city"})
	}
	return c.JSON(city)
}

// CreateCity adds a city under a country (admin). Names arrive from a
// curation spreadsheet in whatever casing the editor used, so they get
// normalized before storage.
func (s *LocationService) CreateCity(c *fiber.Ctx) error {
	var body struct {
		CountryID string  `json:"country_id"`
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if body.CountryID == "" || body.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "country_id and name are required"})
	}

	var country models.Country
	if err := s.DB.First(&country, "id = ?", body.CountryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "country not found"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "failed to look up country"})
	}

	name := utils.NormalizePlaceName(body.Name)
	city := models.City{
		ID:        uuid.NewString(),
		CountryID: country.ID,
		Name:      name,
		Slug:      slug.Make(country.Name + "-" + name),
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
	}
	if err := s.DB.Create(&city).Error; err != nil {
		s.Logger.Error("failed to create city", zap.String("name", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create city"})
	}
	return c.Status(fiber.StatusCreated).JSON(city)
}
