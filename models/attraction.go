package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AttractionCategoryLandmark = "landmark"
	AttractionCategoryMuseum   = "museum"
	AttractionCategoryNature   = "nature"
	AttractionCategoryFood     = "food"
	AttractionCategoryOther    = "other"
)

type Attraction struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CityID      string `json:"city_id" gorm:"index;not null"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Category    string `json:"category" gorm:"type:varchar(32);default:'other'"`

	// 🖼️ Media
	MainPhotoURL string            `json:"main_photo_url"`
	Photos       []AttractionPhoto `json:"photos,omitempty" gorm:"foreignKey:AttractionID"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Denormalized from reviews on every review write
	AverageRating float64 `json:"average_rating" gorm:"default:0"`
	ReviewCount   int64   `json:"review_count" gorm:"default:0"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	City    *City    `json:"city,omitempty" gorm:"foreignKey:CityID"`
	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:AttractionID"`
}

type AttractionPhoto struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	AttractionID string    `json:"attraction_id" gorm:"index;not null"`
	URL          string    `json:"url" gorm:"not null"`
	Caption      string    `json:"caption"`
	Order        int       `json:"order"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}
