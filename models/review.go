package models

import (
	"time"
)

// Review of an attraction. One per (user, attraction); the attraction's
// AverageRating/ReviewCount are recomputed inside the same transaction as
// every review write.
type Review struct {
	ID           string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	AttractionID string `json:"attraction_id" gorm:"uniqueIndex:idx_reviews_user_attraction;index;not null"`
	UserID       string `json:"user_id" gorm:"uniqueIndex:idx_reviews_user_attraction;not null"`

	Rating  int    `json:"rating" gorm:"check:rating >= 1 and rating <= 5"`
	Title   string `json:"title"`
	Comment string `json:"comment" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type Favorite struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID       string    `json:"user_id" gorm:"uniqueIndex:idx_favorites_user_attraction;not null"`
	AttractionID string    `json:"attraction_id" gorm:"uniqueIndex:idx_favorites_user_attraction;index;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`

	Attraction *Attraction `json:"attraction,omitempty" gorm:"foreignKey:AttractionID"`
}
