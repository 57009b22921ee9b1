package models

import (
	"time"
)

const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
	VerificationNone     = "none"
)

// Visit records that a user has been to an attraction. At most one visit
// per (user, attraction) — enforced by the unique index, not by the
// services reading it. IsVerified flips to true only when the external
// photo-verification service approves the submitted photo; unverified
// visits still count toward badge progress, verified ones additionally
// count toward the leaderboard.
type Visit struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID       string    `json:"user_id" gorm:"uniqueIndex:idx_visits_user_attraction;not null"`
	AttractionID string    `json:"attraction_id" gorm:"uniqueIndex:idx_visits_user_attraction;index;not null"`
	VisitDate    time.Time `json:"visit_date" gorm:"not null;index"`

	IsVerified         bool    `json:"is_verified" gorm:"default:false;index"`
	VerificationStatus string  `json:"verification_status" gorm:"type:varchar(16);default:'none'"`
	PhotoURL           *string `json:"photo_url,omitempty"` // verification photo, if submitted

	Notes string `json:"notes,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Attraction *Attraction `json:"attraction,omitempty" gorm:"foreignKey:AttractionID"`
}
