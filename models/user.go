package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SubscriptionTierFree    = "free"
	SubscriptionTierPremium = "premium"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

// User is the local account record. Identity is issued by the auth
// service; subscription fields are mirrored from the billing service by
// the subscription sync worker.
type User struct {
	ID          string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	DisplayName *string `json:"display_name,omitempty"`
	Email       string  `json:"email" gorm:"uniqueIndex;not null"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Bio         *string `json:"bio,omitempty"`

	SubscriptionTier      string     `json:"subscription_tier" gorm:"type:varchar(16);default:'free';index"`
	SubscriptionStatus    string     `json:"subscription_status" gorm:"type:varchar(16);default:'active';index"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`

	LastSeen *time.Time `json:"last_seen,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsPremium reports whether the user currently holds an active premium
// subscription. This is the gate for leaderboard participation.
func (u *User) IsPremium() bool {
	return u.SubscriptionTier == SubscriptionTierPremium &&
		u.SubscriptionStatus == SubscriptionStatusActive
}
