package models

import (
	"time"
)

// SubscriptionEvent mirrors subscription state changes pulled from the
// billing service by the sync worker. Receipt/IAP validation happens over
// there; this service only consumes the outcome.
type SubscriptionEvent struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string     `json:"user_id" gorm:"index;not null"`
	Tier      string     `json:"tier" gorm:"type:varchar(16);not null"`
	Status    string     `json:"status" gorm:"type:varchar(16);not null"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Billing-side identifiers, kept for support/debugging
	ExternalEventID string `json:"external_event_id" gorm:"uniqueIndex;not null"`
	Provider        string `json:"provider" gorm:"type:varchar(32)"` // app_store | play_store | stripe

	OccurredAt time.Time `json:"occurred_at" gorm:"index;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
