package models

// Progress tiers, derived from the percentage of a location's attractions
// the user has visited.
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

// Leaderboard badges, derived from rank position.
const (
	BadgeGoldChampion   = "gold_champion"
	BadgeSilverExplorer = "silver_explorer"
	BadgeBronzeVoyager  = "bronze_voyager"
	BadgeEliteTraveler  = "elite_traveler"
	BadgeRisingStar     = "rising_star"
)

// BadgeProgress is computed per request and never persisted.
type BadgeProgress struct {
	LocationID   string `json:"location_id"`
	LocationType string `json:"location_type"`
	LocationName string `json:"location_name"`

	VisitedCount    int64   `json:"visited_count"`
	TotalCount      int64   `json:"total_count"`
	ProgressPercent float64 `json:"progress_percent"`

	CurrentTier        *string `json:"current_tier"`
	NextTier           *string `json:"next_tier"`
	ProgressToNextTier float64 `json:"progress_to_next_tier"`
}

// AllProgress groups per-location progress by hierarchy level. Locations
// the user has never visited are omitted.
type AllProgress struct {
	Cities     []BadgeProgress `json:"cities"`
	Countries  []BadgeProgress `json:"countries"`
	Continents []BadgeProgress `json:"continents"`
}

// EarnedBadge is a location whose progress crossed at least the bronze
// threshold, with the visit date used to order the earned timeline.
type EarnedBadge struct {
	LocationID   string `json:"location_id"`
	LocationType string `json:"location_type"`
	LocationName string `json:"location_name"`
	Tier         string `json:"tier"`
	// Latest visit date in the location — an approximation of the
	// earn moment (the exact threshold-crossing visit is not tracked).
	EarnedAt string `json:"earned_at"`
}

type BadgeSummary struct {
	TotalBadges  int            `json:"total_badges"`
	BadgesByTier map[string]int `json:"badges_by_tier"`
	BadgesByType map[string]int `json:"badges_by_type"`
	MostRecent   *EarnedBadge   `json:"most_recent_badge"`
}
