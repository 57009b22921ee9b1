package models

// RankEntry is one row of the computed leaderboard. Ephemeral — the
// ordering is recomputed from visit counts on every request.
type RankEntry struct {
	Rank               int     `json:"rank"`
	UserID             string  `json:"user_id"`
	DisplayName        string  `json:"display_name"`
	AvatarURL          *string `json:"avatar_url,omitempty"`
	VerifiedVisitCount int64   `json:"verified_visit_count"`
	Badge              *string `json:"badge"`
}

// UserRankStats answers "where does this user stand" without requiring
// the full entry list. Rank and Badge are nil for ineligible users and
// for eligible users with zero verified visits.
type UserRankStats struct {
	UserID             string  `json:"user_id"`
	Rank               *int    `json:"rank"`
	VerifiedVisitCount int64   `json:"verified_visit_count"`
	TotalVisitCount    int64   `json:"total_visit_count"`
	Badge              *string `json:"badge"`
	IsEligible         bool    `json:"is_eligible"`
}

type Leaderboard struct {
	Entries           []RankEntry    `json:"entries"`
	CurrentUser       *UserRankStats `json:"current_user,omitempty"`
	TotalParticipants int64          `json:"total_participants"`
}
