package services

import (
	"context"
	"fmt"
	"strings"

	"travel-companion-system/models"

	"go.uber.org/zap"
)

// RankedUser is one row of the eligible ordering as the store returns it.
type RankedUser struct {
	UserID             string  `json:"user_id"`
	DisplayName        *string `json:"display_name"`
	Email              string  `json:"email"`
	AvatarURL          *string `json:"avatar_url"`
	VerifiedVisitCount int64   `json:"verified_visit_count"`
}

// RankingStore is the read surface the ranking service needs. The
// ordering contract: verified visits descending, then user ID ascending —
// the tie-break must be deterministic so repeated calls with no writes in
// between return identical output.
type RankingStore interface {
	// EligibleRanking returns every eligible user (premium, active,
	// at least one verified visit) in leaderboard order.
	EligibleRanking(ctx context.Context) ([]RankedUser, error)
	// EligibleCountWithMoreVisits counts eligible users with strictly
	// more verified visits than the given count.
	EligibleCountWithMoreVisits(ctx context.Context, than int64) (int64, error)
	UserByID(ctx context.Context, userID string) (*models.User, error)
	// VisitCounts returns the user's verified and total visit counts.
	VisitCounts(ctx context.Context, userID string) (verified, total int64, err error)
}

// RankingService computes the global leaderboard and per-user rank stats.
// It is stateless over the store: every call reads the current visit
// counts, nothing is cached here (the snapshot cache lives at the handler
// seam, see LeaderboardCache).
type RankingService struct {
	store  RankingStore
	logger *zap.Logger
}

func NewRankingService(store RankingStore, logger *zap.Logger) *RankingService {
	return &RankingService{store: store, logger: logger}
}

// GetLeaderboard returns the top `limit` eligible users plus, when
// requestingUserID is set, that user's own stats. Both come from the same
// ordered scan, so the entries and the current-user rank always reflect
// one snapshot of the visit data.
func (s *RankingService) GetLeaderboard(ctx context.Context, limit int, requestingUserID string) (*models.Leaderboard, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d: %w", limit, ErrInvalidArgument)
	}

	ordering, err := s.store.EligibleRanking(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RankEntry, 0, min(limit, len(ordering)))
	for i, ru := range ordering {
		if i >= limit {
			break
		}
		rank := i + 1
		entries = append(entries, models.RankEntry{
			Rank:               rank,
			UserID:             ru.UserID,
			DisplayName:        FormatDisplayName(deref(ru.DisplayName), ru.Email),
			AvatarURL:          ru.AvatarURL,
			VerifiedVisitCount: ru.VerifiedVisitCount,
			Badge:              TierForRank(rank),
		})
	}

	board := &models.Leaderboard{
		Entries:           entries,
		TotalParticipants: int64(len(ordering)),
	}

	if requestingUserID != "" {
		stats, err := s.GetUserRankStats(ctx, requestingUserID, ordering)
		if err != nil {
			return nil, err
		}
		board.CurrentUser = stats
	}

	return board, nil
}

// GetTopUsers is a convenience wrapper over GetLeaderboard.
func (s *RankingService) GetTopUsers(ctx context.Context, n int) ([]models.RankEntry, error) {
	board, err := s.GetLeaderboard(ctx, n, "")
	if err != nil {
		return nil, err
	}
	return board.Entries, nil
}

// GetUserRankStats computes a single user's rank without needing the full
// entry list. When a just-computed ordering is passed in, the rank comes
// from its index; otherwise it falls back to an independent "how many
// eligible users have MORE verified visits" count query. The two-query
// fallback can observe a different snapshot than a leaderboard fetched
// moments earlier — acceptable for a best-effort leaderboard, which is
// why callers that already hold the ordering should pass it.
func (s *RankingService) GetUserRankStats(ctx context.Context, userID string, ordering []RankedUser) (*models.UserRankStats, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	verified, total, err := s.store.VisitCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &models.UserRankStats{
		UserID:             userID,
		VerifiedVisitCount: verified,
		TotalVisitCount:    total,
		IsEligible:         user.IsPremium(),
	}

	// Ineligible users and eligible users with no verified visits have no
	// rank and no badge, regardless of how much they have travelled.
	if !stats.IsEligible || verified == 0 {
		return stats, nil
	}

	if ordering != nil {
		for i, ru := range ordering {
			if ru.UserID == userID {
				rank := i + 1
				stats.Rank = &rank
				stats.Badge = TierForRank(rank)
				return stats, nil
			}
		}
		// Eligible with verified visits but missing from the scan: the
		// ordering is stale relative to this user's row. Fall through to
		// the count query rather than inventing a rank.
		s.logger.Warn("eligible user missing from precomputed ordering",
			zap.String("user_id", userID))
	}

	// rank = 1 + users strictly ahead. Counting "fewer" instead of "more"
	// here would silently invert the leaderboard.
	ahead, err := s.store.EligibleCountWithMoreVisits(ctx, verified)
	if err != nil {
		return nil, err
	}
	rank := int(ahead) + 1
	stats.Rank = &rank
	stats.Badge = TierForRank(rank)
	return stats, nil
}

// TierForRank maps a leaderboard position to its badge. Nil past the
// top 100.
func TierForRank(rank int) *string {
	var badge string
	switch {
	case rank == 1:
		badge = models.BadgeGoldChampion
	case rank == 2:
		badge = models.BadgeSilverExplorer
	case rank == 3:
		badge = models.BadgeBronzeVoyager
	case rank >= 4 && rank <= 10:
		badge = models.BadgeEliteTraveler
	case rank >= 11 && rank <= 100:
		badge = models.BadgeRisingStar
	default:
		return nil
	}
	return &badge
}

// FormatDisplayName renders the name shown on leaderboard entries.
// No display name → local part of the email; single-word names pass
// through; multi-word names become "First L." to avoid exposing full
// names on a public ranking.
func FormatDisplayName(name, email string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		if at := strings.Index(email, "@"); at > 0 {
			return email[:at]
		}
		return email
	}

	tokens := strings.Fields(name)
	if len(tokens) == 1 {
		return tokens[0]
	}
	last := []rune(tokens[len(tokens)-1])
	return tokens[0] + " " + string(last[0]) + "."
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
