package services

import (
	"context"
	"fmt"
	"time"

	"travel-companion-system/models"

	"go.uber.org/zap"
)

// LocationVisitStats is the per-location aggregate the badge service
// works from: how many attractions the location subtree holds, how many
// the user has visited (verified or not), and the user's latest visit
// date inside it.
type LocationVisitStats struct {
	LocationID   string    `json:"location_id"`
	LocationType string    `json:"location_type"`
	LocationName string    `json:"location_name"`
	VisitedCount int64     `json:"visited_count"`
	TotalCount   int64     `json:"total_count"`
	LastVisit    time.Time `json:"last_visit"`
}

// BadgeStore is the read surface for badge progress.
type BadgeStore interface {
	UserExists(ctx context.Context, userID string) error
	// LocationStats aggregates one location subtree for the user.
	// Unknown location IDs surface as ErrNotFound.
	LocationStats(ctx context.Context, userID, locationType, locationID string) (*LocationVisitStats, error)
	// VisitedLocationStats returns stats for every city, country and
	// continent the user has at least one visit in.
	VisitedLocationStats(ctx context.Context, userID string) ([]LocationVisitStats, error)
}

// Progress tier thresholds, applied to the visited percentage. Ordered
// ascending; the highest satisfied threshold wins.
var progressTiers = []struct {
	Name      string
	Threshold float64
}{
	{models.TierBronze, 25},
	{models.TierSilver, 50},
	{models.TierGold, 75},
	{models.TierPlatinum, 100},
}

// BadgeProgressService computes per-location exploration badges.
// Verification does not matter here: any logged visit counts. Only the
// leaderboard cares whether a visit was verified.
type BadgeProgressService struct {
	store  BadgeStore
	logger *zap.Logger
}

func NewBadgeProgressService(store BadgeStore, logger *zap.Logger) *BadgeProgressService {
	return &BadgeProgressService{store: store, logger: logger}
}

// GetProgress computes the user's badge progress for one location.
func (s *BadgeProgressService) GetProgress(ctx context.Context, userID, locationType, locationID string) (*models.BadgeProgress, error) {
	if !models.ValidLocationType(locationType) {
		return nil, fmt.Errorf("unknown location type %q: %w", locationType, ErrInvalidArgument)
	}
	if err := s.store.UserExists(ctx, userID); err != nil {
		return nil, err
	}

	stats, err := s.store.LocationStats(ctx, userID, locationType, locationID)
	if err != nil {
		return nil, err
	}

	progress := buildProgress(stats)
	return &progress, nil
}

// GetAllProgress computes progress for every location the user has
// touched, grouped by hierarchy level. Locations with zero visits are
// never reported.
func (s *BadgeProgressService) GetAllProgress(ctx context.Context, userID string) (*models.AllProgress, error) {
	if err := s.store.UserExists(ctx, userID); err != nil {
		return nil, err
	}

	stats, err := s.store.VisitedLocationStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := &models.AllProgress{
		Cities:     []models.BadgeProgress{},
		Countries:  []models.BadgeProgress{},
		Continents: []models.BadgeProgress{},
	}
	for _, st := range stats {
		p := buildProgress(&st)
		switch st.LocationType {
		case models.LocationTypeCity:
			all.Cities = append(all.Cities, p)
		case models.LocationTypeCountry:
			all.Countries = append(all.Countries, p)
		case models.LocationTypeContinent:
			all.Continents = append(all.Continents, p)
		default:
			s.logger.Warn("store returned unknown location type",
				zap.String("location_type", st.LocationType),
				zap.String("location_id", st.LocationID))
		}
	}
	return all, nil
}

// GetSummary aggregates earned badges (locations at bronze or better)
// across the whole hierarchy. "Most recent" is ordered by the user's
// latest visit date in each location — an approximation of the true earn
// moment, since the visit that crossed the threshold is not tracked.
func (s *BadgeProgressService) GetSummary(ctx context.Context, userID string) (*models.BadgeSummary, error) {
	if err := s.store.UserExists(ctx, userID); err != nil {
		return nil, err
	}

	stats, err := s.store.VisitedLocationStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &models.BadgeSummary{
		BadgesByTier: map[string]int{},
		BadgesByType: map[string]int{},
	}

	var latest time.Time
	for _, st := range stats {
		percent := progressPercent(st.VisitedCount, st.TotalCount)
		tier, _, _ := tierForPercent(percent)
		if tier == nil {
			continue
		}
		summary.TotalBadges++
		summary.BadgesByTier[*tier]++
		summary.BadgesByType[st.LocationType]++

		if st.LastVisit.After(latest) {
			latest = st.LastVisit
			summary.MostRecent = &models.EarnedBadge{
				LocationID:   st.LocationID,
				LocationType: st.LocationType,
				LocationName: st.LocationName,
				Tier:         *tier,
				EarnedAt:     st.LastVisit.Format(time.RFC3339),
			}
		}
	}
	return summary, nil
}

func buildProgress(st *LocationVisitStats) models.BadgeProgress {
	percent := progressPercent(st.VisitedCount, st.TotalCount)
	tier, next, toNext := tierForPercent(percent)
	return models.BadgeProgress{
		LocationID:         st.LocationID,
		LocationType:       st.LocationType,
		LocationName:       st.LocationName,
		VisitedCount:       st.VisitedCount,
		TotalCount:         st.TotalCount,
		ProgressPercent:    percent,
		CurrentTier:        tier,
		NextTier:           next,
		ProgressToNextTier: toNext,
	}
}

// progressPercent clamps to [0,100]; an empty location (0 attractions)
// is 0%, not a division error.
func progressPercent(visited, total int64) float64 {
	if total <= 0 {
		return 0
	}
	percent := float64(visited) / float64(total) * 100
	return clamp(percent, 0, 100)
}

// tierForPercent returns the highest tier whose threshold the percentage
// satisfies, the next tier up, and how far along the gap between the two
// thresholds the user is (0–100).
func tierForPercent(percent float64) (current, next *string, progressToNext float64) {
	currentIdx := -1
	for i, t := range progressTiers {
		if percent >= t.Threshold {
			currentIdx = i
		}
	}

	switch {
	case currentIdx == len(progressTiers)-1:
		// Platinum: nothing above it.
		current = &progressTiers[currentIdx].Name
		progressToNext = 100
	case currentIdx == -1:
		next = &progressTiers[0].Name
		progressToNext = clamp(percent/progressTiers[0].Threshold*100, 0, 100)
	default:
		current = &progressTiers[currentIdx].Name
		next = &progressTiers[currentIdx+1].Name
		lo := progressTiers[currentIdx].Threshold
		hi := progressTiers[currentIdx+1].Threshold
		progressToNext = clamp((percent-lo)/(hi-lo)*100, 0, 100)
	}
	return current, next, progressToNext
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
