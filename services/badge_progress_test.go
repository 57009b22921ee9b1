package services

import (
	"context"
	"testing"
	"time"

	"travel-companion-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVisit struct {
	attractionID string
	isVerified   bool
	visitDate    time.Time
}

type fakeLocation struct {
	id           string
	locationType string
	name         string
	attractions  []string // attraction IDs in the subtree
}

// fakeBadgeStore materializes subtree aggregates from raw visit records,
// mirroring what the SQL store computes: distinct attractions visited,
// with no filter on the verified flag.
type fakeBadgeStore struct {
	userIDs   map[string]bool
	locations []fakeLocation
	visits    map[string][]fakeVisit // by user
}

func (f *fakeBadgeStore) UserExists(ctx context.Context, userID string) error {
	if !f.userIDs[userID] {
		return ErrNotFound
	}
	return nil
}

func (f *fakeBadgeStore) statsFor(userID string, loc fakeLocation) LocationVisitStats {
	inSubtree := map[string]bool{}
	for _, a := range loc.attractions {
		inSubtree[a] = true
	}

	visited := map[string]bool{}
	var last time.Time
	for _, v := range f.visits[userID] {
		if !inSubtree[v.attractionID] {
			continue
		}
		visited[v.attractionID] = true
		if v.visitDate.After(last) {
			last = v.visitDate
		}
	}
	return LocationVisitStats{
		LocationID:   loc.id,
		LocationType: loc.locationType,
		LocationName: loc.name,
		VisitedCount: int64(len(visited)),
		TotalCount:   int64(len(loc.attractions)),
		LastVisit:    last,
	}
}

func (f *fakeBadgeStore) LocationStats(ctx context.Context, userID, locationType, locationID string) (*LocationVisitStats, error) {
	for _, loc := range f.locations {
		if loc.id == locationID && loc.locationType == locationType {
			st := f.statsFor(userID, loc)
			return &st, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeBadgeStore) VisitedLocationStats(ctx context.Context, userID string) ([]LocationVisitStats, error) {
	var out []LocationVisitStats
	for _, loc := range f.locations {
		st := f.statsFor(userID, loc)
		if st.VisitedCount > 0 {
			out = append(out, st)
		}
	}
	return out, nil
}

func newBadgeFixture() *fakeBadgeStore {
	return &fakeBadgeStore{
		userIDs: map[string]bool{"traveler": true},
		visits:  map[string][]fakeVisit{},
	}
}

func attractionIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = prefix + "-" + string(rune('a'+i))
	}
	return ids
}

func TestGetProgressGoldAtSeventyFivePercent(t *testing.T) {
	store := newBadgeFixture()
	attractions := attractionIDs("paris", 20)
	store.locations = []fakeLocation{
		{id: "city-paris", locationType: models.LocationTypeCity, name: "Paris", attractions: attractions},
	}
	for i := 0; i < 15; i++ {
		store.visits["traveler"] = append(store.visits["traveler"], fakeVisit{
			attractionID: attractions[i],
			visitDate:    time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC),
		})
	}

	svc := NewBadgeProgressService(store, zap.NewNop())
	p, err := svc.GetProgress(context.Background(), "traveler", models.LocationTypeCity, "city-paris")
	require.NoError(t, err)

	assert.EqualValues(t, 15, p.VisitedCount)
	assert.EqualValues(t, 20, p.TotalCount)
	assert.InDelta(t, 75, p.ProgressPercent, 0.001)
	require.NotNil(t, p.CurrentTier)
	assert.Equal(t, models.TierGold, *p.CurrentTier)
	require.NotNil(t, p.NextTier)
	assert.Equal(t, models.TierPlatinum, *p.NextTier)
	// (75-75)/(100-75)*100 = 0: just reached gold, no progress beyond it
	assert.InDelta(t, 0, p.ProgressToNextTier, 0.001)
}

func TestGetProgressCountsUnverifiedVisits(t *testing.T) {
	// Verification gates the leaderboard only. Badge progress counts any
	// logged visit, verified or not.
	store := newBadgeFixture()
	attractions := attractionIDs("rome", 4)
	store.locations = []fakeLocation{
		{id: "city-rome", locationType: models.LocationTypeCity, name: "Rome", attractions: attractions},
	}
	for _, a := range attractions {
		store.visits["traveler"] = append(store.visits["traveler"], fakeVisit{
			attractionID: a,
			isVerified:   false,
			visitDate:    time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		})
	}

	svc := NewBadgeProgressService(store, zap.NewNop())
	p, err := svc.GetProgress(context.Background(), "traveler", models.LocationTypeCity, "city-rome")
	require.NoError(t, err)

	assert.EqualValues(t, 4, p.VisitedCount)
	require.NotNil(t, p.CurrentTier)
	assert.Equal(t, models.TierPlatinum, *p.CurrentTier)
	assert.Nil(t, p.NextTier)
}

func TestGetProgressEmptyLocationIsZeroNotError(t *testing.T) {
	store := newBadgeFixture()
	store.locations = []fakeLocation{
		{id: "city-ghost", locationType: models.LocationTypeCity, name: "Ghost Town"},
	}

	svc := NewBadgeProgressService(store, zap.NewNop())
	p, err := svc.GetProgress(context.Background(), "traveler", models.LocationTypeCity, "city-ghost")
	require.NoError(t, err)

	assert.EqualValues(t, 0, p.TotalCount)
	assert.InDelta(t, 0, p.ProgressPercent, 0.001)
	assert.Nil(t, p.CurrentTier)
}

func TestGetProgressTierBoundaries(t *testing.T) {
	cases := []struct {
		visited     int
		total       int
		wantCurrent *string
		wantNext    *string
	}{
		{0, 10, nil, strPtr(models.TierBronze)},
		{2, 10, nil, strPtr(models.TierBronze)},                       // 20%
		{3, 10, strPtr(models.TierBronze), strPtr(models.TierSilver)}, // 30%
		{5, 10, strPtr(models.TierSilver), strPtr(models.TierGold)},   // 50%
		{8, 10, strPtr(models.TierGold), strPtr(models.TierPlatinum)}, // 80%
		{10, 10, strPtr(models.TierPlatinum), nil},                    // 100%
	}
	for _, tc := range cases {
		current, next, _ := tierForPercent(float64(tc.visited) / float64(tc.total) * 100)
		if tc.wantCurrent == nil {
			assert.Nil(t, current, "%d/%d", tc.visited, tc.total)
		} else {
			require.NotNil(t, current, "%d/%d", tc.visited, tc.total)
			assert.Equal(t, *tc.wantCurrent, *current, "%d/%d", tc.visited, tc.total)
		}
		if tc.wantNext == nil {
			assert.Nil(t, next, "%d/%d", tc.visited, tc.total)
		} else {
			require.NotNil(t, next, "%d/%d", tc.visited, tc.total)
			assert.Equal(t, *tc.wantNext, *next, "%d/%d", tc.visited, tc.total)
		}
	}
}

func TestGetProgressRejectsUnknownLocationType(t *testing.T) {
	svc := NewBadgeProgressService(newBadgeFixture(), zap.NewNop())
	_, err := svc.GetProgress(context.Background(), "traveler", "galaxy", "milky-way")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetProgressUnknownUserAndLocation(t *testing.T) {
	svc := NewBadgeProgressService(newBadgeFixture(), zap.NewNop())

	_, err := svc.GetProgress(context.Background(), "nobody", models.LocationTypeCity, "city-x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetProgress(context.Background(), "traveler", models.LocationTypeCity, "no-such-city")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllProgressOmitsUntouchedLocations(t *testing.T) {
	store := newBadgeFixture()
	store.locations = []fakeLocation{
		{id: "city-lisbon", locationType: models.LocationTypeCity, name: "Lisbon", attractions: []string{"belem", "alfama"}},
		{id: "city-porto", locationType: models.LocationTypeCity, name: "Porto", attractions: []string{"ribeira"}},
		{id: "country-pt", locationType: models.LocationTypeCountry, name: "Portugal", attractions: []string{"belem", "alfama", "ribeira"}},
	}
	store.visits["traveler"] = []fakeVisit{
		{attractionID: "belem", visitDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	svc := NewBadgeProgressService(store, zap.NewNop())
	all, err := svc.GetAllProgress(context.Background(), "traveler")
	require.NoError(t, err)

	require.Len(t, all.Cities, 1)
	assert.Equal(t, "city-lisbon", all.Cities[0].LocationID)
	require.Len(t, all.Countries, 1)
	assert.Equal(t, "country-pt", all.Countries[0].LocationID)
	assert.Empty(t, all.Continents)
}

func TestGetSummaryAggregatesEarnedBadges(t *testing.T) {
	store := newBadgeFixture()
	store.locations = []fakeLocation{
		// 2/2 → platinum
		{id: "city-lisbon", locationType: models.LocationTypeCity, name: "Lisbon", attractions: []string{"belem", "alfama"}},
		// 1/4 → 25% bronze
		{id: "city-madrid", locationType: models.LocationTypeCity, name: "Madrid", attractions: []string{"prado", "retiro", "sol", "palacio"}},
		// 3/6 → 50% silver
		{id: "country-ib", locationType: models.LocationTypeCountry, name: "Iberia", attractions: []string{"belem", "alfama", "prado", "retiro", "sol", "palacio"}},
		// 1/10 → 10%, below bronze, not a badge
		{id: "continent-eu", locationType: models.LocationTypeContinent, name: "Europe", attractions: attractionIDs("eu", 10)},
	}
	store.visits["traveler"] = []fakeVisit{
		{attractionID: "belem", visitDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		{attractionID: "alfama", visitDate: time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)},
		{attractionID: "prado", visitDate: time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)},
		{attractionID: "eu-a", visitDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	svc := NewBadgeProgressService(store, zap.NewNop())
	summary, err := svc.GetSummary(context.Background(), "traveler")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalBadges)
	assert.Equal(t, 1, summary.BadgesByTier[models.TierPlatinum])
	assert.Equal(t, 1, summary.BadgesByTier[models.TierSilver])
	assert.Equal(t, 1, summary.BadgesByTier[models.TierBronze])
	assert.Equal(t, 2, summary.BadgesByType[models.LocationTypeCity])
	assert.Equal(t, 1, summary.BadgesByType[models.LocationTypeCountry])

	// Lisbon holds the latest visit among badge-earning locations.
	require.NotNil(t, summary.MostRecent)
	assert.Equal(t, "city-lisbon", summary.MostRecent.LocationID)
	assert.Equal(t, models.TierPlatinum, summary.MostRecent.Tier)
}

func TestGetSummaryUnknownUser(t *testing.T) {
	svc := NewBadgeProgressService(newBadgeFixture(), zap.NewNop())
	_, err := svc.GetSummary(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
