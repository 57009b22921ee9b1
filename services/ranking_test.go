package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"travel-companion-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVisitCounts struct {
	verified int64
	total    int64
}

// fakeRankingStore derives the ordering from its user/visit data the same
// way the SQL store does: eligible users only, verified visits descending,
// user ID ascending on ties.
type fakeRankingStore struct {
	users  map[string]*models.User
	visits map[string]fakeVisitCounts

	countQueries int
}

func (f *fakeRankingStore) EligibleRanking(ctx context.Context) ([]RankedUser, error) {
	var out []RankedUser
	for id, u := range f.users {
		counts := f.visits[id]
		if !u.IsPremium() || counts.verified == 0 {
			continue
		}
		out = append(out, RankedUser{
			UserID:             id,
			DisplayName:        u.DisplayName,
			Email:              u.Email,
			VerifiedVisitCount: counts.verified,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VerifiedVisitCount != out[j].VerifiedVisitCount {
			return out[i].VerifiedVisitCount > out[j].VerifiedVisitCount
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (f *fakeRankingStore) EligibleCountWithMoreVisits(ctx context.Context, than int64) (int64, error) {
	f.countQueries++
	ordering, _ := f.EligibleRanking(ctx)
	var n int64
	for _, ru := range ordering {
		if ru.VerifiedVisitCount > than {
			n++
		}
	}
	return n, nil
}

func (f *fakeRankingStore) UserByID(ctx context.Context, userID string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (f *fakeRankingStore) VisitCounts(ctx context.Context, userID string) (int64, int64, error) {
	counts := f.visits[userID]
	return counts.verified, counts.total, nil
}

func premiumUser(id, name, email string) *models.User {
	return &models.User{
		ID:                 id,
		DisplayName:        &name,
		Email:              email,
		SubscriptionTier:   models.SubscriptionTierPremium,
		SubscriptionStatus: models.SubscriptionStatusActive,
	}
}

func newRankingFixture() *fakeRankingStore {
	return &fakeRankingStore{
		users:  map[string]*models.User{},
		visits: map[string]fakeVisitCounts{},
	}
}

func TestGetLeaderboardTiesAreDeterministic(t *testing.T) {
	store := newRankingFixture()
	store.users["user-a"] = premiumUser("user-a", "Alice Smith", "alice@example.com")
	store.users["user-b"] = premiumUser("user-b", "Bob Jones", "bob@example.com")
	store.users["user-c"] = premiumUser("user-c", "Cara Lee", "cara@example.com")
	store.visits["user-a"] = fakeVisitCounts{verified: 80, total: 90}
	store.visits["user-b"] = fakeVisitCounts{verified: 80, total: 85}
	store.visits["user-c"] = fakeVisitCounts{verified: 5, total: 5}

	svc := NewRankingService(store, zap.NewNop())
	board, err := svc.GetLeaderboard(context.Background(), 10, "")
	require.NoError(t, err)

	require.Len(t, board.Entries, 3)
	assert.EqualValues(t, 3, board.TotalParticipants)

	// A and B tie on 80; user ID ascending breaks the tie, C follows.
	assert.Equal(t, "user-a", board.Entries[0].UserID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, "user-b", board.Entries[1].UserID)
	assert.Equal(t, 2, board.Entries[1].Rank)
	assert.Equal(t, "user-c", board.Entries[2].UserID)
	assert.Equal(t, 3, board.Entries[2].Rank)
}

func TestGetLeaderboardRanksAreDenseFromOne(t *testing.T) {
	store := newRankingFixture()
	for i, id := range []string{"u1", "u2", "u3", "u4", "u5"} {
		store.users[id] = premiumUser(id, "User "+id, id+"@example.com")
		store.visits[id] = fakeVisitCounts{verified: int64(100 - i*10), total: int64(100 - i*10)}
	}

	svc := NewRankingService(store, zap.NewNop())
	board, err := svc.GetLeaderboard(context.Background(), 10, "")
	require.NoError(t, err)

	for i, e := range board.Entries {
		assert.Equal(t, i+1, e.Rank, "ranks must be dense with no gaps")
	}
}

func TestGetLeaderboardTruncatesToLimit(t *testing.T) {
	store := newRankingFixture()
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		store.users[id] = premiumUser(id, "User", id+"@example.com")
		store.visits[id] = fakeVisitCounts{verified: 10, total: 10}
	}

	svc := NewRankingService(store, zap.NewNop())
	board, err := svc.GetLeaderboard(context.Background(), 2, "")
	require.NoError(t, err)

	assert.Len(t, board.Entries, 2)
	// totalParticipants is independent of limit
	assert.EqualValues(t, 4, board.TotalParticipants)
}

func TestGetLeaderboardRejectsNonPositiveLimit(t *testing.T) {
	svc := NewRankingService(newRankingFixture(), zap.NewNop())

	_, err := svc.GetLeaderboard(context.Background(), 0, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.GetLeaderboard(context.Background(), -3, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetLeaderboardExcludesFreeTierRegardlessOfVisits(t *testing.T) {
	store := newRankingFixture()
	free := premiumUser("free-user", "Free Rider", "free@example.com")
	free.SubscriptionTier = models.SubscriptionTierFree
	store.users["free-user"] = free
	store.visits["free-user"] = fakeVisitCounts{verified: 100, total: 100}

	store.users["premium-user"] = premiumUser("premium-user", "Paid Up", "paid@example.com")
	store.visits["premium-user"] = fakeVisitCounts{verified: 1, total: 1}

	svc := NewRankingService(store, zap.NewNop())
	board, err := svc.GetLeaderboard(context.Background(), 10, "free-user")
	require.NoError(t, err)

	require.Len(t, board.Entries, 1)
	assert.Equal(t, "premium-user", board.Entries[0].UserID)
	assert.EqualValues(t, 1, board.TotalParticipants)

	require.NotNil(t, board.CurrentUser)
	assert.False(t, board.CurrentUser.IsEligible)
	assert.Nil(t, board.CurrentUser.Rank)
	assert.Nil(t, board.CurrentUser.Badge)
}

func TestGetLeaderboardExcludesCancelledAndExpiredPremium(t *testing.T) {
	store := newRankingFixture()
	for id, status := range map[string]string{
		"cancelled-user": models.SubscriptionStatusCancelled,
		"expired-user":   models.SubscriptionStatusExpired,
	} {
		u := premiumUser(id, "Lapsed", id+"@example.com")
		u.SubscriptionStatus = status
		store.users[id] = u
		store.visits[id] = fakeVisitCounts{verified: 50, total: 50}
	}

	svc := NewRankingService(store, zap.NewNop())
	board, err := svc.GetLeaderboard(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Empty(t, board.Entries)
	assert.EqualValues(t, 0, board.TotalParticipants)
}

func TestGetLeaderboardIsIdempotentWithoutWrites(t *testing.T) {
	store := newRankingFixture()
	for _, id := range []string{"u1", "u2", "u3"} {
		store.users[id] = premiumUser(id, "User", id+"@example.com")
		store.visits[id] = fakeVisitCounts{verified: 7, total: 9}
	}

	svc := NewRankingService(store, zap.NewNop())
	first, err := svc.GetLeaderboard(context.Background(), 10, "")
	require.NoError(t, err)
	second, err := svc.GetLeaderboard(context.Background(), 10, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetUserRankStatsUsesStrictlyGreaterCount(t *testing.T) {
	store := newRankingFixture()
	store.users["leader"] = premiumUser("leader", "Leader", "leader@example.com")
	store.visits["leader"] = fakeVisitCounts{verified: 30, total: 30}
	store.users["peer"] = premiumUser("peer", "Peer", "peer@example.com")
	store.visits["peer"] = fakeVisitCounts{verified: 10, total: 12}
	store.users["me"] = premiumUser("me", "Me Too", "me@example.com")
	store.visits["me"] = fakeVisitCounts{verified: 10, total: 15}

	svc := NewRankingService(store, zap.NewNop())
	stats, err := svc.GetUserRankStats(context.Background(), "me", nil)
	require.NoError(t, err)

	// Only "leader" has strictly more verified visits: rank 2, not 3.
	// Peers with the same count do not push the rank down.
	require.NotNil(t, stats.Rank)
	assert.Equal(t, 2, *stats.Rank)
	assert.EqualValues(t, 10, stats.VerifiedVisitCount)
	assert.EqualValues(t, 15, stats.TotalVisitCount)
	assert.True(t, stats.IsEligible)
}

func TestGetUserRankStatsReusesPrecomputedOrdering(t *testing.T) {
	store := newRankingFixture()
	store.users["u1"] = premiumUser("u1", "One", "one@example.com")
	store.visits["u1"] = fakeVisitCounts{verified: 20, total: 20}
	store.users["u2"] = premiumUser("u2", "Two", "two@example.com")
	store.visits["u2"] = fakeVisitCounts{verified: 10, total: 10}

	svc := NewRankingService(store, zap.NewNop())
	ordering, err := store.EligibleRanking(context.Background())
	require.NoError(t, err)

	stats, err := svc.GetUserRankStats(context.Background(), "u2", ordering)
	require.NoError(t, err)

	require.NotNil(t, stats.Rank)
	assert.Equal(t, 2, *stats.Rank)
	assert.Zero(t, store.countQueries, "rank should come from the ordering, not a second scan")
}

func TestGetUserRankStatsZeroVerifiedVisits(t *testing.T) {
	store := newRankingFixture()
	store.users["walker"] = premiumUser("walker", "Walker", "walker@example.com")
	store.visits["walker"] = fakeVisitCounts{verified: 0, total: 8}

	svc := NewRankingService(store, zap.NewNop())
	stats, err := svc.GetUserRankStats(context.Background(), "walker", nil)
	require.NoError(t, err)

	// Premium and active, so eligible — but unranked until a visit is
	// verified. Unverified visits still show in the totals.
	assert.True(t, stats.IsEligible)
	assert.Nil(t, stats.Rank)
	assert.Nil(t, stats.Badge)
	assert.EqualValues(t, 8, stats.TotalVisitCount)
}

func TestGetUserRankStatsUnknownUser(t *testing.T) {
	svc := NewRankingService(newRankingFixture(), zap.NewNop())
	_, err := svc.GetUserRankStats(context.Background(), "nobody", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTierForRank(t *testing.T) {
	cases := []struct {
		rank int
		want *string
	}{
		{1, strPtr(models.BadgeGoldChampion)},
		{2, strPtr(models.BadgeSilverExplorer)},
		{3, strPtr(models.BadgeBronzeVoyager)},
		{4, strPtr(models.BadgeEliteTraveler)},
		{7, strPtr(models.BadgeEliteTraveler)},
		{10, strPtr(models.BadgeEliteTraveler)},
		{11, strPtr(models.BadgeRisingStar)},
		{50, strPtr(models.BadgeRisingStar)},
		{100, strPtr(models.BadgeRisingStar)},
		{101, nil},
		{500, nil},
	}
	for _, tc := range cases {
		got := TierForRank(tc.rank)
		if tc.want == nil {
			assert.Nil(t, got, "rank %d", tc.rank)
		} else {
			require.NotNil(t, got, "rank %d", tc.rank)
			assert.Equal(t, *tc.want, *got, "rank %d", tc.rank)
		}
	}
}

func TestFormatDisplayName(t *testing.T) {
	assert.Equal(t, "jane.doe", FormatDisplayName("", "jane.doe@x.com"))
	assert.Equal(t, "Cher", FormatDisplayName("Cher", "cher@x.com"))
	assert.Equal(t, "John S.", FormatDisplayName("John Smith", "john@x.com"))
	assert.Equal(t, "Ana M.", FormatDisplayName("Ana de la Maria", "ana@x.com"))
	assert.Equal(t, "jane.doe", FormatDisplayName("   ", "jane.doe@x.com"))
}

func strPtr(s string) *string { return &s }
