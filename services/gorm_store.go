package services

import (
	"context"
	"fmt"
	"time"

	"travel-companion-system/models"

	"gorm.io/gorm"
)

// StatsStore answers the count/aggregate queries the ranking and badge
// services need, straight against Postgres. No retries here: retry
// policy, if any, belongs to the connection pool, and every failure is
// translated onto the service error taxonomy.
type StatsStore struct {
	DB *gorm.DB
}

func NewStatsStore(db *gorm.DB) *StatsStore {
	return &StatsStore{DB: db}
}

var _ RankingStore = (*StatsStore)(nil)
var _ BadgeStore = (*StatsStore)(nil)

// EligibleRanking scans eligible users ordered by verified visits.
// The `u.id ASC` tie-break keeps equal counts in a stable order across
// calls — Postgres gives no ordering guarantee for ties otherwise.
func (s *StatsStore) EligibleRanking(ctx context.Context) ([]RankedUser, error) {
	var rows []RankedUser
	err := s.DB.WithContext(ctx).Raw(`
		SELECT
			u.id AS user_id,
			u.display_name,
			u.email,
			u.avatar_url,
			COUNT(v.id) AS verified_visit_count
		FROM users u
		INNER JOIN visits v ON v.user_id = u.id AND v.is_verified = true
		WHERE u.subscription_tier = ?
		  AND u.subscription_status = ?
		  AND u.deleted_at IS NULL
		GROUP BY u.id, u.display_name, u.email, u.avatar_url
		ORDER BY verified_visit_count DESC, u.id ASC
	`, models.SubscriptionTierPremium, models.SubscriptionStatusActive).Scan(&rows).Error
	if err != nil {
		return nil, translateStoreErr(err, "scan eligible ranking")
	}
	return rows, nil
}

func (s *StatsStore) EligibleCountWithMoreVisits(ctx context.Context, than int64) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM (
			SELECT v.user_id
			FROM visits v
			INNER JOIN users u ON u.id = v.user_id
			WHERE v.is_verified = true
			  AND u.subscription_tier = ?
			  AND u.subscription_status = ?
			  AND u.deleted_at IS NULL
			GROUP BY v.user_id
			HAVING COUNT(v.id) > ?
		) ahead
	`, models.SubscriptionTierPremium, models.SubscriptionStatusActive, than).Scan(&count).Error
	if err != nil {
		return 0, translateStoreErr(err, "count users ahead")
	}
	return count, nil
}

func (s *StatsStore) UserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("user %s", userID))
	}
	return &user, nil
}

func (s *StatsStore) VisitCounts(ctx context.Context, userID string) (verified, total int64, err error) {
	db := s.DB.WithContext(ctx)
	if err = db.Model(&models.Visit{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return 0, 0, translateStoreErr(err, "count visits")
	}
	if err = db.Model(&models.Visit{}).
		Where("user_id = ? AND is_verified = true", userID).
		Count(&verified).Error; err != nil {
		return 0, 0, translateStoreErr(err, "count verified visits")
	}
	return verified, total, nil
}

func (s *StatsStore) UserExists(ctx context.Context, userID string) error {
	var id string
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Select("id").
		Where("id = ?", userID).
		First(&id).Error
	return translateStoreErr(err, fmt.Sprintf("user %s", userID))
}

// locationStatsRow is the scan target shared by the subtree queries.
type locationStatsRow struct {
	LocationID   string
	LocationName string
	VisitedCount int64
	TotalCount   int64
	LastVisit    *time.Time
}

// LocationStats aggregates one location subtree: a city counts its own
// attractions, a country sums its cities, a continent sums its countries.
func (s *StatsStore) LocationStats(ctx context.Context, userID, locationType, locationID string) (*LocationVisitStats, error) {
	db := s.DB.WithContext(ctx)

	var name string
	var query string
	switch locationType {
	case models.LocationTypeCity:
		var city models.City
		if err := db.First(&city, "id = ?", locationID).Error; err != nil {
			return nil, translateStoreErr(err, fmt.Sprintf("city %s", locationID))
		}
		name = city.Name
		query = `
			SELECT
				COUNT(DISTINCT v.attraction_id) AS visited_count,
				(SELECT COUNT(*) FROM attractions a2
				  WHERE a2.city_id = @loc AND a2.deleted_at IS NULL) AS total_count,
				MAX(v.visit_date) AS last_visit
			FROM visits v
			INNER JOIN attractions a ON a.id = v.attraction_id AND a.deleted_at IS NULL
			WHERE v.user_id = @user AND a.city_id = @loc
		`
	case models.LocationTypeCountry:
		var country models.Country
		if err := db.First(&country, "id = ?", locationID).Error; err != nil {
			return nil, translateStoreErr(err, fmt.Sprintf("country %s", locationID))
		}
		name = country.Name
		query = `
			SELECT
				COUNT(DISTINCT v.attraction_id) AS visited_count,
				(SELECT COUNT(*) FROM attractions a2
				  INNER JOIN cities c2 ON c2.id = a2.city_id
				  WHERE c2.country_id = @loc AND a2.deleted_at IS NULL) AS total_count,
				MAX(v.visit_date) AS last_visit
			FROM visits v
			INNER JOIN attractions a ON a.id = v.attraction_id AND a.deleted_at IS NULL
			INNER JOIN cities c ON c.id = a.city_id
			WHERE v.user_id = @user AND c.country_id = @loc
		`
	case models.LocationTypeContinent:
		var continent models.Continent
		if err := db.First(&continent, "id = ?", locationID).Error; err != nil {
			return nil, translateStoreErr(err, fmt.Sprintf("continent %s", locationID))
		}
		name = continent.Name
		query = `
			SELECT
				COUNT(DISTINCT v.attraction_id) AS visited_count,
				(SELECT COUNT(*) FROM attractions a2
				  INNER JOIN cities c2 ON c2.id = a2.city_id
				  INNER JOIN countries co2 ON co2.id = c2.country_id
				  WHERE co2.continent_id = @loc AND a2.deleted_at IS NULL) AS total_count,
				MAX(v.visit_date) AS last_visit
			FROM visits v
			INNER JOIN attractions a ON a.id = v.attraction_id AND a.deleted_at IS NULL
			INNER JOIN cities c ON c.id = a.city_id
			INNER JOIN countries co ON co.id = c.country_id
			WHERE v.user_id = @user AND co.continent_id = @loc
		`
	default:
		return nil, fmt.Errorf("unknown location type %q: %w", locationType, ErrInvalidArgument)
	}

	var row locationStatsRow
	err := db.Raw(query,
		map[string]interface{}{"user": userID, "loc": locationID},
	).Scan(&row).Error
	if err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("aggregate %s %s", locationType, locationID))
	}

	stats := &LocationVisitStats{
		LocationID:   locationID,
		LocationType: locationType,
		LocationName: name,
		VisitedCount: row.VisitedCount,
		TotalCount:   row.TotalCount,
	}
	if row.LastVisit != nil {
		stats.LastVisit = *row.LastVisit
	}
	return stats, nil
}

// VisitedLocationStats returns one aggregate per city, country and
// continent the user has any visit in. Untouched locations are never
// part of the result.
func (s *StatsStore) VisitedLocationStats(ctx context.Context, userID string) ([]LocationVisitStats, error) {
	db := s.DB.WithContext(ctx)

	queries := []struct {
		locationType string
		sql          string
	}{
		{models.LocationTypeCity, `
			SELECT
				c.id AS location_id,
				c.name AS location_name,
				COUNT(DISTINCT v.attraction_id) AS visited_count,
				(SELECT COUNT(*) FROM attractions a2
				  WHERE a2.city_id = c.id AND a2.deleted_at IS NULL) AS total_count,
				MAX(v.visit_date) AS last_visit
			FROM visits v
			INNER JOIN attractions a ON a.id = v.attraction_id AND a.deleted_at IS NULL
			INNER JOIN cities c ON c.id = a.city_id
			WHERE v.user_id = ?
			GROUP BY c.id, c.name
		`},
		{models.LocationTypeCountry, `
			SELECT
				co.id AS location_id,
				co.name AS location_name,
				COUNT(DISTINCT v.attraction_id) AS visited_count,
				(SELECT COUNT(*) FROM attractions a2
				  INNER JOIN cities c2 ON c2.id = a2.city_id
				  WHERE c2.country_id = co.id AND a2.deleted_at IS NULL) AS total_count,
				MAX(v.visit_date) AS last_visit
			FROM visits v
			INNER JOIN attractions a ON a.id = v.attraction_id AND a.deleted_at IS NULL
			INNER JOIN cities c ON c.id = a.city_id
			INNER JOIN countries co ON co.id = c.country_id
			WHERE v.user_id = ?
			GROUP BY co.id, co.name
		`},
		{models.LocationTypeContinent, `
			SELECT
				ct.id AS location_id,
				ct.name AS location_name,
				COUNT(DISTINCT v.attraction_id) AS visited_count,
				(SELECT COUNT(*) FROM attractions a2
				  INNER JOIN cities c2 ON c2.id = a2.city_id
				  INNER JOIN countries co2 ON co2.id = c2.country_id
				  WHERE co2.continent_id = ct.id AND a2.deleted_at IS NULL) AS total_count,
				MAX(v.visit_date) AS last_visit
			FROM visits v
			INNER JOIN attractions a ON a.id = v.attraction_id AND a.deleted_at IS NULL
			INNER JOIN cities c ON c.id = a.city_id
			INNER JOIN countries co ON co.id = c.country_id
			INNER JOIN continents ct ON ct.id = co.continent_id
			WHERE v.user_id = ?
			GROUP BY ct.id, ct.name
		`},
	}

	var out []LocationVisitStats
	for _, q := range queries {
		var rows []locationStatsRow
		if err := db.Raw(q.sql, userID).Scan(&rows).Error; err != nil {
			return nil, translateStoreErr(err, fmt.Sprintf("aggregate visited %ss", q.locationType))
		}
		for _, row := range rows {
			st := LocationVisitStats{
				LocationID:   row.LocationID,
				LocationType: q.locationType,
				LocationName: row.LocationName,
				VisitedCount: row.VisitedCount,
				TotalCount:   row.TotalCount,
			}
			if row.LastVisit != nil {
				st.LastVisit = *row.LastVisit
			}
			out = append(out, st)
		}
	}
	return out, nil
}
