// services/scheduler.go
package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartMaintenanceScheduler runs the periodic housekeeping jobs:
// expiring lapsed premium subscriptions and pre-warming the leaderboard
// snapshot cache.
func StartMaintenanceScheduler(
	subscriptions *SubscriptionService,
	ranking *RankingService,
	cache *LeaderboardCache,
	logger *zap.Logger,
) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	sched.Start()

	// Every minute: expire premium users whose paid period has lapsed.
	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			count, err := subscriptions.ExpireLapsed(ctx)
			if err != nil {
				logger.Error("subscription expiry sweep failed", zap.Error(err))
				return
			}
			if count > 0 {
				logger.Info("subscription expiry sweep", zap.Int64("expired", count))
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	// Every 5 minutes: warm the default leaderboard page so the first
	// request after an invalidation doesn't pay for the full scan.
	if cache != nil {
		_, err = sched.NewJob(
			gocron.DurationJob(5*time.Minute),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				board, err := ranking.GetLeaderboard(ctx, defaultLeaderboardLimit, "")
				if err != nil {
					logger.Error("leaderboard warmup failed", zap.Error(err))
					return
				}
				cache.Set(ctx, defaultLeaderboardLimit, board)
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	return sched, nil
}

// defaultLeaderboardLimit is the page size the mobile clients request.
const defaultLeaderboardLimit = 50
