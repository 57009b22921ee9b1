// workers/subscription_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"travel-companion-system/models"
	"travel-companion-system/services"
	"travel-companion-system/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BillingEvent matches the JSON the billing service emits for each
// subscription state change.
type BillingEvent struct {
	EventID    string     `json:"event_id"`
	UserID     string     `json:"user_id"`
	Provider   string     `json:"provider"`
	Tier       string     `json:"tier"`
	Status     string     `json:"status"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

type billingEventsResponse struct {
	Events []BillingEvent `json:"events"`
}

// SubscriptionSyncWorker polls the billing service for subscription
// events and applies them locally. Receipt validation stays on the
// billing side; this worker only mirrors outcomes.
type SubscriptionSyncWorker struct {
	db            *gorm.DB
	subscriptions *services.SubscriptionService
	logger        *zap.Logger
	interval      time.Duration
	baseURL       string // e.g. "http://billing:8600"
	endpointPath  string // e.g. "/api/v1/internal/subscription-events"
	serviceToken  string
	httpClient    *http.Client
}

func NewSubscriptionSyncWorker(
	db *gorm.DB,
	subscriptions *services.SubscriptionService,
	baseURL, endpointPath, serviceToken string,
	logger *zap.Logger,
) *SubscriptionSyncWorker {
	return &SubscriptionSyncWorker{
		db:            db,
		subscriptions: subscriptions,
		logger:        logger,
		interval:      1 * time.Minute,
		baseURL:       baseURL,
		endpointPath:  endpointPath,
		serviceToken:  serviceToken,
		httpClient:    utils.HTTPClient,
	}
}

func (w *SubscriptionSyncWorker) Start(ctx context.Context) {
	w.logger.Info("🔁 starting subscription sync worker (billing → subscription_events)")
	go w.run(ctx)
}

func (w *SubscriptionSyncWorker) run(ctx context.Context) {
	// Initial backfill from the last event we recorded.
	if err := w.syncBatch(ctx, w.lastAppliedAt()); err != nil {
		w.logger.Warn("initial subscription sync failed", zap.Error(err))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.lastAppliedAt()); err != nil {
				w.logger.Error("subscription sync batch failed", zap.Error(err))
			}
		case <-ctx.Done():
			w.logger.Info("⏹️ subscription sync worker stopped")
			return
		}
	}
}

// lastAppliedAt finds the newest occurred_at we already hold. Events are
// idempotent on their billing-side ID, so a window overlapping the last
// batch is safe.
func (w *SubscriptionSyncWorker) lastAppliedAt() time.Time {
	var last time.Time
	err := w.db.Raw("SELECT COALESCE(MAX(occurred_at), to_timestamp(0)) FROM subscription_events").Scan(&last).Error
	if err != nil || last.IsZero() {
		return time.Unix(0, 0)
	}
	return last
}

func (w *SubscriptionSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid billing service URL %q: %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)
	q := endpoint.Query()
	q.Set("since", sinceStr)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build billing request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("billing service request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("billing service returned %d: %s", resp.StatusCode, string(body))
	}

	var response billingEventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode billing response: %w", err)
	}

	if len(response.Events) == 0 {
		return nil
	}

	w.logger.Info("📥 processing subscription events",
		zap.Int("count", len(response.Events)),
		zap.String("since", sinceStr))

	var applied, failed int
	for _, remote := range response.Events {
		event := models.SubscriptionEvent{
			UserID:          remote.UserID,
			Tier:            remote.Tier,
			Status:          remote.Status,
			ExpiresAt:       remote.ExpiresAt,
			ExternalEventID: remote.EventID,
			Provider:        remote.Provider,
			OccurredAt:      remote.OccurredAt,
		}
		if err := w.subscriptions.ApplyEvent(ctx, &event); err != nil {
			failed++
			w.logger.Warn("failed to apply subscription event",
				zap.String("event_id", remote.EventID),
				zap.String("user_id", remote.UserID),
				zap.Error(err))
		} else {
			applied++
		}
	}

	w.logger.Info("✅ subscription sync batch done",
		zap.Int("applied", applied),
		zap.Int("failed", failed))
	return nil
}
