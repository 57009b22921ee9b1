// workers/verification_sync_worker.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"travel-companion-system/services"
	"travel-companion-system/utils"

	"go.uber.org/zap"
)

const pendingBatchSize = 100

// verificationSubmission is what we hand the photo-verification service
// for each visit awaiting a verdict.
type verificationSubmission struct {
	VisitID  string `json:"visit_id"`
	PhotoURL string `json:"photo_url"`
}

// VerificationVerdict is the outcome the verification service returns
// once a submitted photo has been reviewed.
type VerificationVerdict struct {
	VisitID    string    `json:"visit_id"`
	Approved   bool      `json:"approved"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

type verdictsResponse struct {
	Verdicts []VerificationVerdict `json:"verdicts"`
}

// VerificationSyncWorker drives photo verification end to end: each tick
// it submits pending visits to the verification service, then pulls
// verdicts issued since the last tick and applies them.
type VerificationSyncWorker struct {
	visits       *services.VisitService
	logger       *zap.Logger
	interval     time.Duration
	baseURL      string // e.g. "http://verifier:8700"
	serviceToken string
	httpClient   *http.Client
	lastPollAt   time.Time
}

func NewVerificationSyncWorker(
	visits *services.VisitService,
	baseURL, serviceToken string,
	logger *zap.Logger,
) *VerificationSyncWorker {
	return &VerificationSyncWorker{
		visits:       visits,
		logger:       logger,
		interval:     2 * time.Minute,
		baseURL:      baseURL,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
		// First poll looks back a day so verdicts issued while we were
		// down are not lost. Re-applying a verdict is a no-op update.
		lastPollAt: time.Now().UTC().Add(-24 * time.Hour),
	}
}

func (w *VerificationSyncWorker) Start(ctx context.Context) {
	w.logger.Info("🔁 starting verification sync worker (visits ↔ verifier)")
	go w.run(ctx)
}

func (w *VerificationSyncWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.submitPending(ctx); err != nil {
				w.logger.Error("failed to submit pending verifications", zap.Error(err))
			}
			if err := w.applyVerdicts(ctx); err != nil {
				w.logger.Error("failed to apply verification verdicts", zap.Error(err))
			}
		case <-ctx.Done():
			w.logger.Info("⏹️ verification sync worker stopped")
			return
		}
	}
}

// submitPending pushes photo visits awaiting review to the verifier.
// The verifier dedupes on visit_id, so re-submitting across ticks while
// a verdict is outstanding is harmless.
func (w *VerificationSyncWorker) submitPending(ctx context.Context) error {
	pending, err := w.visits.PendingVerifications(ctx, pendingBatchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	submissions := make([]verificationSubmission, 0, len(pending))
	for _, visit := range pending {
		if visit.PhotoURL == nil {
			continue
		}
		submissions = append(submissions, verificationSubmission{
			VisitID:  visit.ID,
			PhotoURL: *visit.PhotoURL,
		})
	}
	if len(submissions) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{"submissions": submissions})
	if err != nil {
		return fmt.Errorf("failed to encode submissions: %w", err)
	}

	endpoint, err := w.endpoint("/api/v1/internal/submissions", nil)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verifier submission request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("verifier returned %d: %s", resp.StatusCode, string(body))
	}

	w.logger.Info("📤 submitted visits for verification", zap.Int("count", len(submissions)))
	return nil
}

// applyVerdicts pulls verdicts issued since the last successful poll and
// flips the corresponding visits.
func (w *VerificationSyncWorker) applyVerdicts(ctx context.Context) error {
	pollStarted := time.Now().UTC()

	endpoint, err := w.endpoint("/api/v1/internal/verdicts", map[string]string{
		"since": w.lastPollAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build verdicts request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verifier verdicts request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("verifier returned %d: %s", resp.StatusCode, string(body))
	}

	var response verdictsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode verdicts response: %w", err)
	}

	if len(response.Verdicts) == 0 {
		w.lastPollAt = pollStarted
		return nil
	}

	var applied, failed int
	for _, verdict := range response.Verdicts {
		if err := w.visits.ApplyVerificationVerdict(ctx, verdict.VisitID, verdict.Approved); err != nil {
			failed++
			w.logger.Warn("failed to apply verdict",
				zap.String("visit_id", verdict.VisitID),
				zap.Bool("approved", verdict.Approved),
				zap.Error(err))
		} else {
			applied++
		}
	}

	// Advance the cursor only when every verdict landed, so failures get
	// retried on the next tick.
	if failed == 0 {
		w.lastPollAt = pollStarted
	}

	w.logger.Info("✅ verification verdicts applied",
		zap.Int("applied", applied),
		zap.Int("failed", failed))
	return nil
}

func (w *VerificationSyncWorker) endpoint(path string, query map[string]string) (string, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid verifier URL %q: %w", w.baseURL, err)
	}
	u := base.JoinPath(path)
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
