package stats

import (
	"context"
	"strings"
	"sync"
	"time"

	"slidecast-go/internal/storage"

	log "github.com/sirupsen/logrus"
)

// UsageStats tracks explain request usage per model on top of a storage
// backend. Counters are cumulative until the scheduled reset fires.
type UsageStats struct {
	backend       storage.Backend
	mu            sync.Mutex
	resetSchedule time.Time
	resetInterval time.Duration
}

// totalKey is the aggregate bucket across all models.
const totalKey = "__system__/total"

// UsageRecord is the decoded per-model counter set.
type UsageRecord struct {
	Model            string    `json:"model"`
	TotalRequests    int64     `json:"total_requests"`
	SuccessRequests  int64     `json:"success_requests"`
	FailedRequests   int64     `json:"failed_requests"`
	Slides           int64     `json:"slides"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	TotalTokens      int64     `json:"total_tokens"`
	RetrievedAt      time.Time `json:"retrieved_at"`
}

// NewUsageStats creates a usage tracker. A resetInterval of zero
// disables scheduled resets.
func NewUsageStats(backend storage.Backend, resetInterval time.Duration) *UsageStats {
	us := &UsageStats{
		backend:       backend,
		resetInterval: resetInterval,
	}
	if resetInterval > 0 {
		us.resetSchedule = time.Now().UTC().Add(resetInterval)
	}
	return us
}

// RecordExplain records one finished explain stream.
func (u *UsageStats) RecordExplain(ctx context.Context, model string, success bool, slides int64, tokens *TokenUsage) error {
	if u == nil || u.backend == nil {
		return nil
	}
	u.checkAndReset(ctx)

	record := func(key string) error {
		if err := u.backend.IncrementUsage(ctx, key, "total_requests", 1); err != nil {
			return err
		}
		field := "failed_requests"
		if success {
			field = "success_requests"
		}
		if err := u.backend.IncrementUsage(ctx, key, field, 1); err != nil {
			return err
		}
		if slides > 0 {
			if err := u.backend.IncrementUsage(ctx, key, "slides", slides); err != nil {
				return err
			}
		}
		if tokens != nil {
			for field, v := range map[string]int64{
				"prompt_tokens":     tokens.PromptTokens,
				"completion_tokens": tokens.CompletionTokens,
				"total_tokens":      tokens.Total(),
			} {
				if v == 0 {
					continue
				}
				if err := u.backend.IncrementUsage(ctx, key, field, v); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if m := strings.TrimSpace(model); m != "" {
		if err := record(m); err != nil {
			return err
		}
	}
	return record(totalKey)
}

// GetUsage retrieves counters for one model.
func (u *UsageStats) GetUsage(ctx context.Context, model string) (*UsageRecord, error) {
	fields, err := u.backend.GetUsage(ctx, model)
	if err != nil {
		return nil, err
	}
	return &UsageRecord{
		Model:            model,
		TotalRequests:    fields["total_requests"],
		SuccessRequests:  fields["success_requests"],
		FailedRequests:   fields["failed_requests"],
		Slides:           fields["slides"],
		PromptTokens:     fields["prompt_tokens"],
		CompletionTokens: fields["completion_tokens"],
		TotalTokens:      fields["total_tokens"],
		RetrievedAt:      time.Now().UTC(),
	}, nil
}

// GetAllUsage retrieves counters for every recorded model, including the
// aggregate bucket under "total".
func (u *UsageStats) GetAllUsage(ctx context.Context) (map[string]*UsageRecord, error) {
	all, err := u.backend.ListUsage(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*UsageRecord, len(all))
	for key := range all {
		rec, err := u.GetUsage(ctx, key)
		if err != nil {
			continue
		}
		name := key
		if key == totalKey {
			name = "total"
			rec.Model = "total"
		}
		out[name] = rec
	}
	return out, nil
}

// ResetUsage clears counters for one model.
func (u *UsageStats) ResetUsage(ctx context.Context, model string) error {
	return u.backend.ResetUsage(ctx, model)
}

// ResetAll clears every counter and reschedules the next reset.
func (u *UsageStats) ResetAll(ctx context.Context) error {
	all, err := u.backend.ListUsage(ctx)
	if err != nil {
		return err
	}
	for key := range all {
		if err := u.backend.ResetUsage(ctx, key); err != nil {
			log.WithError(err).Errorf("failed to reset usage for %s", key)
		}
	}

	u.mu.Lock()
	if u.resetInterval > 0 {
		u.resetSchedule = time.Now().UTC().Add(u.resetInterval)
	}
	next := u.resetSchedule
	u.mu.Unlock()

	if u.resetInterval > 0 {
		log.Infof("usage statistics reset, next reset at %v", next)
	}
	return nil
}

func (u *UsageStats) checkAndReset(ctx context.Context) {
	u.mu.Lock()
	due := u.resetInterval > 0 && time.Now().UTC().After(u.resetSchedule)
	u.mu.Unlock()
	if !due {
		return
	}
	log.Info("scheduled usage reset triggered")
	if err := u.ResetAll(ctx); err != nil {
		log.WithError(err).Error("failed to reset usage")
	}
}

// StartPeriodicReset blocks, checking hourly whether the reset schedule
// has passed. Run it in a goroutine.
func (u *UsageStats) StartPeriodicReset(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			u.checkAndReset(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// SuccessRate returns the percentage of successful requests.
func (r *UsageRecord) SuccessRate() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return float64(r.SuccessRequests) / float64(r.TotalRequests) * 100
}
