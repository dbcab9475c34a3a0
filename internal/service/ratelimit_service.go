package service

import (
	"sync"
	"time"

	"mediarelay/internal/model"
	"mediarelay/pkg/logger"

	"go.uber.org/zap"
)

// rateLimitWindow is the sliding window length
const rateLimitWindow = time.Minute

// RateLimitDecision describes the outcome of one rate limit check
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the oldest request in the window expires
	ResetAt time.Time
}

// RateLimitService enforces a per-client sliding window request limit
type RateLimitService struct {
	cfg      *model.RateLimitConfig
	hits     map[string][]time.Time
	mu       sync.Mutex
	now      func() time.Time
	quitChan chan struct{}
	stopOnce sync.Once
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(cfg *model.RateLimitConfig) *RateLimitService {
	service := &RateLimitService{
		cfg:      cfg,
		hits:     make(map[string][]time.Time),
		now:      time.Now,
		quitChan: make(chan struct{}),
	}

	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go service.cleanupRoutine()
	}

	return service
}

// Allow records a request from key and reports whether it fits the window.
// Rejected requests are not recorded.
func (rls *RateLimitService) Allow(key string) RateLimitDecision {
	limit := rls.cfg.RequestsPerMinute
	// a non-positive limit would reject everything; treat it as unlimited
	if !rls.cfg.Enabled || limit <= 0 {
		return RateLimitDecision{Allowed: true, Limit: limit, Remaining: limit}
	}

	rls.mu.Lock()
	defer rls.mu.Unlock()

	now := rls.now()
	hits := prune(rls.hits[key], now)

	if len(hits) >= limit {
		rls.hits[key] = hits
		decision := RateLimitDecision{Allowed: false, Limit: limit, Remaining: 0, ResetAt: now.Add(rateLimitWindow)}
		if len(hits) > 0 {
			decision.ResetAt = hits[0].Add(rateLimitWindow)
		}
		logger.LogWarn("Rate limit exceeded",
			zap.String("ip", key),
			zap.Int("requests", len(hits)),
			zap.Int("limit", limit))
		return decision
	}

	hits = append(hits, now)
	rls.hits[key] = hits

	return RateLimitDecision{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(hits),
		ResetAt:   hits[0].Add(rateLimitWindow),
	}
}

// prune drops timestamps that fell out of the window ending at now
func prune(hits []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-rateLimitWindow)
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// cleanupRoutine periodically cleans up idle clients
func (rls *RateLimitService) cleanupRoutine() {
	ticker := time.NewTicker(time.Duration(rls.cfg.CleanupInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-rls.quitChan:
			logger.LogInfo("Rate limit service stopped")
			return
		case <-ticker.C:
			rls.cleanup()
		}
	}
}

// cleanup removes clients with no requests left in the window
func (rls *RateLimitService) cleanup() {
	rls.mu.Lock()
	defer rls.mu.Unlock()

	now := rls.now()
	removed := 0

	for key, hits := range rls.hits {
		if len(prune(hits, now)) == 0 {
			delete(rls.hits, key)
			removed++
		}
	}

	if removed > 0 {
		logger.LogDebug("Rate limit entries cleaned up", zap.Int("removed", removed), zap.Int("remaining", len(rls.hits)))
	}
}

// Tracked returns the number of clients currently tracked
func (rls *RateLimitService) Tracked() int {
	rls.mu.Lock()
	defer rls.mu.Unlock()
	return len(rls.hits)
}

// Stop stops the rate limit service
func (rls *RateLimitService) Stop() {
	rls.stopOnce.Do(func() { close(rls.quitChan) })
}
