package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"paws/pkg/logger"
)

// KeyExtractor picks the identity a request is counted against. An empty key
// is never limited.
type KeyExtractor func(r *http.Request) string

// CustomerRateLimiter is a sliding window limiter keyed on the customer.
type CustomerRateLimiter struct {
	mu           sync.RWMutex
	requests     map[string][]time.Time
	limit        int
	window       time.Duration
	keyExtractor KeyExtractor
	log          *logger.Logger
	stopCh       chan struct{}
	now          func() time.Time
}

func NewCustomerRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *CustomerRateLimiter {
	if extractor == nil {
		extractor = DefaultKeyExtractor
	}
	limiter := &CustomerRateLimiter{
		requests:     make(map[string][]time.Time),
		limit:        limit,
		window:       window,
		keyExtractor: extractor,
		log:          log,
		stopCh:       make(chan struct{}),
		now:          time.Now,
	}

	go limiter.cleanup()

	return limiter
}

func (rl *CustomerRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || rl.now().Sub(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *CustomerRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *CustomerRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[key][:0:0]
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// SubmissionRateLimit only counts POST requests; lookups are not limited.
// Requests to exemptPaths are never counted.
func SubmissionRateLimit(limiter *CustomerRateLimiter, exemptPaths ...string) func(http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := limiter.keyExtractor(r)
			if !limiter.Allow(key) {
				rejectRateLimited(w, limiter.log, r, key)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, key string) {
	log.Warn("Rate limit exceeded",
		"request_id", RequestID(r.Context()),
		"key", key,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

// DefaultKeyExtractor uses the X-Customer-Email header set by the intake
// form, falling back to the client address.
func DefaultKeyExtractor(r *http.Request) string {
	if email := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Customer-Email"))); email != "" {
		return email
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
