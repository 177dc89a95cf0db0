package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"paws/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Output: io.Discard})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCustomerRateLimiter_Allow(t *testing.T) {
	rl := NewCustomerRateLimiter(2, time.Minute, DefaultKeyExtractor, testLogger())
	defer rl.Stop()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("jane@example.com") || !rl.Allow("jane@example.com") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("jane@example.com") {
		t.Error("third request inside the window should be rejected")
	}
	if !rl.Allow("sam@example.com") {
		t.Error("other customers are counted separately")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("jane@example.com") {
		t.Error("request after the window should pass")
	}
	if !rl.Allow("") {
		t.Error("empty keys are never limited")
	}
}

func TestSubmissionRateLimit(t *testing.T) {
	rl := NewCustomerRateLimiter(1, time.Minute, DefaultKeyExtractor, testLogger())
	defer rl.Stop()
	h := SubmissionRateLimit(rl)(okHandler())

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", nil)
		req.Header.Set("X-Customer-Email", " Jane@Example.com ")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post(); code != http.StatusOK {
		t.Fatalf("first POST = %d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("second POST = %d, want 429", code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET = %d, lookups must not be limited", rec.Code)
	}
}

func TestSubmissionRateLimit_ExemptPath(t *testing.T) {
	rl := NewCustomerRateLimiter(1, time.Minute, DefaultKeyExtractor, testLogger())
	defer rl.Stop()
	h := SubmissionRateLimit(rl, "/api/v1/slack/interactions")(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/slack/interactions", nil)
		req.RemoteAddr = "3.3.3.3:443"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("click %d = %d, exempt path must not be limited", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", nil)
	req.RemoteAddr = "3.3.3.3:443"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first submission = %d, exempt clicks must not consume the quota", rec.Code)
	}
}

func TestDefaultKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	if got := DefaultKeyExtractor(req); got != "10.0.0.7" {
		t.Errorf("fallback key = %q", got)
	}
	req.Header.Set("X-Customer-Email", "JANE@example.com")
	if got := DefaultKeyExtractor(req); got != "jane@example.com" {
		t.Errorf("email key = %q", got)
	}
}

func signSlack(secret, ts, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + ts + ":" + body))
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestSlackSignatureVerification(t *testing.T) {
	const secret = "8f742231b10e8888abcd99yyyzzz85a5"
	body := "payload=%7B%22type%22%3A%22block_actions%22%7D"
	now := strconv.FormatInt(time.Now().Unix(), 10)
	stale := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)

	tests := []struct {
		name      string
		ts        string
		signature string
		want      int
	}{
		{"valid", now, signSlack(secret, now, body), http.StatusOK},
		{"wrong secret", now, signSlack("other", now, body), http.StatusUnauthorized},
		{"stale timestamp", stale, signSlack(secret, stale, body), http.StatusUnauthorized},
		{"missing headers", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				seen = string(b)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/slack/interactions", strings.NewReader(body))
			if tt.ts != "" {
				req.Header.Set("X-Slack-Request-Timestamp", tt.ts)
				req.Header.Set("X-Slack-Signature", tt.signature)
			}
			rec := httptest.NewRecorder()
			SlackSignatureVerification(secret, testLogger())(next).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && seen != body {
				t.Errorf("body not restored for handler: %q", seen)
			}
		})
	}
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(testLogger(), "/api/v1/slack/interactions")(okHandler())

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		want        int
	}{
		{"json post", http.MethodPost, "/api/v1/requests", "application/json; charset=utf-8", http.StatusOK},
		{"form on json path", http.MethodPost, "/api/v1/requests", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"form on slack path", http.MethodPost, "/api/v1/slack/interactions", "application/x-www-form-urlencoded", http.StatusOK},
		{"json on slack path", http.MethodPost, "/api/v1/slack/interactions", "application/json", http.StatusUnsupportedMediaType},
		{"get without header", http.MethodGet, "/api/v1/blackout-dates", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestIdempotency_ReplaysSuccessfulPost(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"n":` + strconv.Itoa(int(n)) + `}`))
	}))

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", nil)
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("abc")
	second := send("abc")
	if calls.Load() != 1 {
		t.Fatalf("handler calls = %d, want 1", calls.Load())
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Errorf("replay = %d %s", second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Error("replay header missing")
	}

	send("")
	if calls.Load() != 2 {
		t.Errorf("requests without a key must not be cached")
	}
}

func TestRequestLogging_PropagatesRequestID(t *testing.T) {
	var inner string
	h := RequestLogging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if inner != "req-42" || rec.Header().Get(RequestIDHeader) != "req-42" {
		t.Errorf("request id = %q / %q", inner, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if inner == "" || inner == "req-42" {
		t.Errorf("expected a generated id, got %q", inner)
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123")))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}
