package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestRateLimiterBlocksExcess(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests within burst, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %v", codes)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, ip := range []string{"192.0.2.1", "192.0.2.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected fresh client %s to pass, got %d", ip, rec.Code)
		}
	}
}

// Exercises the read-locked fast path, the slow path and Cleanup from many
// goroutines at once. Fails under the race detector if lastSeen bookkeeping
// regresses to an unsynchronized write.
func TestRateLimiterConcurrentSameIP(t *testing.T) {
	rl := NewRateLimiter(1000, 1000)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.RemoteAddr = "192.0.2.1:1234"
				handler.ServeHTTP(httptest.NewRecorder(), req)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			rl.Cleanup(time.Minute)
		}
	}()
	wg.Wait()
}

func TestRateLimiterCleanupDropsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter("192.0.2.1")

	rl.mu.Lock()
	rl.limiters["192.0.2.1"].lastSeen.Store(time.Now().Add(-time.Hour).UnixNano())
	rl.mu.Unlock()

	rl.Cleanup(24 * time.Hour)
	rl.mu.RLock()
	kept := len(rl.limiters)
	rl.mu.RUnlock()
	if kept != 1 {
		t.Fatalf("expected recently idle limiter to survive, have %d", kept)
	}

	rl.Cleanup(time.Minute)
	rl.mu.RLock()
	kept = len(rl.limiters)
	rl.mu.RUnlock()
	if kept != 0 {
		t.Fatalf("expected stale limiter to be dropped, have %d", kept)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		want      string
	}{
		{name: "forwarded wins", forwarded: "203.0.113.7", realIP: "198.51.100.2", remote: "10.0.0.1:80", want: "203.0.113.7"},
		{name: "real ip next", realIP: "198.51.100.2", remote: "10.0.0.1:80", want: "198.51.100.2"},
		{name: "remote addr fallback", remote: "10.0.0.1:80", want: "10.0.0.1:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
