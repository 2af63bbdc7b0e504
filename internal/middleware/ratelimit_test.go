package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func rateLimitedHandler(rl *RateLimiter, mw func(http.Handler) http.Handler) http.Handler {
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

// TestRateLimiter_GeneralAllowsWithinBurst はバースト内のリクエストが
// 通過することを検証する。
func TestRateLimiter_GeneralAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     10,
		GeneralBurst:    5,
		RegisterRate:    1,
		RegisterBurst:   1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	h := rateLimitedHandler(rl, rl.GeneralMiddleware())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/trivia", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

// TestRateLimiter_GeneralRejectsOverBurst はバーストを超えたリクエストが
// 429で拒否されることを検証する。
func TestRateLimiter_GeneralRejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     0.001,
		GeneralBurst:    2,
		RegisterRate:    1,
		RegisterBurst:   1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	h := rateLimitedHandler(rl, rl.GeneralMiddleware())

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/trivia", nil)
		req.RemoteAddr = "10.0.0.2:12345"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", last.Code, http.StatusTooManyRequests)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header is missing")
	}
	if got := last.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

// TestRateLimiter_SeparateClientsIndependent はクライアントIPごとに
// 独立したリミッターが使われることを検証する。
func TestRateLimiter_SeparateClientsIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     0.001,
		GeneralBurst:    1,
		RegisterRate:    1,
		RegisterBurst:   1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	h := rateLimitedHandler(rl, rl.GeneralMiddleware())

	req1 := httptest.NewRequest(http.MethodGet, "/api/trivia", nil)
	req1.RemoteAddr = "10.0.1.1:100"
	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, req1)

	req2 := httptest.NewRequest(http.MethodGet, "/api/trivia", nil)
	req2.RemoteAddr = "10.0.1.2:100"
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, req2)

	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Errorf("status = %d, %d, want both %d", w1.Code, w2.Code, http.StatusOK)
	}
}

// TestRateLimiter_RegisterStricterThanGeneral は登録用リミッターが
// 一般用とは別のバケットで制限されることを検証する。
func TestRateLimiter_RegisterStricterThanGeneral(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     100,
		GeneralBurst:    100,
		RegisterRate:    0.001,
		RegisterBurst:   1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	general := rateLimitedHandler(rl, rl.GeneralMiddleware())
	register := rateLimitedHandler(rl, rl.RegisterMiddleware())

	reqR := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	reqR.RemoteAddr = "10.0.2.1:100"
	w := httptest.NewRecorder()
	register.ServeHTTP(w, reqR)
	if w.Code != http.StatusOK {
		t.Fatalf("first register: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	register.ServeHTTP(w, reqR)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second register: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// 登録が制限されても一般エンドポイントは通る。
	reqG := httptest.NewRequest(http.MethodGet, "/api/trivia", nil)
	reqG.RemoteAddr = "10.0.2.1:100"
	w = httptest.NewRecorder()
	general.ServeHTTP(w, reqG)
	if w.Code != http.StatusOK {
		t.Errorf("general after register limit: status = %d, want %d", w.Code, http.StatusOK)
	}
}
