package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/surveys", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusCreated, do("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusCreated, do("10.0.0.1:5001").Code)

	rec := do("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusCreated, do("10.0.0.2:5000").Code, "other clients have their own budget")
	assert.Equal(t, http.StatusCreated, do("10.0.0.3").Code, "address without port is used as is")
}

func TestIPRateLimiterPrunesIdleEntries(t *testing.T) {
	limiter := PerMinute(5)
	t0 := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return t0 }

	for i := 0; i <= cleanupThreshold; i++ {
		limiter.GetLimiter(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	assert.Equal(t, cleanupThreshold+1, limiter.Size())

	limiter.now = func() time.Time { return t0.Add(maxIdleAge + time.Minute) }
	limiter.GetLimiter("fresh")
	assert.Equal(t, 1, limiter.Size())
}
