package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"polls-backend/ratelimit"
	"polls-backend/urls"

	"github.com/stretchr/testify/assert"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis unavailable")
}

func TestRateLimitMiddleware_RejectsOverBurst(t *testing.T) {
	router, _ := setupRouter(t, ratelimit.NewLocalLimiter(0.001, 2))
	index := urls.MustReverse(urls.IndexRoute)

	assert.Equal(t, http.StatusOK, get(router, index).Code)
	assert.Equal(t, http.StatusOK, get(router, index).Code)

	w := get(router, index)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")

	// health checks are not limited
	assert.Equal(t, http.StatusOK, get(router, "/health").Code)
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	router, _ := setupRouter(t, failingLimiter{})

	assert.Equal(t, http.StatusOK, get(router, urls.MustReverse(urls.IndexRoute)).Code)
}
