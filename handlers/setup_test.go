package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"polls-backend/ratelimit"
	"polls-backend/service"
	"polls-backend/templates"
	"polls-backend/testutil"
	"polls-backend/urls"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupTestEnvironment sets up the Gin router and in-memory SQLite database for testing.
func SetupTestEnvironment(t *testing.T) (*gin.Engine, *gorm.DB) {
	return setupRouter(t, nil)
}

func setupRouter(t *testing.T, limiter ratelimit.Limiter) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, db := testutil.NewRepository(t)
	polls := NewPollHandler(service.NewPollService(repo, nil))
	health := NewHealthHandler(db)

	router := gin.New()
	router.SetHTMLTemplate(templates.Must())
	router.NoRoute(PageNotFound)
	router.GET("/health", health.HealthCheck)
	router.GET("/status", health.SystemStatus)

	// Setup Routes (same as routes.SetupRouter)
	group := router.Group(urls.Prefix)
	group.Use(RateLimitMiddleware(limiter))
	{
		group.GET(urls.Patterns[urls.IndexRoute], polls.Index)
		group.GET(urls.Patterns[urls.DetailRoute], polls.Detail)
		group.POST(urls.Patterns[urls.VoteRoute], polls.Vote)
		group.GET(urls.Patterns[urls.ResultsRoute], polls.Results)
	}

	return router, db
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func getJSON(router http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func postForm(router http.Handler, target string, form url.Values, accept string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	router.ServeHTTP(w, req)
	return w
}
