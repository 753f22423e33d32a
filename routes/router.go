package routes

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"polls-backend/handlers"
	"polls-backend/ratelimit"
	"polls-backend/service"
	"polls-backend/templates"
	"polls-backend/urls"
	"polls-backend/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"gorm.io/gorm"
)

// Server 是HTTP服务器的封装
type Server struct {
	*http.Server
}

// Dependencies are the collaborators the router hands to its handlers.
type Dependencies struct {
	Service service.PollService
	DB      *gorm.DB
	Hub     *websocket.Hub
	// Limiter may be nil to disable rate limiting.
	Limiter ratelimit.Limiter
}

// SetupRouter 设置和配置Gin路由
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.Default()

	// 配置CORS中间件
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.SetHTMLTemplate(templates.Must())
	router.NoRoute(handlers.PageNotFound)

	health := handlers.NewHealthHandler(deps.DB)
	router.GET("/health", health.HealthCheck)
	router.GET("/status", health.SystemStatus)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, urls.MustReverse(urls.IndexRoute))
	})

	polls := handlers.NewPollHandler(deps.Service)
	group := router.Group(urls.Prefix)
	group.Use(handlers.RateLimitMiddleware(deps.Limiter))
	{
		group.GET(urls.Patterns[urls.IndexRoute], polls.Index)
		group.GET(urls.Patterns[urls.DetailRoute], polls.Detail)
		group.POST(urls.Patterns[urls.VoteRoute], polls.Vote)
		group.GET(urls.Patterns[urls.ResultsRoute], polls.Results)

		if deps.Hub != nil {
			live := websocket.NewHandler(deps.Hub, questionChecker(deps.Service))
			group.GET(urls.Patterns[urls.LiveRoute], live.Live)
		}
	}

	return router
}

// questionChecker allows live results for every question that has results.
func questionChecker(svc service.PollService) websocket.QuestionChecker {
	return func(ctx context.Context, questionID uint) error {
		_, err := svc.Results(ctx, questionID)
		if errors.Is(err, service.ErrQuestionNotFound) {
			return websocket.ErrUnknownQuestion
		}
		return err
	}
}

// Handler wraps the router with gzip compression. Websocket upgrades bypass
// the gzip writer since they need to hijack the connection.
func Handler(router http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// StartServer 启动HTTP服务器
func StartServer(router *gin.Engine, port string) *Server {
	addr := ":" + port

	srv := &Server{
		&http.Server{
			Addr:              addr,
			Handler:           Handler(router),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	// 在单独的goroutine中启动服务器
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	return srv
}
