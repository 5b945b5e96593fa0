package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/serious-game/internal/auth"
	"github.com/wfunc/serious-game/internal/config"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/metrics"
	"github.com/wfunc/serious-game/internal/middleware"
	"github.com/wfunc/serious-game/internal/repository"
	"github.com/wfunc/serious-game/internal/service"
	ws "github.com/wfunc/serious-game/internal/websocket"
	"go.uber.org/zap"
)

// Options 路由依赖
type Options struct {
	Config   *config.Config
	Repos    *repository.Manager
	Services *service.Services
	Auth     *auth.Service
	Hub      *ws.Hub
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

// Router API路由器
type Router struct {
	engine         *gin.Engine
	opts           Options
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.IPRateLimiter

	authHandler        *AuthHandler
	gameHandler        *GameHandler
	leaderboardHandler *LeaderboardHandler
	wsHandler          *WebSocketHandler
	log                *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(opts Options) *Router {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	if opts.Config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog(opts.Metrics))
	engine.Use(middleware.Recovery())

	if opts.Hub != nil {
		opts.Hub.SetSnapshot(func(ctx context.Context) (interface{}, error) {
			return opts.Services.Leaderboard.Leaderboard(ctx)
		})
		opts.Hub.SetCounter(opts.Metrics)
	}

	r := &Router{
		engine:             engine,
		opts:               opts,
		authMiddleware:     middleware.NewAuthMiddleware(opts.Auth),
		authHandler:        NewAuthHandler(opts.Auth),
		gameHandler:        NewGameHandler(opts.Services.Games, opts.Services.Footprints, opts.Config.Server.MaxUploadSize, opts.Log.Named("api")),
		leaderboardHandler: NewLeaderboardHandler(opts.Services.Leaderboard, opts.Services.Footprints),
		wsHandler:          NewWebSocketHandler(opts.Hub, opts.Log.Named("ws")),
		log:                opts.Log,
	}

	rl := opts.Config.Security.RateLimit
	if rl.Enabled {
		r.rateLimiter = middleware.NewIPRateLimiter(rl.RequestsPerMinute, rl.Burst)
	}

	r.setupRoutes()
	return r
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.healthCheck)
	r.engine.GET("/metrics", gin.WrapH(r.opts.Metrics.Handler()))
	registerOpenAPIRoutes(r.engine)
	registerSwaggerRoutes(r.engine)

	v1 := r.engine.Group("/api/v1")
	{
		v1.POST("/auth/login", r.authHandler.Login)

		games := v1.Group("/games")
		{
			games.GET("", r.gameHandler.List)
			games.POST("", r.gameHandler.Create)
			games.GET("/lookup", r.gameHandler.Lookup)
			games.GET("/:id", r.gameHandler.Get)
			games.DELETE("/:id", r.authMiddleware.RequireAdmin(), r.gameHandler.Delete)
			games.GET("/:id/guide", r.gameHandler.Guide)
			games.GET("/:id/poster", r.gameHandler.Poster)
			games.POST("/:id/scores", r.scoreLimit(), r.gameHandler.SubmitScore)
			games.POST("/:id/footprint", r.gameHandler.ComputeFootprint)
		}

		v1.GET("/leaderboard", r.leaderboardHandler.Leaderboard)
		v1.GET("/leaderboard/chart.png", r.leaderboardHandler.Chart)
		v1.GET("/leaderboard/export.xlsx", r.leaderboardHandler.Export)
		v1.GET("/footprints", r.leaderboardHandler.Footprints)
	}

	if r.opts.Hub != nil {
		r.engine.GET("/ws/leaderboard", r.wsHandler.Leaderboard)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, apperrors.NotFound("接口不存在: %s", c.Request.URL.Path))
	})
}

// scoreLimit 评分提交按IP限流，未启用时放行
func (r *Router) scoreLimit() gin.HandlerFunc {
	if r.rateLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(r.rateLimiter, r.opts.Metrics.RateLimited)
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	online := 0
	if r.opts.Hub != nil {
		online = r.opts.Hub.GetOnlineCount()
	}

	if err := r.opts.Repos.Ping(ctx); err != nil {
		r.log.Warn("健康检查失败", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"database":          "ok",
		"websocket_clients": online,
	})
}

// Handler 返回 http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
