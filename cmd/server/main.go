package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/wfunc/serious-game/internal/api"
	"github.com/wfunc/serious-game/internal/auth"
	"github.com/wfunc/serious-game/internal/config"
	"github.com/wfunc/serious-game/internal/database"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/logger"
	"github.com/wfunc/serious-game/internal/metrics"
	"github.com/wfunc/serious-game/internal/repository"
	"github.com/wfunc/serious-game/internal/service"
	"github.com/wfunc/serious-game/internal/storage"
	"github.com/wfunc/serious-game/internal/utils"
	ws "github.com/wfunc/serious-game/internal/websocket"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Server 服务器实例
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	files   *storage.BlobStore
	hub     *ws.Hub
	metrics *metrics.Metrics
	http    *http.Server

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
		hashPass    = flag.String("hash-password", "", "生成管理员密码的 argon2id 哈希并退出")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}
	if *hashPass != "" {
		hash, err := utils.HashPassword(*hashPass)
		if err != nil {
			fmt.Printf("生成哈希失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	setupSystem(&cfg.System)

	server := NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	server.WaitForShutdown()

	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		logger: logger.GetLogger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 初始化组件并开始监听
func (s *Server) Start() error {
	s.logger.Info("正在启动工作坊游戏服务器...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode),
		zap.String("config", config.ConfigFile()),
	)

	if err := s.initDatabase(); err != nil {
		return err
	}

	files, err := storage.Open(s.ctx, &s.cfg.Storage, logger.WithModule("storage"))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrStorage, "打开文件存储失败")
	}
	s.files = files

	s.metrics = metrics.New(nil)
	s.hub = ws.NewHub(logger.WithModule("websocket"))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.Run(s.ctx)
	}()

	repos := repository.NewManager(database.GetDB())
	services := service.NewServices(service.Dependencies{
		Repos:     repos,
		Files:     s.files,
		Publisher: s.hub,
		Metrics:   s.metrics,
		Log:       logger.WithModule("service"),
	})

	expiry := time.Duration(s.cfg.Security.JWT.ExpireHours) * time.Hour
	authService := auth.NewService(
		auth.NewConfigAuthenticator(s.cfg.Admin, logger.WithModule("auth")),
		utils.NewJWTManager(s.cfg.Security.JWT.Secret, expiry),
		logger.WithModule("auth"),
	)

	router := api.NewRouter(api.Options{
		Config:   s.cfg,
		Repos:    repos,
		Services: services,
		Auth:     authService,
		Hub:      s.hub,
		Metrics:  s.metrics,
		Log:      logger.GetLogger(),
	})

	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP服务异常退出", zap.Error(err))
		}
	}()

	// 日志级别支持热更新，其余配置需重启生效
	config.Watch(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Log.Level)
		s.logger.Info("配置已更新", zap.String("log_level", newCfg.Log.Level))
	})

	s.logger.Info("服务器启动成功", zap.String("http", s.cfg.Server.Addr()))
	return nil
}

// initDatabase 连接数据库并迁移
func (s *Server) initDatabase() error {
	if err := database.Init(&s.cfg.Database); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseConnect, "初始化数据库连接失败")
	}

	if s.cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseConnect, "数据库迁移失败")
		}
	}

	if !database.IsConnected() {
		return apperrors.New(apperrors.ErrDatabaseConnect, "数据库连接检查失败")
	}
	return nil
}

// WaitForShutdown 等待退出信号
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigCh
	s.logger.Info("收到退出信号", zap.String("signal", sig.String()))
}

// Shutdown 优雅关闭：先停止接收请求，再关闭推送与存储
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP服务关闭超时", zap.Error(err))
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		return apperrors.New(apperrors.ErrTimeout, "关闭超时")
	}

	if err := s.files.Close(); err != nil {
		s.logger.Error("关闭文件存储失败", zap.Error(err))
	}
	if err := database.Close(); err != nil {
		s.logger.Error("关闭数据库失败", zap.Error(err))
	}
	return nil
}

// setupSystem 设置系统参数
func setupSystem(cfg *config.SystemConfig) {
	if cfg.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
			time.Local = loc
		}
	}
	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("工作坊游戏服务器\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
