package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/switchcollectorpro/switchcollectorpro/api/router"
	"github.com/switchcollectorpro/switchcollectorpro/internal/config"
	"github.com/switchcollectorpro/switchcollectorpro/internal/database"
	"github.com/switchcollectorpro/switchcollectorpro/internal/service"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/cache"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"
	"github.com/switchcollectorpro/switchcollectorpro/simulate"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(loggerConfig(cfg)); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.WithFields(logrus.Fields{
		"version":  "1.0.0",
		"switch":   cfg.Switch.Host,
		"platform": cfg.Switch.Platform,
	}).Info("Starting Switch Collector Pro Server")

	// 启动模拟交换机（可选），需先于采集启动
	var sim *simulate.Server
	if cfg.Server.SimulateEnable {
		sim = startSimulator(cfg.Server.SimulateConfig)
	}
	defer func() {
		if sim != nil {
			sim.Stop()
		}
	}()

	// 初始化数据库
	if err := database.InitSQLite(cfg.Database.SQLite); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// 初始化Redis（未启用时跳过）
	if err := cache.InitRedis(cfg.Redis); err != nil {
		logger.WithError(err).Warn("Redis unavailable, snapshot publishing disabled")
	}
	defer cache.Close()

	// 创建轮询服务
	poller := service.NewPollerService(cfg)
	if pub := cache.NewSnapshotPublisher(cfg.Redis); pub != nil {
		poller.WithPublisher(pub)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := poller.Start(ctx); err != nil {
		logger.Fatalf("Failed to start poller service: %v", err)
	}
	defer poller.Stop()

	// 设置路由
	r := router.SetupRouter(cfg.Server.Mode, poller)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// 启动服务器
	go func() {
		logger.WithFields(logrus.Fields{"addr": server.Addr, "mode": cfg.Server.Mode}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 配置文件监听与热更新
	go watchConfig(ctx, *configPath, poller)

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 优雅关闭服务器
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func loggerConfig(cfg *config.Config) logger.Config {
	return logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}
}

func startSimulator(path string) *simulate.Server {
	sc, err := simulate.LoadConfig(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Warn("Simulate: failed to load config, using defaults")
		sc = simulate.DefaultConfig()
	}
	srv, err := simulate.Start(sc)
	if err != nil {
		logger.WithError(err).Warn("Simulate: failed to start")
		return nil
	}
	logger.WithField("addr", srv.Addr().String()).Info("Simulate: started")
	return srv
}

// watchConfig 配置变更后刷新日志与采集周期；连接参数变更需重启
func watchConfig(ctx context.Context, path string, poller *service.PollerService) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithError(err).Warn("Config watch init failed")
		return
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		logger.WithError(err).Warn("Config watch add failed")
		return
	}

	var debounce *time.Timer
	trigger := func() {
		newCfg, err := config.Load(path)
		if err != nil {
			logger.WithError(err).Warn("Config reload failed")
			return
		}
		_ = logger.Init(loggerConfig(newCfg))
		poller.SetPollInterval(newCfg.Switch.PollInterval)
		logger.WithField("poll_interval", newCfg.Switch.PollInterval.String()).Info("Config reloaded")
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(300*time.Millisecond, trigger)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.WithError(err).Warn("Config watch error")
		}
	}
}
