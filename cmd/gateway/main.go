// file: cmd/gateway/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AquaBridge/internal/adapter/backend"
	"AquaBridge/internal/aquaconf"
	"AquaBridge/internal/aquamiddleware"
	"AquaBridge/internal/aquaobserve"
	"AquaBridge/internal/service/inventory"
	"AquaBridge/internal/transport/http/router"
)

const version = "v1.0.0"

func main() {
	// 在日志系统完全初始化前，使用标准 log
	log.Printf("AquaBridge %s 正在启动...", version)

	cfg := aquaconf.Load()
	aquaobserve.InitLogger(cfg.LogLevel)

	mode := cfg.SelectMode()
	slog.Info("启动模式已选定", "mode", string(mode), "port", cfg.Port)

	broker := backend.New(backend.Options{
		Mode:       mode,
		DriverName: cfg.DriverName(mode),
		DSN:        cfg.DSN(mode),
	})
	defer func() {
		if err := broker.Close(); err != nil {
			slog.Error("关闭后端连接池时发生错误", "error", err)
		}
	}()

	demoStore, err := inventory.NewDemoStore(cfg.DemoDataPath)
	if err != nil {
		slog.Error("初始化演示数据集失败", "error", err)
		os.Exit(1)
	}
	defer demoStore.Close()
	slog.Info("服务层: 演示数据集就绪", "override", cfg.DemoDataPath != "")

	inventoryService := inventory.NewService(broker, demoStore)
	slog.Info("服务层: Inventory 服务初始化完成")

	rateLimiter := aquamiddleware.NewIPRateLimiter(100, 200, 10, 30)

	httpRouter := router.New(router.Dependencies{
		Inventory: inventoryService,
		Backend:   broker,
		Limiter:   rateLimiter,
		Version:   version,
	})
	slog.Info("传输层: HTTP 路由器创建完成")

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("AquaBridge 启动成功，开始监听HTTP请求...", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP服务启动失败", "error", err)
			os.Exit(1)
		}
	}()

	if cfg.PprofAddr != "" {
		aquaobserve.EnablePprof(cfg.PprofAddr)
	}
	aquaobserve.Register()
	slog.Info("监控: metrics 已注册")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("收到停机信号，准备优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("HTTP服务关闭时发生错误", "error", err)
	}
	slog.Info("AquaBridge 已平滑退出")
}
