// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/LitLensMCP/internal/api"
	"github.com/Corphon/LitLensMCP/internal/app"
	"github.com/Corphon/LitLensMCP/internal/config"
	"github.com/Corphon/LitLensMCP/internal/utils"
)

func main() {
	log.Println("starting LitLensMCP server...")

	baseConfig, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration failed: %v", err)
	}

	createDirectories(baseConfig)

	if err := utils.InitLogger(filepath.Join(baseConfig.LogDir, "litlens.log")); err != nil {
		log.Fatalf("initializing logger failed: %v", err)
	}
	if baseConfig.DebugMode {
		utils.GetLogger().SetLogLevel(utils.DEBUG)
	}

	if err := config.InitConfig(baseConfig.DataDir); err != nil {
		log.Fatalf("initializing configuration failed: %v", err)
	}

	cfg := config.GetCurrentConfig()
	if err := app.InitServices(cfg); err != nil {
		log.Fatalf("initializing services failed: %v", err)
	}

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.SetupRouter()
	if err != nil {
		log.Fatalf("setting up routes failed: %v", err)
	}

	log.Printf("server listening on port %s", cfg.Port)
	runWithGracefulShutdown(router, cfg.Port)
}

func runWithGracefulShutdown(router *gin.Engine, port string) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	app.ShutdownServices()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced server shutdown: %v", err)
	}

	log.Println("server stopped")
}

func createDirectories(cfg *config.Config) {
	dirs := []string{
		cfg.DataDir,
		filepath.Join(cfg.DataDir, "blobs"),
		filepath.Join(cfg.DataDir, "exports"),
		cfg.LogDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("creating directory %s failed: %v", dir, err)
		}
	}
}
