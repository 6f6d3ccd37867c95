package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"magnetview/api"
	"magnetview/config"
	"magnetview/handlers"
	"magnetview/internal/cache"
	"magnetview/services/preview"
	"magnetview/services/resolve"
	"magnetview/utils"
)

func main() {
	cfg := config.Load()

	if cfg.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
		})
	}

	log.Printf("[main] starting magnetview, endpoints=%v", cfg.Endpoints)

	store := openStore(cfg)
	defer store.Close()

	// One pooled HTTP client shared by lookups and screenshot prefetch.
	httpClient := &http.Client{Timeout: 30 * time.Second}

	client := resolve.NewClient(httpClient, resolve.DefaultRetryPolicy)
	resolver := resolve.NewService(client, store, cfg.Endpoints, cfg.CacheTTL)
	prefetcher := preview.NewPrefetcher(httpClient, 3)

	svc := preview.NewService(resolver, prefetcher, preview.Options{
		MaxScreenshots:   cfg.MaxScreenshots,
		ImageBaseRewrite: cfg.ImageBaseRewrite,
		BotName:          cfg.BotName,
		GroupedPlatforms: cfg.GroupedPlatforms,
		PrefetchImages:   cfg.PrefetchImages,
	})

	router := utils.NewRouter()
	router.Use(api.RecoverMiddleware(), api.RequestIDMiddleware())
	handlers.NewPreviewHandler(svc).Register(router)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}

// openStore connects the Redis cache, falling back to the in-memory
// store when Redis is unconfigured or unreachable. Cache trouble must
// never keep the service from starting.
func openStore(cfg *config.Config) cache.Store {
	if cfg.RedisAddr == "" {
		log.Printf("[main] no REDIS_ADDR configured, using in-memory cache")
		return cache.NewMemoryStore()
	}

	redisStore := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisStore.Ping(ctx); err != nil {
		log.Printf("[main] redis unreachable (%v), falling back to in-memory cache", err)
		redisStore.Close()
		return cache.NewMemoryStore()
	}

	log.Printf("[main] redis cache connected at %s", cfg.RedisAddr)
	return redisStore
}
