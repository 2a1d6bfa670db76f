package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"aams/internal/auth"
	"aams/internal/config"
	"aams/internal/httpmiddleware"
	"aams/internal/kv"
	"aams/internal/realtime"
	"aams/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	logger, err := buildLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer logger.Sync()

	blobs, err := kv.NewFile(cfg.DataDir)
	if err != nil {
		return err
	}
	writer := kv.NewWriter(blobs, kv.FlushPolicy(cfg.FlushPolicy), cfg.FlushDebounce, logger)

	var bus realtime.Bus
	var redisClient *redis.Client
	if cfg.BusBackend == "redis" {
		redisClient = realtime.NewRedisClient(cfg.RedisAddr)
		bus = realtime.NewRedisBus(redisClient, logger)
	} else {
		bus = realtime.NewMemoryBus()
	}
	defer bus.Close()

	st := store.New(writer, bus, store.Options{Logger: logger, LiveCodeTTL: cfg.LiveCodeTTL})
	defer st.Close()

	if seeded, err := st.Seed(); err != nil {
		return err
	} else if seeded {
		logger.Info("fresh storage seeded", zap.String("dir", cfg.DataDir))
	}

	r := newRouter(cfg, st, redisClient, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
	return nil
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" || env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newRouter(cfg config.App, st *store.Store, redisClient *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{SkipPaths: []string{"/healthz", "/metrics"}}))
	r.Use(corsMiddleware())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		busHealthy := true
		if redisClient != nil {
			busHealthy = realtime.RedisHealthy(c.Request.Context(), redisClient)
			if !busHealthy {
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, gin.H{"status": "ok", "bus": busHealthy})
	})

	r.POST("/v1/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := st.Login(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, store.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		token, exp, err := auth.IssueSession(user.ID, string(user.Role), cfg.JWTIssuer, cfg.JWTSigningKey, cfg.SessionTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": exp.Unix(), "user": user})
	})

	v1 := r.Group("/v1", auth.SessionAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	v1.POST("/logout", func(c *gin.Context) {
		if err := st.Logout(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})

	registerUserRoutes(v1, st, logger)
	registerAttendanceRoutes(v1, st, logger)
	registerAcademicRoutes(v1, st, logger)
	registerRegistrationRoutes(v1, st, logger)
	registerLiveCodeRoutes(v1, st, logger)

	return r
}

// respondList renders a collection even when the read came back with a
// corruption error; the dashboard shows best-effort data, the error only
// hits the log.
func respondList[T any](c *gin.Context, logger *zap.Logger, key string, items []T, err error) {
	if err != nil {
		logger.Warn("collection read degraded", zap.String("collection", key), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{key: items})
}

func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
