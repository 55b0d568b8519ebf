package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"orion-backend/internal/config"
	"orion-backend/internal/db"
	"orion-backend/internal/email"
	apihttp "orion-backend/internal/http"
	"orion-backend/internal/repository"
	"orion-backend/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	txRepo := repository.NewPgTransactionRepository(pool)
	analyticsRepo := repository.NewPgAnalyticsRepository(pool)
	auditRepo := repository.NewPgAuditRepository(pool)
	insightRepo := repository.NewPgInsightRepository(pool)

	alertSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			alertSender = sender
		}
	}

	var (
		loginLimiter service.LoginRateLimiter
		tokenStore   service.RefreshTokenStore
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, 10*time.Minute, 10)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)

	userSvc := service.NewUserService(logger, userRepo, loginLimiter)
	txSvc := service.NewTransactionService(logger, txRepo)
	analyticsSvc := service.NewAnalyticsService(logger, analyticsRepo)
	auditSvc := service.NewAuditService(logger, auditRepo)
	insightSvc := service.NewInsightService(logger, txRepo, insightRepo, alertSender)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc, auditSvc)
	txHandler := apihttp.NewTransactionHandler(logger, txSvc, auditSvc)
	analyticsHandler := apihttp.NewAnalyticsHandler(logger, analyticsSvc)
	insightHandler := apihttp.NewInsightHandler(logger, userSvc, insightSvc)
	auditHandler := apihttp.NewAuditHandler(logger, auditSvc)

	router := apihttp.NewRouter(logger, cfg.CORSOrigins, jwtSvc, authHandler, txHandler, analyticsHandler, insightHandler, auditHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
