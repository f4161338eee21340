// Точка входа Site API — backend корпоративного сайта.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// объектному хранилищу и (опционально) Redis, создаёт сервисный слой
// и API handlers, запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/bigkaa/corpsite/site-api/internal/api/handlers"
	"github.com/bigkaa/corpsite/site-api/internal/api/middleware"
	"github.com/bigkaa/corpsite/site-api/internal/api/openapi"
	"github.com/bigkaa/corpsite/site-api/internal/auth"
	"github.com/bigkaa/corpsite/site-api/internal/config"
	"github.com/bigkaa/corpsite/site-api/internal/database"
	"github.com/bigkaa/corpsite/site-api/internal/domain/validation"
	"github.com/bigkaa/corpsite/site-api/internal/objectstore"
	"github.com/bigkaa/corpsite/site-api/internal/repository"
	"github.com/bigkaa/corpsite/site-api/internal/server"
	"github.com/bigkaa/corpsite/site-api/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения (и .env)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Site API запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("env", cfg.Env),
	)

	if cfg.AdminPassword == "" {
		logger.Warn("SITE_ADMIN_PASSWORD не задан, вход в админку невозможен")
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Объектное хранилище резюме
	store, err := objectstore.New(cfg, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента хранилища", slog.String("error", err.Error()))
		os.Exit(1)
	}
	signer := objectstore.NewLinkSigner(cfg.SessionSecret, cfg.PublicBaseURL)

	// 6. OpenAPI контракт
	openapiJSON, err := openapi.JSON(ctx)
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Repositories
	enquiryRepo := repository.NewEnquiryRepository(pool)
	applicationRepo := repository.NewJobApplicationRepository(pool)
	jobRepo := repository.NewJobRepository(pool)

	// 8. Services
	sessions := auth.NewSessionManager(cfg.AdminPassword, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	svc := handlers.Services{
		Intake: service.NewIntakeService(
			enquiryRepo, applicationRepo,
			validation.Options{StripCountryCode: cfg.PhoneStripCountryCode},
			logger,
		),
		Resumes: service.NewResumeService(
			store, signer,
			cfg.ResumeMaxBytes, cfg.ResumeSignedURLTTL,
			logger,
		),
		Reconciler: service.NewResumeReconciler(
			enquiryRepo, applicationRepo,
			service.NewHTTPProber(cfg.ProbeTimeout),
			store.Bucket(), store.PublicPrefix(), store.PublicURL,
			logger,
		),
		Jobs:     service.NewJobService(jobRepo, cfg.JobsCacheSize, cfg.JobsCacheTTL, logger),
		Records:  service.NewRecordService(enquiryRepo, applicationRepo, time.Local, logger),
		Stats:    service.NewStatsService(jobRepo, applicationRepo, enquiryRepo),
		Sessions: sessions,
	}

	// 9. Readiness checkers (PostgreSQL + объектное хранилище)
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), store)
	apiHandler := handlers.NewAPIHandler(healthHandler, svc, openapiJSON, logger)

	// 10. Redis для rate limit (опционально)
	opts := server.Options{Sessions: sessions}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if pingErr := rdb.Ping(pingCtx).Err(); pingErr != nil {
			logger.Warn("Redis недоступен, rate limit пропускает запросы до восстановления",
				slog.String("addr", cfg.RedisAddr),
				slog.String("error", pingErr.Error()),
			)
		}
		cancel()

		opts.RateCounter = middleware.NewRedisCounter(rdb)
		logger.Info("Rate limit публичных форм включён",
			slog.Int("limit", cfg.RateLimit),
			slog.String("window", cfg.RateLimitWindow.String()),
		)
	} else {
		logger.Info("Rate limit отключён (SITE_REDIS_ADDR не задан)")
	}

	// 11. topologymetrics — мониторинг зависимостей (PostgreSQL + хранилище)
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthConfig{
		ServiceID:         "site-api",
		Group:             cfg.DephealthGroup,
		PgConnURL:         cfg.DatabaseURL(),
		StorageURL:        cfg.StorageURL(),
		StorageHealthPath: cfg.StorageHealthPath,
		CheckInterval:     cfg.DephealthCheckInterval,
	}, pgDB, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 12. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, opts)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 13. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Site API остановлен")
}
