// Пакет server — HTTP-сервер Site API с graceful shutdown.
// Без TLS — TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bigkaa/corpsite/site-api/internal/api/handlers"
	"github.com/bigkaa/corpsite/site-api/internal/api/middleware"
	"github.com/bigkaa/corpsite/site-api/internal/config"
)

// Server — HTTP-сервер Site API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// Options — middleware, зависящие от окружения.
type Options struct {
	// Sessions — проверка cookie администратора
	Sessions middleware.SessionAuthenticator
	// RateCounter — счётчик rate limit публичных форм (nil — без ограничения)
	RateCounter middleware.RateCounter
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, handler *handlers.APIHandler, opts Options) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(cfg, logger, handler, opts),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает маршруты Site API.
// Публичные формы проходят через rate limit, /api/admin/* — через проверку
// сессии (кроме login, logout и check).
func NewRouter(cfg *config.Config, logger *slog.Logger, h *handlers.APIHandler, opts Options) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Health и metrics проверяются Kubernetes напрямую.
	router.Get("/health/live", h.HealthLive)
	router.Get("/health/ready", h.HealthReady)
	router.Get("/metrics", h.GetMetrics)

	rateLimited := func(next http.Handler) http.Handler { return next }
	if opts.RateCounter != nil {
		rateLimited = middleware.RateLimit(middleware.RateLimitConfig{
			Counter:        opts.RateCounter,
			Limit:          cfg.RateLimit,
			Window:         cfg.RateLimitWindow,
			TrustedProxies: cfg.TrustedProxies,
		}, logger)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/openapi.json", h.GetOpenAPI)

		r.Group(func(r chi.Router) {
			r.Use(rateLimited)
			r.Post("/enquiry", h.PostEnquiry)
			r.Post("/job-application", h.PostJobApplication)
			r.Post("/upload-resume", h.UploadResume)
		})

		r.Get("/resumes/{key}", h.GetResume)
		r.Post("/verify-resume-url", h.VerifyResumeURL)
		r.Get("/jobs", h.ListJobs)
		r.Get("/jobs/{id}", h.GetJob)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.AdminLogin)
			r.Post("/logout", h.AdminLogout)
			r.Get("/check", h.AdminCheck)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(opts.Sessions, logger))

				r.Get("/stats", h.AdminStats)
				r.Post("/fix-resume-urls", h.FixResumeURLs)

				r.Get("/jobs", h.AdminListJobs)
				r.Post("/jobs", h.AdminCreateJob)
				r.Put("/jobs/{id}", h.AdminUpdateJob)
				r.Delete("/jobs/{id}", h.AdminDeleteJob)

				r.Get("/applications", h.AdminListApplications)
				r.Delete("/applications/{id}", h.AdminDeleteApplication)

				r.Get("/enquiries", h.AdminListEnquiries)
				r.Get("/enquiries/export", h.AdminExportEnquiries)
				r.Delete("/enquiries/{id}", h.AdminDeleteEnquiry)
			})
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
