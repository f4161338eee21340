// jobs.go — вакансии: публичный список с LRU-кэшем и CRUD для админки.
// Любое изменение вакансии из админки сбрасывает кэш.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
	"github.com/bigkaa/corpsite/site-api/internal/domain/validation"
	"github.com/bigkaa/corpsite/site-api/internal/repository"
)

// Prometheus-метрики кэша вакансий.
var (
	jobsCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "site_jobs_cache_hits_total",
		Help: "Количество попаданий в кэш опубликованных вакансий.",
	})
	jobsCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "site_jobs_cache_misses_total",
		Help: "Количество промахов кэша опубликованных вакансий.",
	})
)

// activeJobsKey — ключ списка опубликованных вакансий в кэше.
const activeJobsKey = "active"

// JobService — сервис вакансий.
type JobService struct {
	repo   repository.JobRepository
	cache  *expirable.LRU[string, []*model.Job]
	logger *slog.Logger
}

// NewJobService создаёт сервис вакансий.
// cacheSize — максимальное количество записей кэша, cacheTTL — время жизни записи.
func NewJobService(repo repository.JobRepository, cacheSize int, cacheTTL time.Duration, logger *slog.Logger) *JobService {
	return &JobService{
		repo:   repo,
		cache:  expirable.NewLRU[string, []*model.Job](cacheSize, nil, cacheTTL),
		logger: logger.With(slog.String("component", "job_service")),
	}
}

// ListActive возвращает опубликованные вакансии, новые первыми.
func (s *JobService) ListActive(ctx context.Context) ([]*model.Job, error) {
	if jobs, ok := s.cache.Get(activeJobsKey); ok {
		jobsCacheHitsTotal.Inc()
		return jobs, nil
	}
	jobsCacheMissesTotal.Inc()

	jobs, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, persistenceError("Failed to fetch jobs", err)
	}
	s.cache.Add(activeJobsKey, jobs)
	return jobs, nil
}

// GetActive возвращает опубликованную вакансию.
// Отсутствующая и снятая с публикации вакансия — ErrNotFound.
func (s *JobService) GetActive(ctx context.Context, id string) (*model.Job, error) {
	if jobs, ok := s.cache.Get(activeJobsKey); ok {
		for _, j := range jobs {
			if j.ID == id {
				jobsCacheHitsTotal.Inc()
				return j, nil
			}
		}
	}

	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: вакансия %s", ErrNotFound, id)
		}
		return nil, persistenceError("Failed to fetch job", err)
	}
	if !job.IsActive {
		return nil, fmt.Errorf("%w: вакансия %s не опубликована", ErrNotFound, id)
	}
	return job, nil
}

// ListAll возвращает все вакансии для админки.
func (s *JobService) ListAll(ctx context.Context) ([]*model.Job, error) {
	jobs, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, persistenceError("Failed to fetch jobs", err)
	}
	return jobs, nil
}

// Create проверяет тело запроса и создаёт вакансию.
func (s *JobService) Create(ctx context.Context, raw map[string]any) (*model.Job, error) {
	job, err := validation.ValidateJob(raw)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, persistenceError("Failed to create job", err)
	}
	s.invalidate()

	s.logger.Info("Вакансия создана",
		slog.String("id", job.ID),
		slog.String("title", job.Title),
		slog.Bool("is_active", job.IsActive),
	)
	return job, nil
}

// Update применяет частичное обновление вакансии.
func (s *JobService) Update(ctx context.Context, id string, raw map[string]any) (*model.Job, error) {
	patch, err := validation.ValidateJobPatch(raw)
	if err != nil {
		return nil, err
	}
	job, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: вакансия %s", ErrNotFound, id)
		}
		return nil, persistenceError("Failed to update job", err)
	}
	s.invalidate()

	s.logger.Info("Вакансия обновлена", slog.String("id", id))
	return job, nil
}

// Delete удаляет вакансию вместе с откликами на неё.
func (s *JobService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: вакансия %s", ErrNotFound, id)
		}
		return persistenceError("Failed to delete job", err)
	}
	s.invalidate()

	s.logger.Info("Вакансия удалена", slog.String("id", id))
	return nil
}

// invalidate сбрасывает кэш опубликованных вакансий.
func (s *JobService) invalidate() {
	s.cache.Purge()
}
