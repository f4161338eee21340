// stats.go — сводные счётчики для админки.
package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
	"github.com/bigkaa/corpsite/site-api/internal/repository"
)

// StatsService — сервис сводной статистики.
type StatsService struct {
	jobs         repository.JobRepository
	applications repository.JobApplicationRepository
	enquiries    repository.EnquiryRepository
}

// NewStatsService создаёт сервис статистики.
func NewStatsService(
	jobs repository.JobRepository,
	applications repository.JobApplicationRepository,
	enquiries repository.EnquiryRepository,
) *StatsService {
	return &StatsService{jobs: jobs, applications: applications, enquiries: enquiries}
}

// Get считает вакансии, отклики и заявки параллельными запросами.
func (s *StatsService) Get(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, active, err := s.jobs.Count(gctx)
		stats.TotalJobs, stats.ActiveJobs = total, active
		return err
	})
	g.Go(func() error {
		n, err := s.applications.Count(gctx)
		stats.TotalApplications = n
		return err
	})
	g.Go(func() error {
		n, err := s.enquiries.Count(gctx)
		stats.TotalEnquiries = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, persistenceError("Failed to fetch stats", err)
	}
	return stats, nil
}
