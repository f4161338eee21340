// records.go — заявки и отклики для админки: выборка, фильтры, удаление, экспорт в CSV.
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
	"github.com/bigkaa/corpsite/site-api/internal/domain/validation"
	"github.com/bigkaa/corpsite/site-api/internal/repository"
)

// Периоды фильтра заявок по дате создания.
const (
	PeriodAll   = "all"
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// csvDateLayout — формат даты в экспорте заявок.
const csvDateLayout = "02/01/2006, 15:04:05"

// csvHeader — колонки экспорта заявок.
var csvHeader = []string{"Date", "Name", "Email", "Phone", "Service Type", "Language", "Message"}

// EnquiryQuery — параметры выборки заявок из строки запроса.
type EnquiryQuery struct {
	// Q — строка поиска
	Q string
	// Service — направление услуг; пусто или "all" — все
	Service string
	// Period — all, today, week, month; пусто — all
	Period string
}

// RecordService — сервис заявок и откликов для админки.
type RecordService struct {
	enquiries    repository.EnquiryRepository
	applications repository.JobApplicationRepository
	location     *time.Location
	now          func() time.Time
	logger       *slog.Logger
}

// NewRecordService создаёт сервис записей админки.
// location — часовой пояс для границы «сегодня» и дат в CSV.
func NewRecordService(
	enquiries repository.EnquiryRepository,
	applications repository.JobApplicationRepository,
	location *time.Location,
	logger *slog.Logger,
) *RecordService {
	if location == nil {
		location = time.Local
	}
	return &RecordService{
		enquiries:    enquiries,
		applications: applications,
		location:     location,
		now:          time.Now,
		logger:       logger.With(slog.String("component", "record_service")),
	}
}

// ListEnquiries возвращает заявки по фильтру, новые первыми.
func (s *RecordService) ListEnquiries(ctx context.Context, q EnquiryQuery) ([]*model.Enquiry, error) {
	filter, err := s.enquiryFilter(q)
	if err != nil {
		return nil, err
	}
	list, err := s.enquiries.List(ctx, filter)
	if err != nil {
		return nil, persistenceError("Failed to fetch enquiries", err)
	}
	return list, nil
}

// DeleteEnquiry удаляет заявку.
func (s *RecordService) DeleteEnquiry(ctx context.Context, id string) error {
	if err := s.enquiries.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: заявка %s", ErrNotFound, id)
		}
		return persistenceError("Failed to delete enquiry", err)
	}
	s.logger.Info("Заявка удалена", slog.String("id", id))
	return nil
}

// ExportEnquiries пишет заявки по фильтру в w в формате CSV.
// Возвращает количество выгруженных заявок.
func (s *RecordService) ExportEnquiries(ctx context.Context, q EnquiryQuery, w io.Writer) (int, error) {
	list, err := s.ListEnquiries(ctx, q)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("ошибка записи CSV: %w", err)
	}
	for _, e := range list {
		row := []string{
			e.CreatedAt.In(s.location).Format(csvDateLayout),
			e.Name,
			e.Email,
			e.Phone,
			e.ServiceType,
			e.Language,
			e.Message,
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("ошибка записи CSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("ошибка записи CSV: %w", err)
	}
	return len(list), nil
}

// ExportFilename возвращает имя файла выгрузки на текущую дату.
func (s *RecordService) ExportFilename() string {
	return "enquiries-" + s.now().In(s.location).Format(time.DateOnly) + ".csv"
}

// ListApplications возвращает отклики с названием и отделом вакансии.
func (s *RecordService) ListApplications(ctx context.Context) ([]*model.JobApplication, error) {
	list, err := s.applications.List(ctx)
	if err != nil {
		return nil, persistenceError("Failed to fetch applications", err)
	}
	return list, nil
}

// DeleteApplication удаляет отклик.
func (s *RecordService) DeleteApplication(ctx context.Context, id string) error {
	if err := s.applications.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: отклик %s", ErrNotFound, id)
		}
		return persistenceError("Failed to delete application", err)
	}
	s.logger.Info("Отклик удалён", slog.String("id", id))
	return nil
}

// enquiryFilter переводит параметры запроса в фильтр репозитория.
func (s *RecordService) enquiryFilter(q EnquiryQuery) (model.EnquiryFilter, error) {
	filter := model.EnquiryFilter{Query: strings.TrimSpace(q.Q)}

	service := strings.TrimSpace(q.Service)
	if service != "" && service != "all" {
		if !slices.Contains(model.ServiceTypes, service) {
			return filter, validation.FieldErrorf("service", "Invalid service type")
		}
		filter.ServiceType = service
	}

	now := s.now().In(s.location)
	var since time.Time
	switch strings.TrimSpace(q.Period) {
	case "", PeriodAll:
		return filter, nil
	case PeriodToday:
		y, m, d := now.Date()
		since = time.Date(y, m, d, 0, 0, 0, 0, s.location)
	case PeriodWeek:
		since = now.AddDate(0, 0, -7)
	case PeriodMonth:
		since = now.AddDate(0, 0, -30)
	default:
		return filter, validation.FieldErrorf("period", "Invalid period")
	}
	filter.Since = &since
	return filter, nil
}
