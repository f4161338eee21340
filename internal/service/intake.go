// intake.go — приём заявок и откликов на вакансии с публичного сайта.
// Валидация → запись в PostgreSQL → созданная запись.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
	"github.com/bigkaa/corpsite/site-api/internal/domain/validation"
	"github.com/bigkaa/corpsite/site-api/internal/repository"
)

// Значения лейбла kind метрики site_submissions_total.
const (
	kindEnquiry     = "enquiry"
	kindApplication = "application"
)

// IntakeService — сервис приёма публичных форм.
type IntakeService struct {
	enquiries    repository.EnquiryRepository
	applications repository.JobApplicationRepository
	opts         validation.Options
	logger       *slog.Logger
}

// NewIntakeService создаёт сервис приёма форм.
func NewIntakeService(
	enquiries repository.EnquiryRepository,
	applications repository.JobApplicationRepository,
	opts validation.Options,
	logger *slog.Logger,
) *IntakeService {
	return &IntakeService{
		enquiries:    enquiries,
		applications: applications,
		opts:         opts,
		logger:       logger.With(slog.String("component", "intake_service")),
	}
}

// SubmitEnquiry проверяет и сохраняет заявку.
// Ошибки: *validation.Error, *PersistenceError.
func (s *IntakeService) SubmitEnquiry(ctx context.Context, raw map[string]any) (*model.Enquiry, error) {
	in, err := validation.ValidateEnquiry(raw, s.opts)
	if err != nil {
		submissionsTotal.WithLabelValues(kindEnquiry, resultRejected).Inc()
		return nil, err
	}

	e := &model.Enquiry{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		ServiceType: in.ServiceType,
		Message:     in.Message,
		Language:    in.Language,
		ResumeURL:   optionalString(in.ResumeURL),
	}
	if err := s.enquiries.Create(ctx, e); err != nil {
		submissionsTotal.WithLabelValues(kindEnquiry, resultFailed).Inc()
		s.logger.Error("Ошибка сохранения заявки", slog.String("error", err.Error()))
		return nil, persistenceError("Failed to create enquiry", err)
	}

	submissionsTotal.WithLabelValues(kindEnquiry, resultAccepted).Inc()
	s.logger.Info("Заявка принята",
		slog.String("id", e.ID),
		slog.String("service_type", e.ServiceType),
		slog.Bool("with_resume", e.ResumeURL != nil),
	)
	return e, nil
}

// SubmitJobApplication проверяет и сохраняет отклик на вакансию.
// Несуществующая вакансия — ошибка валидации поля jobId.
func (s *IntakeService) SubmitJobApplication(ctx context.Context, raw map[string]any) (*model.JobApplication, error) {
	in, err := validation.ValidateJobApplication(raw, s.opts)
	if err != nil {
		submissionsTotal.WithLabelValues(kindApplication, resultRejected).Inc()
		return nil, err
	}

	a := &model.JobApplication{
		JobID:       in.JobID,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		ResumeURL:   in.ResumeURL,
		CoverLetter: optionalString(in.CoverLetter),
	}
	if err := s.applications.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrReferenceNotFound) {
			submissionsTotal.WithLabelValues(kindApplication, resultRejected).Inc()
			return nil, validation.FieldErrorf("jobId", "Invalid job ID")
		}
		submissionsTotal.WithLabelValues(kindApplication, resultFailed).Inc()
		s.logger.Error("Ошибка сохранения отклика",
			slog.String("job_id", a.JobID),
			slog.String("error", err.Error()),
		)
		return nil, persistenceError("Failed to submit application", err)
	}

	submissionsTotal.WithLabelValues(kindApplication, resultAccepted).Inc()
	s.logger.Info("Отклик на вакансию принят",
		slog.String("id", a.ID),
		slog.String("job_id", a.JobID),
	)
	return a, nil
}

// optionalString — nil для пустой строки.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
