package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
)

// JobApplicationRepository — интерфейс доступа к таблице job_applications.
type JobApplicationRepository interface {
	// Create сохраняет отклик. Несуществующая вакансия — ErrReferenceNotFound.
	Create(ctx context.Context, a *model.JobApplication) error
	// GetByID возвращает отклик с названием и отделом вакансии.
	GetByID(ctx context.Context, id string) (*model.JobApplication, error)
	// List возвращает отклики с названием и отделом вакансии, новые первыми.
	List(ctx context.Context) ([]*model.JobApplication, error)
	// Delete удаляет отклик.
	Delete(ctx context.Context, id string) error
	// Count возвращает общее количество откликов.
	Count(ctx context.Context) (int64, error)
	// ListResumeRefs возвращает ссылки на резюме всех откликов.
	ListResumeRefs(ctx context.Context) ([]model.ResumeRef, error)
	// UpdateResumeURL заменяет ссылку на резюме.
	UpdateResumeURL(ctx context.Context, id, url string) error
}

// jobApplicationRepo — реализация JobApplicationRepository.
type jobApplicationRepo struct {
	db DBTX
}

// NewJobApplicationRepository создаёт репозиторий откликов.
func NewJobApplicationRepository(db DBTX) JobApplicationRepository {
	return &jobApplicationRepo{db: db}
}

const applicationSelect = `
	SELECT a.id, a.job_id, a.name, a.email, a.phone, a.resume_url, a.cover_letter, a.created_at,
		COALESCE(j.title, ''), COALESCE(j.department, '')
	FROM job_applications a
	LEFT JOIN jobs j ON j.id = a.job_id`

func scanApplication(row pgx.Row) (*model.JobApplication, error) {
	a := &model.JobApplication{}
	err := row.Scan(
		&a.ID, &a.JobID, &a.Name, &a.Email, &a.Phone, &a.ResumeURL, &a.CoverLetter, &a.CreatedAt,
		&a.JobTitle, &a.JobDepartment,
	)
	return a, err
}

func (r *jobApplicationRepo) Create(ctx context.Context, a *model.JobApplication) error {
	query := `
		INSERT INTO job_applications (job_id, name, email, phone, resume_url, cover_letter)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		a.JobID, a.Name, a.Email, a.Phone, a.ResumeURL, a.CoverLetter,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: вакансия %s", ErrReferenceNotFound, a.JobID)
		}
		return fmt.Errorf("ошибка создания отклика: %w", err)
	}
	return nil
}

func (r *jobApplicationRepo) GetByID(ctx context.Context, id string) (*model.JobApplication, error) {
	a, err := scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения отклика: %w", err)
	}
	return a, nil
}

func (r *jobApplicationRepo) List(ctx context.Context) ([]*model.JobApplication, error) {
	rows, err := r.db.Query(ctx, applicationSelect+` ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка откликов: %w", err)
	}
	defer rows.Close()

	result := make([]*model.JobApplication, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования отклика: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *jobApplicationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM job_applications WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка удаления отклика: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *jobApplicationRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_applications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта откликов: %w", err)
	}
	return n, nil
}

func (r *jobApplicationRepo) ListResumeRefs(ctx context.Context) ([]model.ResumeRef, error) {
	return listResumeRefs(ctx, r.db, model.ResumeOwnerApplication,
		`SELECT id, resume_url FROM job_applications WHERE resume_url IS NOT NULL ORDER BY created_at`)
}

func (r *jobApplicationRepo) UpdateResumeURL(ctx context.Context, id, url string) error {
	return updateResumeURL(ctx, r.db, `UPDATE job_applications SET resume_url = $2 WHERE id = $1`, id, url)
}
