package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
)

// JobRepository — интерфейс CRUD для таблицы jobs.
type JobRepository interface {
	// Create создаёт вакансию.
	Create(ctx context.Context, job *model.Job) error
	// GetByID возвращает вакансию по UUID.
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// List возвращает вакансии, новые первыми. activeOnly — только опубликованные.
	List(ctx context.Context, activeOnly bool) ([]*model.Job, error)
	// Update применяет частичное обновление и возвращает вакансию.
	Update(ctx context.Context, id string, patch model.JobPatch) (*model.Job, error)
	// Delete удаляет вакансию вместе с откликами (ON DELETE CASCADE).
	Delete(ctx context.Context, id string) error
	// Count возвращает общее количество вакансий и количество активных.
	Count(ctx context.Context) (total, active int64, err error)
}

// jobRepo — реализация JobRepository.
type jobRepo struct {
	db DBTX
}

// NewJobRepository создаёт репозиторий вакансий.
func NewJobRepository(db DBTX) JobRepository {
	return &jobRepo{db: db}
}

const jobColumns = `id, title, department, location, experience, description,
	requirements, is_active, created_at, updated_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	j := &model.Job{}
	err := row.Scan(
		&j.ID, &j.Title, &j.Department, &j.Location, &j.Experience, &j.Description,
		&j.Requirements, &j.IsActive, &j.CreatedAt, &j.UpdatedAt,
	)
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	return j, err
}

func (r *jobRepo) Create(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (title, department, location, experience, description, requirements, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	reqs := job.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	err := r.db.QueryRow(ctx, query,
		job.Title, job.Department, job.Location, job.Experience, job.Description, reqs, job.IsActive,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания вакансии: %w", err)
	}
	job.Requirements = reqs
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения вакансии: %w", err)
	}
	return j, nil
}

func (r *jobRepo) List(ctx context.Context, activeOnly bool) ([]*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка вакансий: %w", err)
	}
	defer rows.Close()

	result := make([]*model.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования вакансии: %w", err)
		}
		result = append(result, j)
	}
	return result, rows.Err()
}

func (r *jobRepo) Update(ctx context.Context, id string, patch model.JobPatch) (*model.Job, error) {
	// Динамическое построение SET
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Department != nil {
		add("department", *patch.Department)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Experience != nil {
		add("experience", *patch.Experience)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Requirements != nil {
		add("requirements", *patch.Requirements)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}

	query := fmt.Sprintf(`
		UPDATE jobs SET %s
		WHERE id = $1
		RETURNING %s`, strings.Join(sets, ", "), jobColumns)

	j, err := scanJob(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления вакансии: %w", err)
	}
	return j, nil
}

func (r *jobRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка удаления вакансии: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *jobRepo) Count(ctx context.Context) (total, active int64, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM jobs`,
	).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчёта вакансий: %w", err)
	}
	return total, active, nil
}
