package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
)

// EnquiryRepository — интерфейс доступа к таблице enquiries.
type EnquiryRepository interface {
	// Create сохраняет заявку; ID и CreatedAt назначает PostgreSQL.
	Create(ctx context.Context, e *model.Enquiry) error
	// GetByID возвращает заявку по UUID.
	GetByID(ctx context.Context, id string) (*model.Enquiry, error)
	// List возвращает заявки по фильтру, новые первыми.
	List(ctx context.Context, filter model.EnquiryFilter) ([]*model.Enquiry, error)
	// Delete удаляет заявку.
	Delete(ctx context.Context, id string) error
	// Count возвращает общее количество заявок.
	Count(ctx context.Context) (int64, error)
	// ListResumeRefs возвращает заявки с непустой ссылкой на резюме.
	ListResumeRefs(ctx context.Context) ([]model.ResumeRef, error)
	// UpdateResumeURL заменяет ссылку на резюме.
	UpdateResumeURL(ctx context.Context, id, url string) error
}

// enquiryRepo — реализация EnquiryRepository.
type enquiryRepo struct {
	db DBTX
}

// NewEnquiryRepository создаёт репозиторий заявок.
func NewEnquiryRepository(db DBTX) EnquiryRepository {
	return &enquiryRepo{db: db}
}

const enquiryColumns = `id, name, email, phone, service_type, message, language, resume_url, created_at`

// scanEnquiry читает строку в порядке enquiryColumns.
func scanEnquiry(row pgx.Row) (*model.Enquiry, error) {
	e := &model.Enquiry{}
	err := row.Scan(
		&e.ID, &e.Name, &e.Email, &e.Phone, &e.ServiceType,
		&e.Message, &e.Language, &e.ResumeURL, &e.CreatedAt,
	)
	return e, err
}

func (r *enquiryRepo) Create(ctx context.Context, e *model.Enquiry) error {
	query := `
		INSERT INTO enquiries (name, email, phone, service_type, message, language, resume_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		e.Name, e.Email, e.Phone, e.ServiceType, e.Message, e.Language, e.ResumeURL,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания заявки: %w", err)
	}
	return nil
}

func (r *enquiryRepo) GetByID(ctx context.Context, id string) (*model.Enquiry, error) {
	query := `SELECT ` + enquiryColumns + ` FROM enquiries WHERE id = $1`

	e, err := scanEnquiry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения заявки: %w", err)
	}
	return e, nil
}

func (r *enquiryRepo) List(ctx context.Context, filter model.EnquiryFilter) ([]*model.Enquiry, error) {
	// Динамическое построение WHERE
	var conditions []string
	var args []any
	argNum := 1

	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%[1]d OR email ILIKE $%[1]d OR phone ILIKE $%[1]d OR message ILIKE $%[1]d OR service_type ILIKE $%[1]d)",
			argNum))
		args = append(args, likePattern(q))
		argNum++
	}
	if filter.ServiceType != "" {
		conditions = append(conditions, fmt.Sprintf("service_type = $%d", argNum))
		args = append(args, filter.ServiceType)
		argNum++
	}
	if filter.Since != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argNum))
		args = append(args, *filter.Since)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM enquiries
		%s
		ORDER BY created_at DESC`, enquiryColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	result := make([]*model.Enquiry, 0)
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *enquiryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM enquiries WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка удаления заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *enquiryRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM enquiries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта заявок: %w", err)
	}
	return n, nil
}

func (r *enquiryRepo) ListResumeRefs(ctx context.Context) ([]model.ResumeRef, error) {
	return listResumeRefs(ctx, r.db, model.ResumeOwnerEnquiry,
		`SELECT id, resume_url FROM enquiries WHERE resume_url IS NOT NULL ORDER BY created_at`)
}

func (r *enquiryRepo) UpdateResumeURL(ctx context.Context, id, url string) error {
	return updateResumeURL(ctx, r.db, `UPDATE enquiries SET resume_url = $2 WHERE id = $1`, id, url)
}

// listResumeRefs выполняет запрос (id, resume_url) и собирает ссылки указанного типа.
func listResumeRefs(ctx context.Context, db DBTX, ownerType, query string) ([]model.ResumeRef, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ссылок на резюме (%s): %w", ownerType, err)
	}
	defer rows.Close()

	var refs []model.ResumeRef
	for rows.Next() {
		ref := model.ResumeRef{Type: ownerType}
		if err := rows.Scan(&ref.ID, &ref.URL); err != nil {
			return nil, fmt.Errorf("ошибка сканирования ссылки на резюме: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// updateResumeURL обновляет одну ссылку; отсутствие записи — ErrNotFound.
func updateResumeURL(ctx context.Context, db DBTX, query, id, url string) error {
	tag, err := db.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("ошибка обновления ссылки на резюме: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
