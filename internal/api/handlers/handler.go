// handler.go — основной обработчик API Site.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/bigkaa/corpsite/site-api/internal/api/errors"
	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
	"github.com/bigkaa/corpsite/site-api/internal/domain/validation"
	"github.com/bigkaa/corpsite/site-api/internal/objectstore"
	"github.com/bigkaa/corpsite/site-api/internal/service"
)

// maxJSONBody — максимальный размер JSON-тела запроса.
const maxJSONBody = 1 << 20

// IntakeService — приём публичных форм.
type IntakeService interface {
	SubmitEnquiry(ctx context.Context, raw map[string]any) (*model.Enquiry, error)
	SubmitJobApplication(ctx context.Context, raw map[string]any) (*model.JobApplication, error)
}

// ResumeService — загрузка и выдача резюме.
type ResumeService interface {
	Upload(ctx context.Context, file model.ResumeFile) (*service.UploadResult, error)
	Open(ctx context.Context, key, token string) (*objectstore.Object, error)
	MaxBytes() int64
}

// ResumeReconciler — исправление и проверка ссылок на резюме.
type ResumeReconciler interface {
	Reconcile(ctx context.Context) (*service.ReconcileSummary, error)
	Verify(ctx context.Context, url string) (*service.VerifyResult, error)
}

// JobService — вакансии.
type JobService interface {
	ListActive(ctx context.Context) ([]*model.Job, error)
	GetActive(ctx context.Context, id string) (*model.Job, error)
	ListAll(ctx context.Context) ([]*model.Job, error)
	Create(ctx context.Context, raw map[string]any) (*model.Job, error)
	Update(ctx context.Context, id string, raw map[string]any) (*model.Job, error)
	Delete(ctx context.Context, id string) error
}

// RecordService — заявки и отклики для админки.
type RecordService interface {
	ListEnquiries(ctx context.Context, q service.EnquiryQuery) ([]*model.Enquiry, error)
	DeleteEnquiry(ctx context.Context, id string) error
	ExportEnquiries(ctx context.Context, q service.EnquiryQuery, w io.Writer) (int, error)
	ExportFilename() string
	ListApplications(ctx context.Context) ([]*model.JobApplication, error)
	DeleteApplication(ctx context.Context, id string) error
}

// StatsService — сводная статистика.
type StatsService interface {
	Get(ctx context.Context) (*model.Stats, error)
}

// SessionManager — вход администратора и cookie сессии.
type SessionManager interface {
	Login(password string) (string, error)
	Authenticate(r *http.Request) error
	SetSessionCookie(w http.ResponseWriter, token string)
	ClearSessionCookie(w http.ResponseWriter)
}

// Services — зависимости APIHandler.
type Services struct {
	Intake     IntakeService
	Resumes    ResumeService
	Reconciler ResumeReconciler
	Jobs       JobService
	Records    RecordService
	Stats      StatsService
	Sessions   SessionManager
}

// APIHandler — основной обработчик API Site.
type APIHandler struct {
	health     *HealthHandler
	intake     IntakeService
	resumes    ResumeService
	reconciler ResumeReconciler
	jobs       JobService
	records    RecordService
	stats      StatsService
	sessions   SessionManager
	openapi    []byte
	logger     *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
// openapiJSON — OpenAPI контракт в JSON для /api/openapi.json.
func NewAPIHandler(health *HealthHandler, svc Services, openapiJSON []byte, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		health:     health,
		intake:     svc.Intake,
		resumes:    svc.Resumes,
		reconciler: svc.Reconciler,
		jobs:       svc.Jobs,
		records:    svc.Records,
		stats:      svc.Stats,
		sessions:   svc.Sessions,
		openapi:    openapiJSON,
		logger:     logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// GetOpenAPI — GET /api/openapi.json.
func (h *APIHandler) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapi)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// successResponse — {"success": true}.
type successResponse struct {
	Success bool `json:"success"`
}

// decodeObject читает JSON-объект тела запроса без приведения типов.
// Проверка типов полей — задача валидатора.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var raw map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&raw); err != nil {
		apierrors.ValidationError(w, "Invalid request data")
		return nil, false
	}
	if raw == nil {
		apierrors.ValidationError(w, "Invalid request data")
		return nil, false
	}
	return raw, true
}

// validID проверяет UUID из пути; некорректный идентификатор — 404.
func validID(w http.ResponseWriter, id, notFound string) bool {
	if _, err := uuid.Parse(id); err != nil {
		apierrors.NotFound(w, notFound)
		return false
	}
	return true
}

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ.
// notFound — сообщение для ErrNotFound, fallback — для прочих ошибок.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, notFound, fallback string) {
	var (
		verr *validation.Error
		perr *service.PersistenceError
		serr *service.StorageError
	)
	switch {
	case errors.As(err, &verr):
		apierrors.ValidationDetails(w, verr.Error(), verr.Fields)
	case errors.Is(err, service.ErrFileMissing):
		apierrors.ValidationError(w, "No file provided")
	case errors.Is(err, service.ErrFileTooLarge):
		apierrors.FileTooLarge(w, "File size must be less than 5MB")
	case errors.Is(err, service.ErrUnsupportedFileType):
		apierrors.UnsupportedFileType(w, "Please upload a PDF or DOC file")
	case errors.Is(err, service.ErrInvalidResumeURL):
		apierrors.ValidationError(w, "Invalid URL format")
	case errors.Is(err, objectstore.ErrInvalidLinkToken):
		apierrors.Forbidden(w, "Invalid or expired link")
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, notFound)
	case errors.As(err, &serr):
		h.logger.Error("Ошибка хранилища резюме", slog.String("error", err.Error()))
		apierrors.StorageUnavailable(w, serr.Message)
	case errors.As(err, &perr):
		h.logger.Error("Ошибка базы данных", slog.String("error", err.Error()))
		apierrors.PersistenceError(w, perr.Message())
	default:
		h.logger.Error("Внутренняя ошибка", slog.String("error", err.Error()))
		apierrors.InternalError(w, fallback)
	}
}
