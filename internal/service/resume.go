// resume.go — загрузка резюме в bucket и выдача по подписанной ссылке.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
	"github.com/bigkaa/corpsite/site-api/internal/objectstore"
)

// ResumeStore — операции bucket резюме, нужные сервису.
type ResumeStore interface {
	BucketExists(ctx context.Context) (bool, error)
	IsPublic(ctx context.Context) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*objectstore.Object, error)
	PublicURL(key string) string
}

// ResumeLinkSigner — выпуск и проверка подписанных ссылок.
type ResumeLinkSigner interface {
	Sign(key string, ttl time.Duration) (string, error)
	Verify(key, token string) error
}

// UploadResult — результат загрузки резюме.
type UploadResult struct {
	// URL — публичная или подписанная ссылка на файл
	URL string
	// Path — ключ объекта в bucket
	Path string
}

// ResumeService — сервис загрузки резюме.
type ResumeService struct {
	store     ResumeStore
	signer    ResumeLinkSigner
	maxBytes  int64
	signedTTL time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewResumeService создаёт сервис загрузки резюме.
func NewResumeService(
	store ResumeStore,
	signer ResumeLinkSigner,
	maxBytes int64,
	signedTTL time.Duration,
	logger *slog.Logger,
) *ResumeService {
	return &ResumeService{
		store:     store,
		signer:    signer,
		maxBytes:  maxBytes,
		signedTTL: signedTTL,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "resume_service")),
	}
}

// MaxBytes возвращает максимальный размер файла резюме.
func (s *ResumeService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload проверяет файл, загружает его в корень bucket и возвращает ссылку.
// Для приватного bucket выдаётся подписанная ссылка; при ошибке подписи —
// публичная.
func (s *ResumeService) Upload(ctx context.Context, file model.ResumeFile) (*UploadResult, error) {
	if file.Content == nil {
		resumeUploadsTotal.WithLabelValues(resultRejected).Inc()
		return nil, ErrFileMissing
	}
	if file.Size > s.maxBytes {
		resumeUploadsTotal.WithLabelValues(resultRejected).Inc()
		return nil, ErrFileTooLarge
	}
	contentType := strings.ToLower(file.ContentType)
	if !strings.Contains(contentType, "pdf") && !strings.Contains(contentType, "doc") {
		resumeUploadsTotal.WithLabelValues(resultRejected).Inc()
		return nil, ErrUnsupportedFileType
	}

	exists, err := s.store.BucketExists(ctx)
	if err != nil {
		resumeUploadsTotal.WithLabelValues(resultFailed).Inc()
		s.logger.Error("Ошибка получения списка bucket", slog.String("error", err.Error()))
		return nil, &StorageError{
			Message: "Failed to access storage. Please ensure the resumes bucket exists.",
			Err:     err,
		}
	}
	if !exists {
		resumeUploadsTotal.WithLabelValues(resultFailed).Inc()
		s.logger.Error("Bucket резюме не найден")
		return nil, &StorageError{Message: "Resumes bucket not found. Please create it in the storage settings."}
	}

	key := s.objectKey(file)

	taken, err := s.store.Exists(ctx, key)
	if err != nil {
		resumeUploadsTotal.WithLabelValues(resultFailed).Inc()
		return nil, &StorageError{Message: "Failed to upload file", Err: err}
	}
	if taken {
		resumeUploadsTotal.WithLabelValues(resultFailed).Inc()
		return nil, &StorageError{Message: "The resource already exists"}
	}

	if err := s.store.Put(ctx, key, file.Content, file.Size, file.ContentType); err != nil {
		resumeUploadsTotal.WithLabelValues(resultFailed).Inc()
		s.logger.Error("Ошибка загрузки резюме",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, &StorageError{Message: "Failed to upload file", Err: err}
	}

	resumeURL := s.store.PublicURL(key)
	public, err := s.store.IsPublic(ctx)
	if err != nil {
		s.logger.Warn("Не удалось прочитать политику bucket, выдаётся подписанная ссылка",
			slog.String("error", err.Error()),
		)
	}
	if !public {
		signed, signErr := s.signer.Sign(key, s.signedTTL)
		if signErr != nil {
			s.logger.Warn("Ошибка подписи ссылки, используется публичный URL",
				slog.String("key", key),
				slog.String("error", signErr.Error()),
			)
		} else {
			resumeURL = signed
		}
	}

	resumeUploadsTotal.WithLabelValues(resultAccepted).Inc()
	s.logger.Info("Резюме загружено",
		slog.String("key", key),
		slog.Int64("size", file.Size),
		slog.Bool("public", public),
	)
	return &UploadResult{URL: resumeURL, Path: key}, nil
}

// Open проверяет токен ссылки и открывает объект на чтение.
// Ошибки: objectstore.ErrInvalidLinkToken, ErrNotFound.
func (s *ResumeService) Open(ctx context.Context, key, token string) (*objectstore.Object, error) {
	if err := s.signer.Verify(key, token); err != nil {
		return nil, err
	}
	obj, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, &StorageError{Message: "Failed to read file", Err: err}
	}
	return obj, nil
}

// objectKey формирует ключ <unix-millis>-<shortuuid>.<ext> в корне bucket.
func (s *ResumeService) objectKey(file model.ResumeFile) string {
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + shortuuid.New() + "." + fileExtension(file)
}

// fileExtension берёт расширение из имени файла; без расширения —
// выводит его из MIME-типа.
func fileExtension(file model.ResumeFile) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if ext != "" && isAlnum(ext) {
		return ext
	}
	ct := strings.ToLower(file.ContentType)
	switch {
	case strings.Contains(ct, "pdf"):
		return "pdf"
	case strings.Contains(ct, "openxmlformats"):
		return "docx"
	default:
		return "doc"
	}
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
