// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrFileMissing — файл резюме не передан.
	ErrFileMissing = errors.New("файл не передан")
	// ErrFileTooLarge — файл резюме больше допустимого размера.
	ErrFileTooLarge = errors.New("файл слишком большой")
	// ErrUnsupportedFileType — MIME-тип не PDF и не DOC/DOCX.
	ErrUnsupportedFileType = errors.New("неподдерживаемый тип файла")
	// ErrStorageUnavailable — bucket резюме отсутствует или хранилище недоступно.
	ErrStorageUnavailable = errors.New("хранилище резюме недоступно")
	// ErrPersistence — ошибка чтения или записи в PostgreSQL.
	ErrPersistence = errors.New("ошибка хранилища данных")
	// ErrInvalidResumeURL — URL не относится к bucket резюме.
	ErrInvalidResumeURL = errors.New("некорректный URL резюме")
)

// PersistenceError — ошибка операции с базой данных.
// Сообщение PostgreSQL передаётся клиенту как есть.
type PersistenceError struct {
	// Fallback — сообщение для клиента, если у ошибки нет сообщения PostgreSQL
	Fallback string
	Err      error
}

func (e *PersistenceError) Error() string {
	return e.Fallback + ": " + e.Err.Error()
}

// Unwrap позволяет проверять и ErrPersistence, и исходную ошибку.
func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// Message возвращает сообщение для тела ответа.
func (e *PersistenceError) Message() string {
	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) && pgErr.Message != "" {
		return pgErr.Message
	}
	return e.Fallback
}

// persistenceError оборачивает ошибку репозитория.
func persistenceError(fallback string, err error) error {
	return &PersistenceError{Fallback: fallback, Err: err}
}

// StorageError — ошибка хранилища резюме с сообщением для оператора.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStorageUnavailable}
	}
	return []error{ErrStorageUnavailable, e.Err}
}
