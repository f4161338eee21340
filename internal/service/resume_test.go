package service

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
	"github.com/bigkaa/corpsite/site-api/internal/objectstore"
)

const testMaxBytes = 5 * 1024 * 1024

func newTestResumeService(store *fakeStore, signer *fakeSigner) *ResumeService {
	svc := NewResumeService(store, signer, testMaxBytes, 8760*time.Hour, testLogger())
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return svc
}

func pdfFile(size int64) model.ResumeFile {
	return model.ResumeFile{
		Content:     strings.NewReader(strings.Repeat("x", int(size))),
		Size:        size,
		ContentType: "application/pdf",
		Filename:    "My CV.PDF",
	}
}

// TestUpload_Validation проверяет отказ в загрузке до обращения к хранилищу.
func TestUpload_Validation(t *testing.T) {
	tests := []struct {
		name string
		file model.ResumeFile
		want error
	}{
		{name: "файл не передан", file: model.ResumeFile{}, want: ErrFileMissing},
		{name: "больше 5 МБ", file: model.ResumeFile{Content: strings.NewReader(""), Size: testMaxBytes + 1, ContentType: "application/pdf"}, want: ErrFileTooLarge},
		{name: "png", file: model.ResumeFile{Content: strings.NewReader("x"), Size: 1, ContentType: "image/png", Filename: "cv.png"}, want: ErrUnsupportedFileType},
		{name: "msword", file: model.ResumeFile{Content: strings.NewReader("x"), Size: 1, ContentType: "application/msword", Filename: "cv.doc"}, want: ErrUnsupportedFileType},
		{name: "пустой MIME-тип", file: model.ResumeFile{Content: strings.NewReader("x"), Size: 1, Filename: "cv.pdf"}, want: ErrUnsupportedFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := newTestResumeService(store, &fakeSigner{})
			_, err := svc.Upload(context.Background(), tt.file)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ошибка = %v, ожидается %v", err, tt.want)
			}
			if len(store.objects) != 0 {
				t.Error("отклонённый файл не должен загружаться")
			}
		})
	}
}

// TestUpload_ExactLimitAccepted проверяет, что файл ровно 5 МБ принимается.
func TestUpload_ExactLimitAccepted(t *testing.T) {
	store := newFakeStore()
	store.public = true
	svc := newTestResumeService(store, &fakeSigner{})

	if _, err := svc.Upload(context.Background(), pdfFile(testMaxBytes)); err != nil {
		t.Fatalf("файл ровно 5 МБ должен приниматься: %v", err)
	}
}

// TestUpload_AcceptedTypes проверяет MIME-типы PDF и DOCX.
func TestUpload_AcceptedTypes(t *testing.T) {
	types := []string{
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	for _, ct := range types {
		store := newFakeStore()
		store.public = true
		svc := newTestResumeService(store, &fakeSigner{})
		file := pdfFile(10)
		file.ContentType = ct

		if _, err := svc.Upload(context.Background(), file); err != nil {
			t.Errorf("%s: %v", ct, err)
		}
	}
}

// TestUpload_PublicBucket проверяет ключ в корне bucket и публичную ссылку.
func TestUpload_PublicBucket(t *testing.T) {
	store := newFakeStore()
	store.public = true
	svc := newTestResumeService(store, &fakeSigner{})

	res, err := svc.Upload(context.Background(), pdfFile(100))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	keyRe := regexp.MustCompile(`^1700000000123-[A-Za-z0-9]+\.pdf$`)
	if !keyRe.MatchString(res.Path) {
		t.Errorf("Path = %q, ожидается <millis>-<token>.pdf", res.Path)
	}
	if strings.Contains(res.Path, "/") {
		t.Errorf("Path = %q, ожидается корень bucket", res.Path)
	}
	if res.URL != store.PublicURL(res.Path) {
		t.Errorf("URL = %q, ожидается публичная ссылка", res.URL)
	}
	if store.types[res.Path] != "application/pdf" {
		t.Errorf("ContentType = %q", store.types[res.Path])
	}
	if len(store.objects[res.Path]) != 100 {
		t.Errorf("загружено %d байт, ожидается 100", len(store.objects[res.Path]))
	}
}

// TestUpload_PrivateBucketSigned проверяет подписанную ссылку на год для приватного bucket.
func TestUpload_PrivateBucketSigned(t *testing.T) {
	store := newFakeStore()
	signer := &fakeSigner{}
	svc := newTestResumeService(store, signer)

	res, err := svc.Upload(context.Background(), pdfFile(10))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.Contains(res.URL, "token=signed") {
		t.Errorf("URL = %q, ожидается подписанная ссылка", res.URL)
	}
	if signer.lastTTL != 8760*time.Hour {
		t.Errorf("TTL = %v, ожидается 8760h", signer.lastTTL)
	}
}

// TestUpload_SignFailureFallsBack проверяет откат к публичной ссылке при ошибке подписи.
func TestUpload_SignFailureFallsBack(t *testing.T) {
	store := newFakeStore()
	svc := newTestResumeService(store, &fakeSigner{err: errors.New("нет секрета")})

	res, err := svc.Upload(context.Background(), pdfFile(10))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.URL != store.PublicURL(res.Path) {
		t.Errorf("URL = %q, ожидается публичная ссылка", res.URL)
	}
}

// TestUpload_StorageErrors проверяет ошибки хранилища.
func TestUpload_StorageErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *fakeStore)
		message string
	}{
		{
			name:    "bucket отсутствует",
			setup:   func(s *fakeStore) { s.bucketOK = false },
			message: "Resumes bucket not found. Please create it in the storage settings.",
		},
		{
			name:    "ошибка списка bucket",
			setup:   func(s *fakeStore) { s.bucketErr = errors.New("dial tcp: refused") },
			message: "Failed to access storage. Please ensure the resumes bucket exists.",
		},
		{
			name:    "ошибка загрузки",
			setup:   func(s *fakeStore) { s.putErr = errors.New("timeout") },
			message: "Failed to upload file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			tt.setup(store)
			svc := newTestResumeService(store, &fakeSigner{})

			_, err := svc.Upload(context.Background(), pdfFile(10))
			if !errors.Is(err, ErrStorageUnavailable) {
				t.Fatalf("ожидается ErrStorageUnavailable, получено %v", err)
			}
			var serr *StorageError
			if !errors.As(err, &serr) || serr.Message != tt.message {
				t.Errorf("сообщение = %v, ожидается %q", err, tt.message)
			}
		})
	}
}

// TestUpload_ExistingKeyRejected проверяет отказ при занятом ключе.
func TestUpload_ExistingKeyRejected(t *testing.T) {
	store := newFakeStore()
	svc := newTestResumeService(store, &fakeSigner{})
	svc.store = &takenStore{fakeStore: store}

	_, err := svc.Upload(context.Background(), pdfFile(10))
	var serr *StorageError
	if !errors.As(err, &serr) || serr.Message != "The resource already exists" {
		t.Fatalf("ожидается ошибка занятого ключа, получено %v", err)
	}
	if len(store.objects) != 0 {
		t.Error("объект не должен загружаться поверх существующего")
	}
}

// takenStore — хранилище, в котором любой ключ уже занят.
type takenStore struct {
	*fakeStore
}

func (s *takenStore) Exists(context.Context, string) (bool, error) {
	return true, nil
}

// TestFileExtension проверяет выбор расширения ключа.
func TestFileExtension(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		expected    string
	}{
		{"cv.pdf", "application/pdf", "pdf"},
		{"CV.DOCX", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "docx"},
		{"resume", "application/pdf", "pdf"},
		{"resume", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "docx"},
		{"resume", "application/vnd.ms-word.document.macroenabled.12", "doc"},
		{"bad.p d f", "application/pdf", "pdf"},
	}
	for _, tt := range tests {
		got := fileExtension(model.ResumeFile{Filename: tt.filename, ContentType: tt.contentType})
		if got != tt.expected {
			t.Errorf("fileExtension(%q, %q) = %q, ожидается %q", tt.filename, tt.contentType, got, tt.expected)
		}
	}
}

// TestOpen проверяет выдачу резюме по подписанной ссылке.
func TestOpen(t *testing.T) {
	store := newFakeStore()
	store.objects["cv.pdf"] = []byte("%PDF")
	store.types["cv.pdf"] = "application/pdf"
	svc := newTestResumeService(store, &fakeSigner{})

	obj, err := svc.Open(context.Background(), "cv.pdf", "signed")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer obj.Body.Close()
	data, _ := io.ReadAll(obj.Body)
	if string(data) != "%PDF" {
		t.Errorf("содержимое = %q", data)
	}

	if _, err := svc.Open(context.Background(), "cv.pdf", "forged"); !errors.Is(err, objectstore.ErrInvalidLinkToken) {
		t.Errorf("неверный токен: %v, ожидается ErrInvalidLinkToken", err)
	}
	if _, err := svc.Open(context.Background(), "missing.pdf", "signed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("отсутствующий объект: %v, ожидается ErrNotFound", err)
	}
}
