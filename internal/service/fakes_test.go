// fakes_test.go — in-memory реализации репозиториев и хранилища для unit-тестов.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
	"github.com/bigkaa/corpsite/site-api/internal/objectstore"
	"github.com/bigkaa/corpsite/site-api/internal/repository"
)

// testLogger — логгер, отбрасывающий вывод.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Заявки ---

type fakeEnquiryRepo struct {
	mu        sync.Mutex
	items     []*model.Enquiry
	createErr error
	listErr   error
	updateErr error
	lastList  model.EnquiryFilter
	seq       int
}

func (f *fakeEnquiryRepo) Create(_ context.Context, e *model.Enquiry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	e.ID = fmt.Sprintf("enq-%d", f.seq)
	e.CreatedAt = time.Now()
	f.items = append(f.items, e)
	return nil
}

func (f *fakeEnquiryRepo) GetByID(_ context.Context, id string) (*model.Enquiry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.items {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeEnquiryRepo) List(_ context.Context, filter model.EnquiryFilter) ([]*model.Enquiry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*model.Enquiry(nil), f.items...), nil
}

func (f *fakeEnquiryRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.items {
		if e.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeEnquiryRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return 0, f.listErr
	}
	return int64(len(f.items)), nil
}

func (f *fakeEnquiryRepo) ListResumeRefs(_ context.Context) ([]model.ResumeRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var refs []model.ResumeRef
	for _, e := range f.items {
		if e.ResumeURL != nil {
			refs = append(refs, model.ResumeRef{Type: model.ResumeOwnerEnquiry, ID: e.ID, URL: *e.ResumeURL})
		}
	}
	return refs, nil
}

func (f *fakeEnquiryRepo) UpdateResumeURL(_ context.Context, id, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, e := range f.items {
		if e.ID == id {
			e.ResumeURL = &url
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- Отклики ---

type fakeApplicationRepo struct {
	mu        sync.Mutex
	items     []*model.JobApplication
	jobs      map[string]bool
	createErr error
	listErr   error
	seq       int
}

func (f *fakeApplicationRepo) Create(_ context.Context, a *model.JobApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.jobs != nil && !f.jobs[a.JobID] {
		return fmt.Errorf("%w: вакансия %s", repository.ErrReferenceNotFound, a.JobID)
	}
	f.seq++
	a.ID = fmt.Sprintf("app-%d", f.seq)
	a.CreatedAt = time.Now()
	f.items = append(f.items, a)
	return nil
}

func (f *fakeApplicationRepo) GetByID(_ context.Context, id string) (*model.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeApplicationRepo) List(_ context.Context) ([]*model.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*model.JobApplication(nil), f.items...), nil
}

func (f *fakeApplicationRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.items {
		if a.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeApplicationRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return 0, f.listErr
	}
	return int64(len(f.items)), nil
}

func (f *fakeApplicationRepo) ListResumeRefs(_ context.Context) ([]model.ResumeRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	refs := make([]model.ResumeRef, 0, len(f.items))
	for _, a := range f.items {
		refs = append(refs, model.ResumeRef{Type: model.ResumeOwnerApplication, ID: a.ID, URL: a.ResumeURL})
	}
	return refs, nil
}

func (f *fakeApplicationRepo) UpdateResumeURL(_ context.Context, id, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		if a.ID == id {
			a.ResumeURL = url
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- Вакансии ---

type fakeJobRepo struct {
	mu        sync.Mutex
	items     []*model.Job
	listCalls int
	getCalls  int
	err       error
	seq       int
}

func (f *fakeJobRepo) Create(_ context.Context, job *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.seq++
	job.ID = fmt.Sprintf("job-%d", f.seq)
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	f.items = append([]*model.Job{job}, f.items...)
	return nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	for _, j := range f.items {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeJobRepo) List(_ context.Context, activeOnly bool) ([]*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	result := make([]*model.Job, 0, len(f.items))
	for _, j := range f.items {
		if !activeOnly || j.IsActive {
			result = append(result, j)
		}
	}
	return result, nil
}

func (f *fakeJobRepo) Update(_ context.Context, id string, patch model.JobPatch) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, j := range f.items {
		if j.ID != id {
			continue
		}
		if patch.Title != nil {
			j.Title = *patch.Title
		}
		if patch.IsActive != nil {
			j.IsActive = *patch.IsActive
		}
		if patch.Requirements != nil {
			j.Requirements = *patch.Requirements
		}
		j.UpdatedAt = time.Now()
		return j, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeJobRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, j := range f.items {
		if j.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeJobRepo) Count(_ context.Context) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, 0, f.err
	}
	var active int64
	for _, j := range f.items {
		if j.IsActive {
			active++
		}
	}
	return int64(len(f.items)), active, nil
}

// --- Хранилище резюме ---

type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	types      map[string]string
	bucketOK   bool
	bucketErr  error
	public     bool
	policyErr  error
	putErr     error
	existsErr  error
	existsKeys map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:  map[string][]byte{},
		types:    map[string]string{},
		bucketOK: true,
	}
}

func (f *fakeStore) BucketExists(context.Context) (bool, error) {
	return f.bucketOK, f.bucketErr
}

func (f *fakeStore) IsPublic(context.Context) (bool, error) {
	return f.public, f.policyErr
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.existsKeys[key] {
		return true, nil
	}
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (*objectstore.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, objectstore.ErrObjectNotFound
	}
	return &objectstore.Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		Size:        int64(len(data)),
		ContentType: f.types[key],
	}, nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://cdn.example.com/resumes/" + key
}

// onlyKey возвращает единственный загруженный ключ.
func (f *fakeStore) onlyKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.objects {
		return k
	}
	return ""
}

// --- Подписанные ссылки ---

type fakeSigner struct {
	err     error
	lastTTL time.Duration
}

func (f *fakeSigner) Sign(key string, ttl time.Duration) (string, error) {
	f.lastTTL = ttl
	if f.err != nil {
		return "", f.err
	}
	return "https://site.example.com/api/resumes/" + key + "?token=signed", nil
}

func (f *fakeSigner) Verify(key, token string) error {
	if token != "signed" {
		return objectstore.ErrInvalidLinkToken
	}
	return nil
}

// --- HEAD prober ---

type fakeProber struct {
	mu     sync.Mutex
	status map[string]int
	errs   map[string]error
	calls  []string
}

func (f *fakeProber) Head(_ context.Context, url string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return 0, err
	}
	if st, ok := f.status[url]; ok {
		return st, nil
	}
	return 404, nil
}

// errDB — ошибка БД для тестов.
var errDB = errors.New("connection refused")

func ptr[T any](v T) *T { return &v }

func containsString(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
