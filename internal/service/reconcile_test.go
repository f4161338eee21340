package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
)

const legacyBase = "https://proj.supabase.co/storage/v1/object/public/resumes"

func newTestReconciler(enq *fakeEnquiryRepo, apps *fakeApplicationRepo, prober Prober) *ResumeReconciler {
	store := newFakeStore()
	return NewResumeReconciler(enq, apps, prober, "resumes",
		"https://cdn.example.com/resumes", store.PublicURL, testLogger())
}

// TestReconcile_FixesMovedFiles проверяет исправление ссылок на найденный вариант.
func TestReconcile_FixesMovedFiles(t *testing.T) {
	enq := &fakeEnquiryRepo{items: []*model.Enquiry{
		{ID: "e1", ResumeURL: ptr(legacyBase + "/resumes/cv.pdf")},
		{ID: "e2", ResumeURL: ptr(legacyBase + "/ok.pdf")},
		{ID: "e3", ResumeURL: ptr("https://other.example.org/files/cv.pdf")},
		{ID: "e4", ResumeURL: ptr(legacyBase + "/notes.txt")},
	}}
	apps := &fakeApplicationRepo{items: []*model.JobApplication{
		{ID: "a1", ResumeURL: "https://cdn.example.com/resumes/Old.DOCX"},
	}}
	prober := &fakeProber{
		status: map[string]int{
			legacyBase + "/cv.pdf":                             200,
			legacyBase + "/ok.pdf":                             200,
			"https://cdn.example.com/resumes/resumes/Old.DOCX": 200,
		},
		errs: map[string]error{
			"https://cdn.example.com/resumes/Old.DOCX": errors.New("connection reset"),
		},
	}

	svc := newTestReconciler(enq, apps, prober)
	summary, err := svc.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if summary.Fixes != 2 || len(summary.Details) != 2 {
		t.Fatalf("fixes = %d, details = %d, ожидается 2", summary.Fixes, len(summary.Details))
	}

	want := []model.ResumeFix{
		{Type: "enquiry", ID: "e1", Old: legacyBase + "/resumes/cv.pdf", New: legacyBase + "/cv.pdf"},
		{Type: "application", ID: "a1", Old: "https://cdn.example.com/resumes/Old.DOCX", New: "https://cdn.example.com/resumes/resumes/Old.DOCX"},
	}
	for i, w := range want {
		if summary.Details[i] != w {
			t.Errorf("details[%d] = %+v, ожидается %+v", i, summary.Details[i], w)
		}
	}

	if got := *enq.items[0].ResumeURL; got != legacyBase+"/cv.pdf" {
		t.Errorf("ссылка e1 = %q, ожидается исправленная", got)
	}
	if got := apps.items[0].ResumeURL; got != "https://cdn.example.com/resumes/resumes/Old.DOCX" {
		t.Errorf("ссылка a1 = %q, ожидается исправленная", got)
	}

	for _, c := range prober.calls {
		if c == "https://other.example.org/files/cv.pdf" || c == legacyBase+"/notes.txt" {
			t.Errorf("ссылка вне bucket или без файла резюме не должна проверяться: %s", c)
		}
	}
}

// TestReconcile_NoCandidateAvailable проверяет, что недоступные варианты не меняют ссылку.
func TestReconcile_NoCandidateAvailable(t *testing.T) {
	enq := &fakeEnquiryRepo{items: []*model.Enquiry{
		{ID: "e1", ResumeURL: ptr(legacyBase + "/gone.pdf")},
	}}
	prober := &fakeProber{}

	summary, err := newTestReconciler(enq, &fakeApplicationRepo{}, prober).Reconcile(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Fixes != 0 {
		t.Errorf("fixes = %d, ожидается 0", summary.Fixes)
	}
	if len(prober.calls) != 2 {
		t.Errorf("проверено %d вариантов, ожидается 2", len(prober.calls))
	}
	if summary.Details == nil {
		t.Error("details не должен быть nil")
	}
}

// TestReconcile_UpdateFailureSkipped проверяет пропуск записи при ошибке обновления.
func TestReconcile_UpdateFailureSkipped(t *testing.T) {
	enq := &fakeEnquiryRepo{
		items:     []*model.Enquiry{{ID: "e1", ResumeURL: ptr(legacyBase + "/resumes/cv.pdf")}},
		updateErr: errDB,
	}
	apps := &fakeApplicationRepo{items: []*model.JobApplication{
		{ID: "a1", ResumeURL: legacyBase + "/resumes/other.pdf"},
	}}
	prober := &fakeProber{status: map[string]int{
		legacyBase + "/cv.pdf":    200,
		legacyBase + "/other.pdf": 204,
	}}

	summary, err := newTestReconciler(enq, apps, prober).Reconcile(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Fixes != 1 || summary.Details[0].ID != "a1" {
		t.Errorf("ожидается одно исправление a1, получено %+v", summary.Details)
	}
}

// TestReconcile_LoadFailure проверяет ошибку загрузки списков ссылок.
func TestReconcile_LoadFailure(t *testing.T) {
	svc := newTestReconciler(&fakeEnquiryRepo{}, &fakeApplicationRepo{listErr: errDB}, &fakeProber{})
	if _, err := svc.Reconcile(context.Background()); !errors.Is(err, ErrPersistence) {
		t.Errorf("ожидается ErrPersistence, получено %v", err)
	}
}

// TestVerify проверяет отчёт по вариантам пути.
func TestVerify(t *testing.T) {
	prober := &fakeProber{
		status: map[string]int{"https://cdn.example.com/resumes/cv.pdf": 200},
		errs:   map[string]error{"https://cdn.example.com/resumes/resumes/resumes/cv.pdf": errors.New("timeout")},
	}
	svc := newTestReconciler(&fakeEnquiryRepo{}, &fakeApplicationRepo{}, prober)

	res, err := svc.Verify(context.Background(), legacyBase+"/resumes/cv.pdf")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.OriginalPath != "resumes/cv.pdf" {
		t.Errorf("OriginalPath = %q", res.OriginalPath)
	}
	if len(res.Results) != 3 {
		t.Fatalf("results = %d, ожидается 3", len(res.Results))
	}

	want := []ProbeResult{
		{Path: "resumes/cv.pdf", URL: "https://cdn.example.com/resumes/resumes/cv.pdf", Exists: false, Status: 404},
		{Path: "resumes/resumes/cv.pdf", URL: "https://cdn.example.com/resumes/resumes/resumes/cv.pdf", Error: "timeout"},
		{Path: "cv.pdf", URL: "https://cdn.example.com/resumes/cv.pdf", Exists: true, Status: 200},
	}
	for i, w := range want {
		if res.Results[i] != w {
			t.Errorf("results[%d] = %+v, ожидается %+v", i, res.Results[i], w)
		}
	}
}

// TestVerify_ConfiguredPrefix проверяет ссылки текущего хранилища.
func TestVerify_ConfiguredPrefix(t *testing.T) {
	svc := newTestReconciler(&fakeEnquiryRepo{}, &fakeApplicationRepo{}, &fakeProber{})

	res, err := svc.Verify(context.Background(), "https://cdn.example.com/resumes/My%20CV.pdf")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Results[0].Path != "My CV.pdf" {
		t.Errorf("path = %q, ожидается декодированный ключ", res.Results[0].Path)
	}
}

// TestVerify_InvalidURL проверяет отказ для ссылок вне bucket.
func TestVerify_InvalidURL(t *testing.T) {
	svc := newTestReconciler(&fakeEnquiryRepo{}, &fakeApplicationRepo{}, &fakeProber{})
	for _, u := range []string{
		"https://example.com/file.pdf",
		"https://proj.supabase.co/storage/v1/object/public/avatars/a.png",
		"not a url",
	} {
		if _, err := svc.Verify(context.Background(), u); !errors.Is(err, ErrInvalidResumeURL) {
			t.Errorf("Verify(%q) = %v, ожидается ErrInvalidResumeURL", u, err)
		}
	}
}

// TestHTTPProber проверяет HEAD-запрос и статус ответа.
func TestHTTPProber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("метод = %s, ожидается HEAD", r.Method)
		}
		if r.URL.Path == "/cv.pdf" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPProber(2 * time.Second)
	if st, err := p.Head(context.Background(), srv.URL+"/cv.pdf"); err != nil || st != http.StatusOK {
		t.Errorf("Head(cv.pdf) = %d, %v", st, err)
	}
	if st, err := p.Head(context.Background(), srv.URL+"/missing.pdf"); err != nil || st != http.StatusNotFound {
		t.Errorf("Head(missing.pdf) = %d, %v", st, err)
	}
	if _, err := p.Head(context.Background(), "://bad"); err == nil {
		t.Error("ожидается ошибка для некорректного URL")
	}
}
