package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/corpsite/site-api/internal/auth"
	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
	"github.com/bigkaa/corpsite/site-api/internal/objectstore"
	"github.com/bigkaa/corpsite/site-api/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// stubIntake — mock IntakeService.
type stubIntake struct {
	lastRaw map[string]any
	err     error
}

func (s *stubIntake) SubmitEnquiry(_ context.Context, raw map[string]any) (*model.Enquiry, error) {
	s.lastRaw = raw
	if s.err != nil {
		return nil, s.err
	}
	name, _ := raw["name"].(string)
	language, _ := raw["language"].(string)
	return &model.Enquiry{ID: "e-1", Name: name, Language: language}, nil
}

func (s *stubIntake) SubmitJobApplication(_ context.Context, raw map[string]any) (*model.JobApplication, error) {
	s.lastRaw = raw
	if s.err != nil {
		return nil, s.err
	}
	return &model.JobApplication{ID: "a-1", JobID: "j-1", ResumeURL: "https://cdn.example.com/r.pdf"}, nil
}

// stubResumes — mock ResumeService.
type stubResumes struct {
	uploaded *model.ResumeFile
	body     string
	err      error
}

func (s *stubResumes) Upload(_ context.Context, file model.ResumeFile) (*service.UploadResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	data, _ := io.ReadAll(file.Content)
	s.body = string(data)
	s.uploaded = &file
	return &service.UploadResult{URL: "https://cdn.example.com/resumes/k.pdf", Path: "k.pdf"}, nil
}

func (s *stubResumes) Open(_ context.Context, key, token string) (*objectstore.Object, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != "signed" {
		return nil, objectstore.ErrInvalidLinkToken
	}
	return &objectstore.Object{
		Body:        io.NopCloser(strings.NewReader("%PDF " + key)),
		Size:        int64(len("%PDF " + key)),
		ContentType: "application/pdf",
	}, nil
}

func (s *stubResumes) MaxBytes() int64 { return 5 << 20 }

// stubReconciler — mock ResumeReconciler.
type stubReconciler struct {
	summary *service.ReconcileSummary
	err     error
}

func (s *stubReconciler) Reconcile(context.Context) (*service.ReconcileSummary, error) {
	return s.summary, s.err
}

func (s *stubReconciler) Verify(_ context.Context, url string) (*service.VerifyResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.VerifyResult{OriginalURL: url, OriginalPath: "k.pdf", Results: []service.ProbeResult{}}, nil
}

// stubJobs — mock JobService.
type stubJobs struct {
	jobs    map[string]*model.Job
	deleted []string
	err     error
}

func (s *stubJobs) ListActive(context.Context) ([]*model.Job, error) {
	var out []*model.Job
	for _, j := range s.jobs {
		if j.IsActive {
			out = append(out, j)
		}
	}
	return out, s.err
}

func (s *stubJobs) GetActive(_ context.Context, id string) (*model.Job, error) {
	j, ok := s.jobs[id]
	if !ok || !j.IsActive {
		return nil, service.ErrNotFound
	}
	return j, nil
}

func (s *stubJobs) ListAll(context.Context) ([]*model.Job, error) {
	out := make([]*model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out, s.err
}

func (s *stubJobs) Create(_ context.Context, raw map[string]any) (*model.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	title, _ := raw["title"].(string)
	return &model.Job{ID: "new", Title: title}, nil
}

func (s *stubJobs) Update(_ context.Context, id string, raw map[string]any) (*model.Job, error) {
	j, ok := s.jobs[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	if v, ok := raw["is_active"].(bool); ok {
		j.IsActive = v
	}
	return j, nil
}

func (s *stubJobs) Delete(_ context.Context, id string) error {
	if _, ok := s.jobs[id]; !ok {
		return service.ErrNotFound
	}
	s.deleted = append(s.deleted, id)
	return nil
}

// stubRecords — mock RecordService.
type stubRecords struct {
	lastQuery service.EnquiryQuery
	err       error
}

func (s *stubRecords) ListEnquiries(_ context.Context, q service.EnquiryQuery) ([]*model.Enquiry, error) {
	s.lastQuery = q
	return []*model.Enquiry{{ID: "e-1", Name: "Asha"}}, s.err
}

func (s *stubRecords) DeleteEnquiry(context.Context, string) error { return s.err }

func (s *stubRecords) ExportEnquiries(_ context.Context, q service.EnquiryQuery, w io.Writer) (int, error) {
	s.lastQuery = q
	if s.err != nil {
		return 0, s.err
	}
	_, _ = io.WriteString(w, "Date,Name,Email,Phone,Service Type,Language,Message\n")
	return 0, nil
}

func (s *stubRecords) ExportFilename() string { return "enquiries-2026-10-15.csv" }

func (s *stubRecords) ListApplications(context.Context) ([]*model.JobApplication, error) {
	return []*model.JobApplication{{ID: "a-1", JobID: "j-1", JobTitle: "Engineer", JobDepartment: "Solar"}}, s.err
}

func (s *stubRecords) DeleteApplication(context.Context, string) error { return s.err }

// stubStats — mock StatsService.
type stubStats struct{}

func (stubStats) Get(context.Context) (*model.Stats, error) {
	return &model.Stats{TotalJobs: 3, ActiveJobs: 2, TotalApplications: 5, TotalEnquiries: 7}, nil
}

// testRouter собирает маршруты обработчика так же, как сервер, без middleware.
func testRouter(h *APIHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/enquiry", h.PostEnquiry)
	r.Post("/api/job-application", h.PostJobApplication)
	r.Post("/api/upload-resume", h.UploadResume)
	r.Get("/api/resumes/{key}", h.GetResume)
	r.Post("/api/verify-resume-url", h.VerifyResumeURL)
	r.Get("/api/jobs", h.ListJobs)
	r.Get("/api/jobs/{id}", h.GetJob)
	r.Post("/api/admin/login", h.AdminLogin)
	r.Post("/api/admin/logout", h.AdminLogout)
	r.Get("/api/admin/check", h.AdminCheck)
	r.Get("/api/admin/jobs", h.AdminListJobs)
	r.Post("/api/admin/jobs", h.AdminCreateJob)
	r.Put("/api/admin/jobs/{id}", h.AdminUpdateJob)
	r.Delete("/api/admin/jobs/{id}", h.AdminDeleteJob)
	r.Get("/api/admin/applications", h.AdminListApplications)
	r.Delete("/api/admin/applications/{id}", h.AdminDeleteApplication)
	r.Get("/api/admin/enquiries", h.AdminListEnquiries)
	r.Get("/api/admin/enquiries/export", h.AdminExportEnquiries)
	r.Delete("/api/admin/enquiries/{id}", h.AdminDeleteEnquiry)
	r.Get("/api/admin/stats", h.AdminStats)
	r.Post("/api/admin/fix-resume-urls", h.FixResumeURLs)
	r.Get("/api/openapi.json", h.GetOpenAPI)
	return r
}

// testJobID — UUID активной вакансии в stubJobs.
const testJobID = "0b8a1c6e-2f4d-4a59-9d3e-7c1f2b6a9e10"

// testHidden — UUID скрытой вакансии.
const testHidden = "5d2e7f10-8a3b-4c6d-9e1f-2a3b4c5d6e7f"

type testDeps struct {
	intake     *stubIntake
	resumes    *stubResumes
	reconciler *stubReconciler
	jobs       *stubJobs
	records    *stubRecords
	sessions   *auth.SessionManager
}

func newTestHandler() (http.Handler, *testDeps) {
	deps := &testDeps{
		intake:  &stubIntake{},
		resumes: &stubResumes{},
		reconciler: &stubReconciler{summary: &service.ReconcileSummary{
			Fixes:   1,
			Details: []model.ResumeFix{{Type: "enquiry", ID: "e-1", Old: "a", New: "b"}},
		}},
		jobs: &stubJobs{jobs: map[string]*model.Job{
			testJobID:  {ID: testJobID, Title: "Solar Engineer", IsActive: true},
			testHidden: {ID: testHidden, Title: "Hidden", IsActive: false},
		}},
		records:  &stubRecords{},
		sessions: auth.NewSessionManager("s3cret", "0123456789abcdef0123456789abcdef", 24*time.Hour, false),
	}
	h := NewAPIHandler(NewHealthHandler(), Services{
		Intake:     deps.intake,
		Resumes:    deps.resumes,
		Reconciler: deps.reconciler,
		Jobs:       deps.jobs,
		Records:    deps.records,
		Stats:      stubStats{},
		Sessions:   deps.sessions,
	}, []byte(`{"openapi":"3.0.3"}`), testLogger())
	return testRouter(h), deps
}

// errTest — произвольная ошибка инфраструктуры.
var errTest = errors.New("connection refused")

func newSessionManagerWithoutPassword() *auth.SessionManager {
	return auth.NewSessionManager("", "0123456789abcdef0123456789abcdef", 24*time.Hour, false)
}
