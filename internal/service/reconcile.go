// reconcile.go — исправление и проверка ссылок на резюме.
//
// Reconcile перебирает все сохранённые ссылки, проверяет HEAD-запросом
// варианты расположения файла (корень bucket и папка resumes/) и
// переписывает ссылку на первый доступный вариант. Сбои отдельных
// проверок и обновлений пропускаются.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
)

// legacyPublicPath — путь публичных объектов в ссылках прежнего хранилища.
const legacyPublicPath = "/storage/v1/object/public/"

// legacyFolder — папка, в которую раньше загружались резюме.
const legacyFolder = "resumes/"

// resumeFilenameRe выделяет имя файла резюме в конце ссылки.
var resumeFilenameRe = regexp.MustCompile(`(?i)/([^/]+\.(pdf|doc|docx))$`)

// ResumeRefStore — источник ссылок на резюме одного типа записей.
type ResumeRefStore interface {
	ListResumeRefs(ctx context.Context) ([]model.ResumeRef, error)
	UpdateResumeURL(ctx context.Context, id, url string) error
}

// Prober проверяет доступность URL запросом HEAD.
type Prober interface {
	Head(ctx context.Context, url string) (status int, err error)
}

// HTTPProber — Prober поверх net/http.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber создаёт HTTP prober с таймаутом на запрос.
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{client: &http.Client{Timeout: timeout}}
}

// Head выполняет HEAD-запрос и возвращает HTTP-статус.
func (p *HTTPProber) Head(ctx context.Context, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

// ReconcileSummary — итог исправления ссылок.
type ReconcileSummary struct {
	Fixes   int
	Details []model.ResumeFix
}

// ProbeResult — результат проверки одного варианта пути.
type ProbeResult struct {
	Path   string `json:"path"`
	URL    string `json:"url"`
	Exists bool   `json:"exists"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// VerifyResult — результат проверки ссылки на резюме.
type VerifyResult struct {
	OriginalURL  string        `json:"originalUrl"`
	OriginalPath string        `json:"originalPath"`
	Results      []ProbeResult `json:"results"`
}

// ResumeReconciler — сервис исправления ссылок на резюме.
type ResumeReconciler struct {
	enquiries    ResumeRefStore
	applications ResumeRefStore
	prober       Prober
	publicURL    func(key string) string
	publicPrefix string
	legacyBaseRe *regexp.Regexp
	legacyPathRe *regexp.Regexp
	logger       *slog.Logger
}

// NewResumeReconciler создаёт сервис исправления ссылок.
// publicURL строит публичную ссылку на ключ объекта; publicPrefix —
// публичный префикс bucket без завершающего слеша.
func NewResumeReconciler(
	enquiries ResumeRefStore,
	applications ResumeRefStore,
	prober Prober,
	bucket string,
	publicPrefix string,
	publicURL func(key string) string,
	logger *slog.Logger,
) *ResumeReconciler {
	legacy := regexp.QuoteMeta(legacyPublicPath + bucket)
	return &ResumeReconciler{
		enquiries:    enquiries,
		applications: applications,
		prober:       prober,
		publicURL:    publicURL,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
		legacyBaseRe: regexp.MustCompile(`^(https?://[^/]+` + legacy + `)`),
		legacyPathRe: regexp.MustCompile(legacy + `/(.+)$`),
		logger:       logger.With(slog.String("component", "resume_reconciler")),
	}
}

// Reconcile проверяет все ссылки на резюме и исправляет устаревшие.
// Ошибка возвращается только при сбое загрузки списков ссылок.
func (r *ResumeReconciler) Reconcile(ctx context.Context) (*ReconcileSummary, error) {
	var enquiryRefs, applicationRefs []model.ResumeRef

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		refs, err := r.enquiries.ListResumeRefs(gctx)
		enquiryRefs = refs
		return err
	})
	g.Go(func() error {
		refs, err := r.applications.ListResumeRefs(gctx)
		applicationRefs = refs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, persistenceError("Failed to fix resume URLs", err)
	}

	summary := &ReconcileSummary{Details: []model.ResumeFix{}}
	r.reconcileRefs(ctx, r.enquiries, enquiryRefs, summary)
	r.reconcileRefs(ctx, r.applications, applicationRefs, summary)
	summary.Fixes = len(summary.Details)

	r.logger.Info("Исправление ссылок на резюме завершено",
		slog.Int("checked", len(enquiryRefs)+len(applicationRefs)),
		slog.Int("fixes", summary.Fixes),
	)
	return summary, nil
}

// reconcileRefs обрабатывает ссылки одного типа записей.
func (r *ResumeReconciler) reconcileRefs(
	ctx context.Context,
	store ResumeRefStore,
	refs []model.ResumeRef,
	summary *ReconcileSummary,
) {
	for _, ref := range refs {
		if ctx.Err() != nil {
			return
		}
		candidates := r.candidates(ref.URL)
		if candidates == nil {
			continue
		}

		found := r.firstAvailable(ctx, candidates)
		if found == "" || found == ref.URL {
			continue
		}

		if err := store.UpdateResumeURL(ctx, ref.ID, found); err != nil {
			r.logger.Warn("Не удалось обновить ссылку на резюме",
				slog.String("type", ref.Type),
				slog.String("id", ref.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		resumeFixesTotal.WithLabelValues(ref.Type).Inc()
		summary.Details = append(summary.Details, model.ResumeFix{
			Type: ref.Type,
			ID:   ref.ID,
			Old:  ref.URL,
			New:  found,
		})
	}
}

// candidates возвращает варианты расположения файла: корень bucket и
// папка resumes/. nil — ссылка не относится к bucket или не указывает на файл.
func (r *ResumeReconciler) candidates(stored string) []string {
	m := resumeFilenameRe.FindStringSubmatch(stored)
	if m == nil {
		return nil
	}
	filename := m[1]

	base := ""
	if lm := r.legacyBaseRe.FindStringSubmatch(stored); lm != nil {
		base = lm[1]
	} else if r.publicPrefix != "" && strings.HasPrefix(stored, r.publicPrefix+"/") {
		base = r.publicPrefix
	}
	if base == "" {
		return nil
	}

	return []string{
		base + "/" + filename,
		base + "/" + legacyFolder + filename,
	}
}

// firstAvailable возвращает первый вариант, ответивший 2xx; "" — ни один.
func (r *ResumeReconciler) firstAvailable(ctx context.Context, candidates []string) string {
	for _, c := range candidates {
		status, err := r.prober.Head(ctx, c)
		if err != nil {
			r.logger.Debug("Вариант ссылки недоступен",
				slog.String("url", c),
				slog.String("error", err.Error()),
			)
			continue
		}
		if status >= 200 && status < 300 {
			return c
		}
	}
	return ""
}

// Verify проверяет варианты расположения файла по ссылке, ничего не меняя.
// Ссылка вне bucket резюме — ErrInvalidResumeURL.
func (r *ResumeReconciler) Verify(ctx context.Context, rawURL string) (*VerifyResult, error) {
	path := r.objectPath(rawURL)
	if path == "" {
		return nil, ErrInvalidResumeURL
	}

	key := path
	if unescaped, err := url.PathUnescape(path); err == nil {
		key = unescaped
	}

	result := &VerifyResult{OriginalURL: rawURL, OriginalPath: path}
	for _, alt := range []string{key, legacyFolder + key, strings.TrimPrefix(key, legacyFolder)} {
		probe := ProbeResult{Path: alt, URL: r.publicURL(alt)}
		status, err := r.prober.Head(ctx, probe.URL)
		if err != nil {
			probe.Error = err.Error()
		} else {
			probe.Status = status
			probe.Exists = status >= 200 && status < 300
		}
		result.Results = append(result.Results, probe)
	}
	return result, nil
}

// objectPath выделяет путь объекта из ссылки; "" — ссылка не относится к bucket.
func (r *ResumeReconciler) objectPath(rawURL string) string {
	if m := r.legacyPathRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	if r.publicPrefix != "" && strings.HasPrefix(rawURL, r.publicPrefix+"/") {
		return strings.TrimPrefix(rawURL, r.publicPrefix+"/")
	}
	return ""
}
