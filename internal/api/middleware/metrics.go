// metrics.go — Prometheus HTTP метрики Site API.
// Регистрирует метрики: site_http_requests_total, site_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_http_requests_total",
			Help: "Общее количество HTTP-запросов к Site API",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Site API в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Идентификаторы и ключи объектов заменяются шаблоном
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// staticPaths — пути без параметров, попадающие в лейблы как есть.
var staticPaths = map[string]bool{
	"/health/live":                true,
	"/health/ready":               true,
	"/metrics":                    true,
	"/api/openapi.json":           true,
	"/api/enquiry":                true,
	"/api/job-application":        true,
	"/api/upload-resume":          true,
	"/api/verify-resume-url":      true,
	"/api/jobs":                   true,
	"/api/admin/login":            true,
	"/api/admin/logout":           true,
	"/api/admin/check":            true,
	"/api/admin/jobs":             true,
	"/api/admin/applications":     true,
	"/api/admin/enquiries":        true,
	"/api/admin/enquiries/export": true,
	"/api/admin/stats":            true,
	"/api/admin/fix-resume-urls":  true,
}

// paramPrefixes — пути с параметром в последнем сегменте.
var paramPrefixes = []struct {
	prefix string
	result string
}{
	{"/api/jobs/", "/api/jobs/{id}"},
	{"/api/admin/jobs/", "/api/admin/jobs/{id}"},
	{"/api/admin/applications/", "/api/admin/applications/{id}"},
	{"/api/admin/enquiries/", "/api/admin/enquiries/{id}"},
	{"/api/resumes/", "/api/resumes/{key}"},
}

// normalizePath заменяет идентификаторы в пути на шаблон для предотвращения
// взрывного роста кардинальности метрик.
// /api/admin/jobs/a1b2c3d4-... → /api/admin/jobs/{id}
func normalizePath(path string) string {
	if staticPaths[path] {
		return path
	}

	for _, p := range paramPrefixes {
		if rest, ok := strings.CutPrefix(path, p.prefix); ok && rest != "" && !strings.Contains(rest, "/") {
			return p.result
		}
	}

	return "other"
}
