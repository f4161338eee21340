// metrics.go — доменные Prometheus метрики сайта.
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения лейбла result.
const (
	resultAccepted = "accepted"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

var (
	// submissionsTotal — отправки публичных форм по типу и результату.
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_submissions_total",
			Help: "Количество отправок форм заявок и откликов",
		},
		[]string{"kind", "result"},
	)

	// resumeUploadsTotal — загрузки резюме по результату.
	resumeUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_resume_uploads_total",
			Help: "Количество загрузок резюме",
		},
		[]string{"result"},
	)

	// resumeFixesTotal — исправленные ссылки на резюме по типу записи.
	resumeFixesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_resume_fixes_total",
			Help: "Количество исправленных ссылок на резюме",
		},
		[]string{"type"},
	)
)
