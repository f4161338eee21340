package model

import "io"

// ResumeFile — загружаемый файл резюме.
// Не сохраняется как сущность: после загрузки в bucket остаётся только URL.
type ResumeFile struct {
	// Content — содержимое файла
	Content io.Reader
	// Size — заявленный размер в байтах
	Size int64
	// ContentType — заявленный MIME-тип
	ContentType string
	// Filename — исходное имя файла (источник расширения)
	Filename string
}

// Типы записей, содержащих ссылку на резюме.
const (
	ResumeOwnerEnquiry     = "enquiry"
	ResumeOwnerApplication = "application"
)

// ResumeRef — ссылка на резюме в конкретной записи.
type ResumeRef struct {
	// Type — enquiry или application
	Type string
	// ID — UUID записи
	ID string
	// URL — сохранённая ссылка
	URL string
}

// ResumeFix — исправленная ссылка на резюме.
type ResumeFix struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Old  string `json:"old"`
	New  string `json:"new"`
}
