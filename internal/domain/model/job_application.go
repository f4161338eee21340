package model

import "time"

// JobApplication — отклик на вакансию.
// Хранится в таблице job_applications; резюме обязательно.
type JobApplication struct {
	// ID — UUID записи
	ID string
	// JobID — UUID вакансии
	JobID string
	Name  string
	Email string
	Phone string
	// ResumeURL — ссылка на загруженное резюме
	ResumeURL string
	// CoverLetter — сопроводительное письмо (nil, если пустое)
	CoverLetter *string
	CreatedAt   time.Time

	// JobTitle, JobDepartment — данные вакансии (заполняются в списке админки)
	JobTitle      string
	JobDepartment string
}
