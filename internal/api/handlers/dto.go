// dto.go — JSON-представления записей в ответах API.
// Записи БД отдаются в snake_case, как строки таблиц.
package handlers

import (
	"time"

	"github.com/ecodeclub/ekit/slice"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
)

// jobDTO — вакансия.
type jobDTO struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Department   string    `json:"department"`
	Location     string    `json:"location"`
	Experience   string    `json:"experience"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toJobDTO(j *model.Job) jobDTO {
	reqs := j.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	return jobDTO{
		ID:           j.ID,
		Title:        j.Title,
		Department:   j.Department,
		Location:     j.Location,
		Experience:   j.Experience,
		Description:  j.Description,
		Requirements: reqs,
		IsActive:     j.IsActive,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

func toJobDTOs(jobs []*model.Job) []jobDTO {
	return slice.Map(jobs, func(_ int, j *model.Job) jobDTO { return toJobDTO(j) })
}

// enquiryDTO — заявка.
type enquiryDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	ServiceType string    `json:"service_type"`
	Message     string    `json:"message"`
	Language    string    `json:"language"`
	ResumeURL   *string   `json:"resume_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toEnquiryDTO(e *model.Enquiry) enquiryDTO {
	return enquiryDTO{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Phone:       e.Phone,
		ServiceType: e.ServiceType,
		Message:     e.Message,
		Language:    e.Language,
		ResumeURL:   e.ResumeURL,
		CreatedAt:   e.CreatedAt,
	}
}

func toEnquiryDTOs(list []*model.Enquiry) []enquiryDTO {
	return slice.Map(list, func(_ int, e *model.Enquiry) enquiryDTO { return toEnquiryDTO(e) })
}

// applicationJobDTO — краткие данные вакансии отклика.
type applicationJobDTO struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Department string `json:"department"`
}

// applicationDTO — отклик на вакансию.
type applicationDTO struct {
	ID          string             `json:"id"`
	JobID       string             `json:"job_id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	ResumeURL   string             `json:"resume_url"`
	CoverLetter *string            `json:"cover_letter"`
	CreatedAt   time.Time          `json:"created_at"`
	Job         *applicationJobDTO `json:"jobs,omitempty"`
}

func toApplicationDTO(a *model.JobApplication) applicationDTO {
	dto := applicationDTO{
		ID:          a.ID,
		JobID:       a.JobID,
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		ResumeURL:   a.ResumeURL,
		CoverLetter: a.CoverLetter,
		CreatedAt:   a.CreatedAt,
	}
	if a.JobTitle != "" {
		dto.Job = &applicationJobDTO{ID: a.JobID, Title: a.JobTitle, Department: a.JobDepartment}
	}
	return dto
}

func toApplicationDTOs(list []*model.JobApplication) []applicationDTO {
	return slice.Map(list, func(_ int, a *model.JobApplication) applicationDTO { return toApplicationDTO(a) })
}
