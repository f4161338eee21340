package model

import "time"

// Job — вакансия раздела «Карьера».
// Хранится в таблице jobs.
type Job struct {
	ID           string
	Title        string
	Department   string
	Location     string
	Experience   string
	Description  string
	Requirements []string
	// IsActive — вакансия видна на публичном сайте
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JobPatch — частичное обновление вакансии.
// nil-поля не изменяются.
type JobPatch struct {
	Title        *string
	Department   *string
	Location     *string
	Experience   *string
	Description  *string
	Requirements *[]string
	IsActive     *bool
}

// Empty сообщает, что патч не меняет ни одного поля.
func (p JobPatch) Empty() bool {
	return p.Title == nil && p.Department == nil && p.Location == nil &&
		p.Experience == nil && p.Description == nil && p.Requirements == nil &&
		p.IsActive == nil
}
