package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
)

// jobTextField — текстовое поле вакансии и его ограничения.
type jobTextField struct {
	key      string
	label    string
	required bool
	maxLen   int
}

// jobTextFields — текстовые поля вакансии в порядке проверки.
var jobTextFields = []jobTextField{
	{key: "title", label: "Title", required: true, maxLen: 200},
	{key: "department", label: "Department", required: true, maxLen: 100},
	{key: "location", label: "Location", required: true, maxLen: 200},
	{key: "experience", label: "Experience", maxLen: 100},
	{key: "description", label: "Description", maxLen: 10000},
}

var jobTypeMessages = map[string]string{
	"title":        "Title must be text",
	"department":   "Department must be text",
	"location":     "Location must be text",
	"experience":   "Experience must be text",
	"description":  "Description must be text",
	"requirements": "Requirements must be text or a list of strings",
	"is_active":    "is_active must be a boolean",
}

// ValidateJob проверяет тело создания вакансии.
// is_active по умолчанию true.
func ValidateJob(raw map[string]any) (*model.Job, error) {
	c := newCollector()
	if err := checkStructure(jobSchema, raw, c, jobTypeMessages); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(jobTextFields))
	for _, f := range jobTextFields {
		if c.failed(f.key) {
			continue
		}
		values[f.key] = checkJobText(c, f, stringField(raw, f.key))
	}

	job := &model.Job{
		Title:        values["title"],
		Department:   values["department"],
		Location:     values["location"],
		Experience:   values["experience"],
		Description:  values["description"],
		Requirements: []string{},
		IsActive:     true,
	}
	if !c.failed("requirements") {
		job.Requirements = parseRequirements(raw["requirements"])
	}
	if v, ok := raw["is_active"].(bool); ok {
		job.IsActive = v
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return job, nil
}

// ValidateJobPatch проверяет тело частичного обновления вакансии.
// В патч попадают только переданные поля; пустой патч — ошибка.
func ValidateJobPatch(raw map[string]any) (model.JobPatch, error) {
	var patch model.JobPatch
	c := newCollector()
	if err := checkStructure(jobSchema, raw, c, jobTypeMessages); err != nil {
		return patch, err
	}

	for _, f := range jobTextFields {
		v, present := raw[f.key]
		if !present || v == nil || c.failed(f.key) {
			continue
		}
		value := checkJobText(c, f, v.(string))
		switch f.key {
		case "title":
			patch.Title = &value
		case "department":
			patch.Department = &value
		case "location":
			patch.Location = &value
		case "experience":
			patch.Experience = &value
		case "description":
			patch.Description = &value
		}
	}

	if v, present := raw["requirements"]; present && v != nil && !c.failed("requirements") {
		reqs := parseRequirements(v)
		patch.Requirements = &reqs
	}
	if v, ok := raw["is_active"].(bool); ok {
		patch.IsActive = &v
	}

	if err := c.err(); err != nil {
		return patch, err
	}
	if patch.Empty() {
		return patch, FieldErrorf("(root)", "No fields to update")
	}
	return patch, nil
}

// checkJobText обрезает пробелы и проверяет обязательность и длину.
func checkJobText(c *collector, f jobTextField, value string) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "" && f.required:
		c.add(f.key, f.label+" is required")
	case utf8.RuneCountInString(value) > f.maxLen:
		c.add(f.key, f.label+" is too long")
	}
	return value
}

// parseRequirements принимает список строк или многострочный текст
// (по требованию на строку) и возвращает непустые строки без пробелов по краям.
func parseRequirements(v any) []string {
	var items []string
	switch t := v.(type) {
	case string:
		items = strings.Split(t, "\n")
	case []string:
		items = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(item), "•"))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
