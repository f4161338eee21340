package validation

import (
	"strings"
	"unicode/utf8"
)

// JobApplicationInput — нормализованный отклик на вакансию.
type JobApplicationInput struct {
	JobID     string
	Name      string
	Email     string
	Phone     string
	ResumeURL string
	// CoverLetter — пусто, если письмо не заполнено
	CoverLetter string
}

var applicationTypeMessages = map[string]string{
	"jobId":       "Invalid job ID",
	"name":        "Name is required",
	"email":       "Email is required",
	"phone":       "Phone number is required",
	"resumeUrl":   "Resume is required",
	"coverLetter": "Cover letter must be text",
}

// ValidateJobApplication проверяет тело отклика. Резюме обязательно.
func ValidateJobApplication(raw map[string]any, opts Options) (*JobApplicationInput, error) {
	c := newCollector()
	if err := checkStructure(applicationSchema, raw, c, applicationTypeMessages); err != nil {
		return nil, err
	}

	in := &JobApplicationInput{}

	if !c.failed("jobId") {
		in.JobID = strings.ToLower(strings.TrimSpace(stringField(raw, "jobId")))
		if !IsUUID(in.JobID) {
			c.add("jobId", "Invalid job ID")
		}
	}

	in.Name = checkName(c, raw)
	in.Email = checkEmail(c, raw)
	in.Phone = checkPhone(c, raw, opts)
	in.ResumeURL = checkResumeURL(c, raw, true)

	if !c.failed("coverLetter") {
		in.CoverLetter = strings.TrimSpace(stringField(raw, "coverLetter"))
		if utf8.RuneCountInString(in.CoverLetter) > CoverLetterMaxLen {
			c.add("coverLetter", "Cover letter must be less than 2000 characters")
		}
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return in, nil
}
