package validation

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bigkaa/corpsite/site-api/internal/domain/lang"
	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
)

// EnquiryInput — нормализованная заявка, прошедшая валидацию.
type EnquiryInput struct {
	Name        string
	Email       string
	Phone       string
	ServiceType string
	Message     string
	Language    string
	// ResumeURL — пусто, если резюме не приложено
	ResumeURL string
}

// enquiryTypeMessages — сообщения для полей неверного типа.
var enquiryTypeMessages = map[string]string{
	"name":        "Name is required",
	"email":       "Email is required",
	"phone":       "Phone number is required",
	"serviceType": "Please select a service type",
	"message":     "Message is required",
	"language":    "Invalid language",
	"resumeUrl":   "Invalid resume URL",
}

// ValidateEnquiry проверяет тело формы обратной связи.
// Возвращает нормализованную запись или *Error со всеми ошибками полей.
func ValidateEnquiry(raw map[string]any, opts Options) (*EnquiryInput, error) {
	c := newCollector()
	if err := checkStructure(enquirySchema, raw, c, enquiryTypeMessages); err != nil {
		return nil, err
	}

	in := &EnquiryInput{
		Name:  checkName(c, raw),
		Email: checkEmail(c, raw),
		Phone: checkPhone(c, raw, opts),
	}

	if !c.failed("serviceType") {
		in.ServiceType = strings.TrimSpace(stringField(raw, "serviceType"))
		if !slices.Contains(model.ServiceTypes, in.ServiceType) {
			c.add("serviceType", "Please select a service type")
		}
	}

	if !c.failed("message") {
		in.Message = strings.TrimSpace(stringField(raw, "message"))
		n := utf8.RuneCountInString(in.Message)
		switch {
		case n == 0:
			c.add("message", "Message is required")
		case n < MessageMinLen:
			c.add("message", "Message must be at least 10 characters")
		case n > MessageMaxLen:
			c.add("message", "Message must be less than 2000 characters")
		}
	}

	if !c.failed("language") {
		tag, err := lang.Normalize(stringField(raw, "language"))
		if err != nil {
			c.add("language", "Invalid language")
		}
		in.Language = tag
	}

	in.ResumeURL = checkResumeURL(c, raw, false)

	if err := c.err(); err != nil {
		return nil, err
	}
	return in, nil
}
