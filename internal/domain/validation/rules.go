// rules.go — правила полей, общие для заявки и отклика на вакансию.
package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Границы длин полей (в символах).
const (
	NameMinLen        = 2
	NameMaxLen        = 100
	EmailMaxLen       = 255
	MessageMinLen     = 10
	MessageMaxLen     = 2000
	CoverLetterMaxLen = 2000
	PhoneDigits       = 10
)

// Options — настройки валидатора.
type Options struct {
	// StripCountryCode — отрезать ведущий "91", если после удаления
	// нецифровых символов осталось ровно 12 цифр.
	StripCountryCode bool
}

// validate — проверки синтаксиса email, URL и UUID.
var validate = validator.New()

// stringField возвращает строковое значение поля; nil и отсутствие — "".
// Вызывается после структурной проверки, поэтому иные типы не встречаются.
func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

// checkName проверяет и нормализует имя.
func checkName(c *collector, raw map[string]any) string {
	const field = "name"
	if c.failed(field) {
		return ""
	}
	name := strings.TrimSpace(stringField(raw, field))
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		c.add(field, "Name is required")
	case n < NameMinLen:
		c.add(field, "Name must be at least 2 characters")
	case n > NameMaxLen:
		c.add(field, "Name must be less than 100 characters")
	case !isPersonName(name):
		c.add(field, "Name can only contain letters, spaces, hyphens, and apostrophes")
	}
	return name
}

// isPersonName — только буквы (с диакритикой), пробелы, дефисы и апострофы.
func isPersonName(s string) bool {
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.Is(unicode.M, r):
		case r == ' ', r == '\t', r == '-', r == '\'':
		default:
			return false
		}
	}
	return true
}

// checkEmail проверяет email и приводит его к нижнему регистру.
func checkEmail(c *collector, raw map[string]any) string {
	const field = "email"
	if c.failed(field) {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(stringField(raw, field)))
	switch {
	case email == "":
		c.add(field, "Email is required")
	case len(email) > EmailMaxLen:
		c.add(field, "Email is too long")
	case validate.Var(email, "email") != nil:
		c.add(field, "Please enter a valid email address")
	}
	return email
}

// checkPhone удаляет все нецифровые символы и проверяет мобильный номер:
// ровно 10 цифр, первая — 6, 7, 8 или 9.
func checkPhone(c *collector, raw map[string]any, opts Options) string {
	const field = "phone"
	if c.failed(field) {
		return ""
	}
	input := strings.TrimSpace(stringField(raw, field))
	if input == "" {
		c.add(field, "Phone number is required")
		return ""
	}

	phone := NormalizePhone(input, opts)
	switch {
	case len(phone) != PhoneDigits:
		c.add(field, "Phone number must be exactly 10 digits")
	case phone[0] < '6' || phone[0] > '9':
		c.add(field, "Phone number must start with 6, 7, 8, or 9")
	}
	return phone
}

// NormalizePhone оставляет в номере только цифры. При opts.StripCountryCode
// 12-значный номер с ведущим "91" сокращается до 10 цифр.
func NormalizePhone(input string, opts Options) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if opts.StripCountryCode && len(digits) == PhoneDigits+2 && strings.HasPrefix(digits, "91") {
		return digits[2:]
	}
	return digits
}

// checkResumeURL проверяет ссылку на резюме. Для заявки ссылка
// необязательна, для отклика — обязательна.
func checkResumeURL(c *collector, raw map[string]any, required bool) string {
	const field = "resumeUrl"
	if c.failed(field) {
		return ""
	}
	u := strings.TrimSpace(stringField(raw, field))
	switch {
	case u == "" && required:
		c.add(field, "Resume is required")
	case u == "":
	case !IsAbsoluteURL(u):
		c.add(field, "Invalid resume URL")
	}
	return u
}

// IsAbsoluteURL сообщает, что строка — абсолютный http(s) URL.
func IsAbsoluteURL(s string) bool {
	return validate.Var(s, "required,http_url") == nil
}

// IsUUID сообщает, что строка — UUID в канонической записи.
func IsUUID(s string) bool {
	return validate.Var(s, "required,uuid") == nil
}
