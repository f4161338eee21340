// Пакет validation — граница «разобрать, затем проверить» для входящих форм.
// Нетипизированное тело запроса (map[string]any) проходит структурную
// проверку JSON Schema (gojsonschema), затем правила полей; на выходе —
// нормализованная типизированная запись или список ошибок по полям.
package validation

import (
	"errors"
	"strings"
)

// ErrValidation — базовая ошибка валидации, на неё указывает *Error через Unwrap.
var ErrValidation = errors.New("validation failed")

// FieldError — ошибка одного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error — результат неуспешной валидации со списком ошибок по полям.
type Error struct {
	Fields []FieldError
}

// Error возвращает сообщения всех полей через "; ".
func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrValidation).
func (e *Error) Unwrap() error {
	return ErrValidation
}

// Message возвращает сообщение для поля или пустую строку.
func (e *Error) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// FieldErrorf создаёт *Error с одной ошибкой поля.
// Используется сервисным слоем, когда нарушение обнаруживается при записи
// (например, несуществующая вакансия).
func FieldErrorf(field, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

// collector накапливает ошибки полей в порядке проверки.
type collector struct {
	fields  []FieldError
	skipped map[string]bool
}

func newCollector() *collector {
	return &collector{skipped: make(map[string]bool)}
}

// add добавляет ошибку; по каждому полю сохраняется только первая.
func (c *collector) add(field, message string) {
	if c.skipped[field] {
		return
	}
	c.skipped[field] = true
	c.fields = append(c.fields, FieldError{Field: field, Message: message})
}

// failed сообщает, что для поля уже есть ошибка.
func (c *collector) failed(field string) bool {
	return c.skipped[field]
}

// err возвращает *Error или nil, если ошибок нет.
func (c *collector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &Error{Fields: c.fields}
}
