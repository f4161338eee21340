// schema.go — структурный этап валидации: встроенные JSON Schema (gojsonschema).
// Проверяются только типы полей; правила содержимого — в rules.go.
package validation

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	enquirySchema     = mustLoadSchema("schemas/enquiry.json")
	applicationSchema = mustLoadSchema("schemas/job_application.json")
	jobSchema         = mustLoadSchema("schemas/job.json")
)

// mustLoadSchema компилирует встроенную схему; ошибка — дефект сборки.
func mustLoadSchema(path string) *gojsonschema.Schema {
	data, err := schemaFS.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("validation: схема %s не найдена: %v", path, err))
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("validation: схема %s некорректна: %v", path, err))
	}
	return schema
}

// checkStructure проверяет тело по схеме и добавляет в collector ошибки типов.
// typeMessages задаёт сообщение для поля неверного типа; для остальных
// полей используется "<field> has an invalid type".
func checkStructure(schema *gojsonschema.Schema, raw map[string]any, c *collector, typeMessages map[string]string) error {
	if raw == nil {
		raw = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("проверка схемы: %w", err)
	}
	if result.Valid() {
		return nil
	}

	for _, re := range result.Errors() {
		field := topLevelField(re.Field())
		msg, ok := typeMessages[field]
		if !ok {
			msg = field + " has an invalid type"
		}
		c.add(field, msg)
	}
	return nil
}

// topLevelField возвращает имя поля верхнего уровня ("requirements.0" → "requirements").
func topLevelField(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}
