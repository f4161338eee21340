// Пакет lang — нормализация языковых тегов заявок.
// Сайт переведён на English (en) и తెలుగు (te); в заявке сохраняется
// базовый тег языка, на котором пользователь заполнял форму.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Default — язык по умолчанию.
const Default = "en"

var (
	// Supported — языки интерфейса сайта.
	Supported = []language.Tag{
		language.English,
		language.Telugu,
	}

	// matcher — языковой matcher для Accept-Language.
	matcher = language.NewMatcher(Supported)
)

// Normalize приводит тег к базовому языку ("en-IN" → "en", "TE" → "te").
// Пустая строка даёт Default. Нераспознанный тег — ошибка.
func Normalize(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Default, nil
	}

	parsed, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("некорректный языковой тег %q: %w", tag, err)
	}

	base, conf := parsed.Base()
	if conf == language.No {
		return "", fmt.Errorf("не удалось определить язык тега %q", tag)
	}
	return base.String(), nil
}

// Match выбирает поддерживаемый язык по заголовку Accept-Language.
// Возвращает "en" или "te".
func Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return Default
	}
	tag, _, conf := matcher.Match(parseAccept(acceptLanguage)...)
	if conf == language.No {
		return Default
	}
	base, _ := tag.Base()
	if base.String() == "te" {
		return "te"
	}
	return Default
}

// parseAccept разбирает Accept-Language; при ошибке возвращает пустой список.
func parseAccept(acceptLanguage string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return nil
	}
	return tags
}
