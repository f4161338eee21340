// auth.go — проверка сессии администратора.
// Cookie admin_session содержит подписанный HS256 токен; серверного
// хранилища сессий нет, токен и есть пропуск.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/corpsite/site-api/internal/api/errors"
)

// SessionAuthenticator — проверка сессии по запросу.
type SessionAuthenticator interface {
	Authenticate(r *http.Request) error
}

// contextKey — тип ключей контекста middleware.
type contextKey string

// ContextKeyAdmin — ключ признака аутентифицированного администратора.
const ContextKeyAdmin contextKey = "admin"

// RequireAdmin возвращает middleware, пропускающий только запросы
// с действительной сессией администратора. Иначе — 401.
func RequireAdmin(sessions SessionAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "admin_auth"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sessions.Authenticate(r); err != nil {
				logger.Debug("Сессия администратора не подтверждена",
					slog.String("error", err.Error()),
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdmin, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsAdmin сообщает, что запрос прошёл RequireAdmin.
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(ContextKeyAdmin).(bool)
	return v
}
