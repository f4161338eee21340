// admin.go — вход администратора, выход и проверка сессии.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/corpsite/site-api/internal/api/errors"
	"github.com/bigkaa/corpsite/site-api/internal/auth"
)

// authCheckResponse — ответ проверки сессии.
type authCheckResponse struct {
	Authenticated bool `json:"authenticated"`
}

// AdminLogin — POST /api/admin/login {password}.
// При успехе выставляет cookie сессии.
func (h *APIHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&body); err != nil {
		apierrors.ValidationError(w, "Invalid request data")
		return
	}

	token, err := h.sessions.Login(body.Password)
	switch {
	case errors.Is(err, auth.ErrPasswordNotConfigured):
		h.logger.Error("Пароль администратора не настроен")
		apierrors.InternalError(w, "Admin password not configured")
		return
	case errors.Is(err, auth.ErrInvalidPassword):
		h.logger.Warn("Неудачная попытка входа в админку",
			slog.String("remote_addr", r.RemoteAddr),
		)
		apierrors.Unauthorized(w, "Invalid password")
		return
	case err != nil:
		h.logger.Error("Ошибка выпуска сессии", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Internal server error")
		return
	}

	h.sessions.SetSessionCookie(w, token)
	h.logger.Info("Администратор вошёл в систему")
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// AdminLogout — POST /api/admin/logout. Удаляет cookie сессии.
func (h *APIHandler) AdminLogout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// AdminCheck — GET /api/admin/check.
func (h *APIHandler) AdminCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Authenticate(r); err != nil {
		writeJSON(w, http.StatusUnauthorized, authCheckResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, authCheckResponse{Authenticated: true})
}

// AdminStats — GET /api/admin/stats.
func (h *APIHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Get(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Stats not found", "Failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
