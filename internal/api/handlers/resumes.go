// resumes.go — загрузка, выдача и проверка ссылок на резюме.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/corpsite/site-api/internal/api/errors"
	"github.com/bigkaa/corpsite/site-api/internal/domain/model"
	"github.com/bigkaa/corpsite/site-api/internal/service"
)

// multipartOverhead — запас на заголовки multipart сверх лимита файла.
const multipartOverhead = 64 << 10

// uploadResponse — ответ на загрузку резюме.
type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Path    string `json:"path"`
}

// fixResumeURLsResponse — итог исправления ссылок.
type fixResumeURLsResponse struct {
	Success bool              `json:"success"`
	Fixes   int               `json:"fixes"`
	Details []model.ResumeFix `json:"details"`
}

// UploadResume — POST /api/upload-resume (multipart, поле file).
func (h *APIHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.resumes.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeServiceError(w, service.ErrFileTooLarge, "", "")
			return
		}
		h.writeServiceError(w, service.ErrFileMissing, "", "")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeServiceError(w, service.ErrFileMissing, "", "")
		return
	}
	defer file.Close()

	result, err := h.resumes.Upload(r.Context(), model.ResumeFile{
		Content:     file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	})
	if err != nil {
		h.writeServiceError(w, err, "Resume not found", "Failed to upload file")
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, URL: result.URL, Path: result.Path})
}

// GetResume — GET /api/resumes/{key}?token=...
// Отдаёт объект из приватного bucket по подписанной ссылке.
func (h *APIHandler) GetResume(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	obj, err := h.resumes.Open(r.Context(), key, r.URL.Query().Get("token"))
	if err != nil {
		h.writeServiceError(w, err, "Resume not found", "Failed to read file")
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("Передача резюме прервана",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// VerifyResumeURL — POST /api/verify-resume-url {url}.
func (h *APIHandler) VerifyResumeURL(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&body); err != nil {
		apierrors.ValidationError(w, "URL is required")
		return
	}
	body.URL = strings.TrimSpace(body.URL)
	if body.URL == "" {
		apierrors.ValidationError(w, "URL is required")
		return
	}

	result, err := h.reconciler.Verify(r.Context(), body.URL)
	if err != nil {
		h.writeServiceError(w, err, "Resume not found", "Failed to verify URL")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// FixResumeURLs — POST /api/admin/fix-resume-urls.
func (h *APIHandler) FixResumeURLs(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reconciler.Reconcile(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Resume not found", "Failed to fix resume URLs")
		return
	}
	writeJSON(w, http.StatusOK, fixResumeURLsResponse{
		Success: true,
		Fixes:   summary.Fixes,
		Details: summary.Details,
	})
}
