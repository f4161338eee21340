// intake.go — публичные формы: заявка и отклик на вакансию.
package handlers

import (
	"net/http"
	"strings"

	"github.com/bigkaa/corpsite/site-api/internal/domain/lang"
)

// enquiryCreatedResponse — ответ на сохранённую заявку.
type enquiryCreatedResponse struct {
	Success bool       `json:"success"`
	Data    enquiryDTO `json:"data"`
}

// applicationCreatedResponse — ответ на сохранённый отклик.
type applicationCreatedResponse struct {
	Success bool           `json:"success"`
	Data    applicationDTO `json:"data"`
}

// PostEnquiry — POST /api/enquiry.
// Язык формы берётся из тела; если он не передан или пуст — из Accept-Language.
func (h *APIHandler) PostEnquiry(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeObject(w, r)
	if !ok {
		return
	}
	// Нестроковое значение оставляется валидатору.
	switch v := raw["language"].(type) {
	case nil:
		raw["language"] = lang.Match(r.Header.Get("Accept-Language"))
	case string:
		if strings.TrimSpace(v) == "" {
			raw["language"] = lang.Match(r.Header.Get("Accept-Language"))
		}
	}

	enquiry, err := h.intake.SubmitEnquiry(r.Context(), raw)
	if err != nil {
		h.writeServiceError(w, err, "Enquiry not found", "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, enquiryCreatedResponse{Success: true, Data: toEnquiryDTO(enquiry)})
}

// PostJobApplication — POST /api/job-application.
func (h *APIHandler) PostJobApplication(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeObject(w, r)
	if !ok {
		return
	}

	application, err := h.intake.SubmitJobApplication(r.Context(), raw)
	if err != nil {
		h.writeServiceError(w, err, "Job not found", "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, applicationCreatedResponse{Success: true, Data: toApplicationDTO(application)})
}

