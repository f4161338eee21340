// admin_records.go — заявки и отклики в админке.
package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/corpsite/site-api/internal/service"
)

const (
	enquiryNotFound     = "Enquiry not found"
	applicationNotFound = "Application not found"
)

// enquiryQuery собирает фильтр заявок из query-параметров.
func enquiryQuery(r *http.Request) service.EnquiryQuery {
	q := r.URL.Query()
	return service.EnquiryQuery{
		Q:       q.Get("q"),
		Service: q.Get("service"),
		Period:  q.Get("period"),
	}
}

// AdminListEnquiries — GET /api/admin/enquiries?q=&service=&period=
func (h *APIHandler) AdminListEnquiries(w http.ResponseWriter, r *http.Request) {
	list, err := h.records.ListEnquiries(r.Context(), enquiryQuery(r))
	if err != nil {
		h.writeServiceError(w, err, enquiryNotFound, "Failed to fetch enquiries")
		return
	}
	writeJSON(w, http.StatusOK, toEnquiryDTOs(list))
}

// AdminDeleteEnquiry — DELETE /api/admin/enquiries/{id}.
func (h *APIHandler) AdminDeleteEnquiry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(w, id, enquiryNotFound) {
		return
	}
	if err := h.records.DeleteEnquiry(r.Context(), id); err != nil {
		h.writeServiceError(w, err, enquiryNotFound, "Failed to delete enquiry")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// AdminExportEnquiries — GET /api/admin/enquiries/export. CSV с тем же фильтром.
// Файл собирается в буфере: при ошибке БД ответ остаётся JSON-ошибкой.
func (h *APIHandler) AdminExportEnquiries(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.records.ExportEnquiries(r.Context(), enquiryQuery(r), &buf); err != nil {
		h.writeServiceError(w, err, enquiryNotFound, "Failed to export enquiries")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.records.ExportFilename()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// AdminListApplications — GET /api/admin/applications.
func (h *APIHandler) AdminListApplications(w http.ResponseWriter, r *http.Request) {
	list, err := h.records.ListApplications(r.Context())
	if err != nil {
		h.writeServiceError(w, err, applicationNotFound, "Failed to fetch applications")
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTOs(list))
}

// AdminDeleteApplication — DELETE /api/admin/applications/{id}.
func (h *APIHandler) AdminDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(w, id, applicationNotFound) {
		return
	}
	if err := h.records.DeleteApplication(r.Context(), id); err != nil {
		h.writeServiceError(w, err, applicationNotFound, "Failed to delete application")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
