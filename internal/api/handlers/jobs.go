// jobs.go — вакансии: публичный список и CRUD в админке.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// jobNotFound — сообщение для отсутствующей вакансии.
const jobNotFound = "Job not found"

// ListJobs — GET /api/jobs. Только активные вакансии.
func (h *APIHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListActive(r.Context())
	if err != nil {
		h.writeServiceError(w, err, jobNotFound, "Failed to fetch jobs")
		return
	}
	writeJSON(w, http.StatusOK, toJobDTOs(jobs))
}

// GetJob — GET /api/jobs/{id}.
func (h *APIHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(w, id, jobNotFound) {
		return
	}
	job, err := h.jobs.GetActive(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, jobNotFound, "Failed to fetch job")
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(job))
}

// AdminListJobs — GET /api/admin/jobs. Все вакансии, включая скрытые.
func (h *APIHandler) AdminListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, err, jobNotFound, "Failed to fetch jobs")
		return
	}
	writeJSON(w, http.StatusOK, toJobDTOs(jobs))
}

// AdminCreateJob — POST /api/admin/jobs.
func (h *APIHandler) AdminCreateJob(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeObject(w, r)
	if !ok {
		return
	}
	job, err := h.jobs.Create(r.Context(), raw)
	if err != nil {
		h.writeServiceError(w, err, jobNotFound, "Failed to create job")
		return
	}
	writeJSON(w, http.StatusCreated, toJobDTO(job))
}

// AdminUpdateJob — PUT /api/admin/jobs/{id}. Частичное обновление.
func (h *APIHandler) AdminUpdateJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(w, id, jobNotFound) {
		return
	}
	raw, ok := decodeObject(w, r)
	if !ok {
		return
	}
	job, err := h.jobs.Update(r.Context(), id, raw)
	if err != nil {
		h.writeServiceError(w, err, jobNotFound, "Failed to update job")
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(job))
}

// AdminDeleteJob — DELETE /api/admin/jobs/{id}. Отклики удаляются каскадно.
func (h *APIHandler) AdminDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(w, id, jobNotFound) {
		return
	}
	if err := h.jobs.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err, jobNotFound, "Failed to delete job")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
