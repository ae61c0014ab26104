package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type exportRequest struct {
	QuestionIDs []string `json:"questionIds"`
	BatchID     string   `json:"batchId"`
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid export request")
		return
	}
	if len(req.QuestionIDs) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid export request")
		return
	}

	exportID, err := h.exporter.Start(req.QuestionIDs, req.BatchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to start export")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"exportId": exportID})
}

func (h *Handler) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	log, err := h.exporter.Status(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch export status")
		return
	}
	if log == nil {
		respondError(w, http.StatusNotFound, "Export not found")
		return
	}
	respondJSON(w, http.StatusOK, log)
}
