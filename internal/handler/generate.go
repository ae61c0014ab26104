package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lvnplus/qgen/internal/generator"
	"github.com/lvnplus/qgen/internal/model"
)

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generator.StartRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid generation request")
		return
	}

	batchID, err := h.generator.Start(req, model.UserFromContext(r.Context()).UserID)
	if err != nil {
		var ve generator.ValidationError
		switch {
		case errors.As(err, &ve):
			respondError(w, http.StatusBadRequest, "Invalid generation request")
		case errors.Is(err, generator.ErrTemplateNotFound):
			respondError(w, http.StatusNotFound, "Template not found")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to start generation")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"batchId": batchID})
}

func (h *Handler) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	progress, err := h.generator.Status(chi.URLParam(r, "batchID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch batch status")
		return
	}
	if progress == nil {
		respondError(w, http.StatusNotFound, "Batch not found")
		return
	}
	respondJSON(w, http.StatusOK, progress)
}
