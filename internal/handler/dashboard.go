package handler

import (
	"net/http"

	"github.com/lvnplus/qgen/internal/model"
)

func (h *Handler) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	total, approved, pending, err := h.store.CountQuestions()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch dashboard stats")
		return
	}
	failed, err := h.store.CountFailedBatches()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch dashboard stats")
		return
	}

	respondJSON(w, http.StatusOK, model.DashboardStats{
		TotalQuestions:    total,
		ApprovedQuestions: approved,
		PendingQuestions:  pending,
		FailedQuestions:   failed,
	})
}
