package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lvnplus/qgen/internal/model"
)

func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	batchID := r.URL.Query().Get("batchId")
	status := model.QuestionStatus(r.URL.Query().Get("status"))

	questions, err := h.store.ListQuestions(batchID, status)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch questions")
		return
	}
	if questions == nil {
		questions = []model.GeneratedQuestion{}
	}
	respondJSON(w, http.StatusOK, questions)
}

func (h *Handler) handleApproveQuestion(w http.ResponseWriter, r *http.Request) {
	err := h.store.ApproveQuestion(chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to approve question")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Question approved"})
}

func (h *Handler) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var update model.QuestionUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	err := h.store.UpdateQuestion(id, update)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update question")
		return
	}

	q, err := h.store.GetQuestion(id)
	if err != nil || q == nil {
		respondError(w, http.StatusInternalServerError, "Failed to update question")
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (h *Handler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteQuestion(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete question")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Question deleted"})
}
