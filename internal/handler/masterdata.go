package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func urlParamInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil
}

func (h *Handler) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.store.ListSubjects()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch subjects")
		return
	}
	respondJSON(w, http.StatusOK, subjects)
}

func (h *Handler) handleListTopics(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := urlParamInt(r, "subjectID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid subject id")
		return
	}
	topics, err := h.store.ListTopics(subjectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch topics")
		return
	}
	respondJSON(w, http.StatusOK, topics)
}

func (h *Handler) handleListSubtopics(w http.ResponseWriter, r *http.Request) {
	topicID, ok := urlParamInt(r, "topicID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid topic id")
		return
	}
	subtopics, err := h.store.ListSubtopics(topicID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch subtopics")
		return
	}
	respondJSON(w, http.StatusOK, subtopics)
}

func (h *Handler) handleListDifficultyLevels(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := urlParamInt(r, "subjectID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid subject id")
		return
	}
	levels, err := h.store.ListDifficultyLevels(subjectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch difficulty levels")
		return
	}
	respondJSON(w, http.StatusOK, levels)
}
