package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lvnplus/qgen/internal/generator"
)

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListTasks()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.GetTask(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch task")
		return
	}
	if task == nil {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

type createTaskRequest struct {
	TemplateID     string `json:"template_id"`
	VariableValues string `json:"variable_values"`
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.generator.StartTask(req.TemplateID, req.VariableValues)
	if err != nil {
		var ve generator.ValidationError
		switch {
		case errors.Is(err, generator.ErrTemplateNotFound):
			respondError(w, http.StatusNotFound, "Template not found")
		case errors.As(err, &ve):
			respondError(w, http.StatusBadRequest, ve.Error())
		default:
			respondError(w, http.StatusInternalServerError, "Failed to create task")
		}
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTask(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}
