package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lvnplus/qgen/internal/model"
)

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c model.VariableCategory
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if c.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	c.CreatedBy = model.UserFromContext(r.Context()).UserID

	id, err := h.store.CreateCategory(c)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}
	c.ID = id
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c model.VariableCategory
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	c.ID = chi.URLParam(r, "id")

	if err := h.store.UpdateCategory(c); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

func (h *Handler) handleListVariableDefinitions(w http.ResponseWriter, r *http.Request) {
	definitions, err := h.store.ListVariableDefinitions(chi.URLParam(r, "categoryID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch variables")
		return
	}
	respondJSON(w, http.StatusOK, definitions)
}

func (h *Handler) handleCreateVariableDefinition(w http.ResponseWriter, r *http.Request) {
	var v model.VariableDefinition
	if err := decodeJSON(r, &v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if v.Name == "" || v.CategoryID == "" {
		respondError(w, http.StatusBadRequest, "Name and category are required")
		return
	}
	v.CreatedBy = model.UserFromContext(r.Context()).UserID

	id, err := h.store.CreateVariableDefinition(v)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create variable")
		return
	}
	v.ID = id
	respondJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleUpdateVariableDefinition(w http.ResponseWriter, r *http.Request) {
	var v model.VariableDefinition
	if err := decodeJSON(r, &v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	v.ID = chi.URLParam(r, "id")

	if err := h.store.UpdateVariableDefinition(v); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update variable")
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDeleteVariableDefinition(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteVariableDefinition(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete variable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Variable deleted successfully"})
}

func (h *Handler) handleGetTemplateVariables(w http.ResponseWriter, r *http.Request) {
	usage, err := h.store.GetTemplateVariableUsage(chi.URLParam(r, "templateID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch template variables")
		return
	}
	respondJSON(w, http.StatusOK, usage)
}

type templateVariablesRequest struct {
	VariableIDs []string `json:"variable_ids"`
}

func (h *Handler) handleSetTemplateVariables(w http.ResponseWriter, r *http.Request) {
	var req templateVariablesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	usage, err := h.store.SetTemplateVariableUsage(chi.URLParam(r, "templateID"), req.VariableIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update template variables")
		return
	}
	respondJSON(w, http.StatusOK, usage)
}
