package handler

import (
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lvnplus/qgen/internal/llm"
	"github.com/lvnplus/qgen/internal/model"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]`)

// slugify builds the stable id used for AI configs, providers and models.
func slugify(s string) string {
	return slugRe.ReplaceAllString(strings.ToLower(s), "-")
}

func (h *Handler) handleListAIConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ListAIConfigs()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch AI configurations")
		return
	}
	respondJSON(w, http.StatusOK, configs)
}

func (h *Handler) handleCreateAIConfig(w http.ResponseWriter, r *http.Request) {
	var cfg model.AIConfig
	if err := decodeJSON(r, &cfg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if cfg.Provider == "" || cfg.ModelName == "" {
		respondError(w, http.StatusBadRequest, "Provider and model name are required")
		return
	}
	cfg.ID = slugify(cfg.Provider + "-" + cfg.ModelName)

	if err := h.store.CreateAIConfig(cfg); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create AI configuration")
		return
	}
	respondJSON(w, http.StatusCreated, cfg)
}

func (h *Handler) handleUpdateAIConfig(w http.ResponseWriter, r *http.Request) {
	var cfg model.AIConfig
	if err := decodeJSON(r, &cfg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cfg.ID = chi.URLParam(r, "id")

	if err := h.store.UpdateAIConfig(cfg); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update AI configuration")
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (h *Handler) handleDeleteAIConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAIConfig(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete AI configuration")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Configuration deleted"})
}

type testConfigRequest struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt"`
	Temperature  float64 `json:"temperature"`
}

type testConfigResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleTestAIConfig sends one completion through the stored configuration
// so operators can verify credentials before making it the default.
func (h *Handler) handleTestAIConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetAIConfig(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch configuration")
		return
	}
	if cfg == nil {
		respondError(w, http.StatusNotFound, "Configuration not found")
		return
	}

	var req testConfigRequest
	// An empty body means a default test prompt.
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		req.Prompt = "Test message"
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = cfg.Temperature
	}

	client := h.factory(*cfg)
	response, err := client.Complete(r.Context(), llm.Request{
		Model:        cfg.ModelName,
		Temperature:  temperature,
		MaxTokens:    cfg.MaxTokens,
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.Prompt,
	})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, testConfigResponse{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, testConfigResponse{Success: true, Response: response})
}

func (h *Handler) handleListAIProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.store.ListAIProviders()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch providers")
		return
	}
	respondJSON(w, http.StatusOK, providers)
}

func (h *Handler) handleCreateAIProvider(w http.ResponseWriter, r *http.Request) {
	var p model.AIProvider
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if p.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	p.ID = slugify(p.Name)

	if err := h.store.CreateAIProvider(p); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create provider")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdateAIProvider(w http.ResponseWriter, r *http.Request) {
	var p model.AIProvider
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p.ID = chi.URLParam(r, "id")

	if err := h.store.UpdateAIProvider(p); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update provider")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) handleListAIModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.store.ListActiveAIModels()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch models")
		return
	}
	respondJSON(w, http.StatusOK, models)
}

func (h *Handler) handleCreateAIModel(w http.ResponseWriter, r *http.Request) {
	var m model.AIModel
	if err := decodeJSON(r, &m); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if m.Name == "" || m.ProviderID == "" {
		respondError(w, http.StatusBadRequest, "Name and provider are required")
		return
	}
	m.ID = m.ProviderID + "-" + slugify(m.Name)

	if err := h.store.CreateAIModel(m); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create model")
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleUpdateAIModel(w http.ResponseWriter, r *http.Request) {
	var m model.AIModel
	if err := decodeJSON(r, &m); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	m.ID = chi.URLParam(r, "id")

	if err := h.store.UpdateAIModel(m); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update model")
		return
	}
	respondJSON(w, http.StatusOK, m)
}
