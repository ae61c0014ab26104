// Package handler exposes the JSON admin API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lvnplus/qgen/internal/exporter"
	"github.com/lvnplus/qgen/internal/generator"
	"github.com/lvnplus/qgen/internal/llm"
	"github.com/lvnplus/qgen/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store     *store.Store
	generator *generator.Generator
	exporter  *exporter.Exporter
	factory   llm.Factory
	jwtSecret []byte
}

// New creates a new Handler.
func New(s *store.Store, g *generator.Generator, e *exporter.Exporter, factory llm.Factory, jwtSecret []byte) *Handler {
	return &Handler{store: s, generator: g, exporter: e, factory: factory, jwtSecret: jwtSecret}
}

// Routes registers all HTTP routes. Template CRUD stays open so the
// authoring UI works before login; everything else requires a bearer token.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/auth/login", h.handleLogin)

	r.Route("/api/prompt-templates", func(r chi.Router) {
		r.Get("/", h.handleListTemplates)
		r.Post("/", h.handleCreateTemplate)
		r.Get("/{id}", h.handleGetTemplate)
		r.Put("/{id}", h.handleUpdateTemplate)
		r.Delete("/{id}", h.handleDeleteTemplate)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Get("/api/master-data/subjects", h.handleListSubjects)
		r.Get("/api/master-data/topics/{subjectID}", h.handleListTopics)
		r.Get("/api/master-data/subtopics/{topicID}", h.handleListSubtopics)
		r.Get("/api/master-data/difficulty-levels/{subjectID}", h.handleListDifficultyLevels)

		r.Get("/api/variable-categories", h.handleListCategories)
		r.Post("/api/variable-categories", h.handleCreateCategory)
		r.Put("/api/variable-categories/{id}", h.handleUpdateCategory)
		r.Delete("/api/variable-categories/{id}", h.handleDeleteCategory)

		r.Get("/api/variable-definitions/{categoryID}", h.handleListVariableDefinitions)
		r.Post("/api/variable-definitions", h.handleCreateVariableDefinition)
		r.Put("/api/variable-definitions/{id}", h.handleUpdateVariableDefinition)
		r.Delete("/api/variable-definitions/{id}", h.handleDeleteVariableDefinition)

		r.Get("/api/template-variables/{templateID}", h.handleGetTemplateVariables)
		r.Put("/api/template-variables/{templateID}", h.handleSetTemplateVariables)

		r.Post("/api/generate", h.handleGenerate)
		r.Get("/api/generate/{batchID}/status", h.handleBatchStatus)

		r.Get("/api/questions", h.handleListQuestions)
		r.Post("/api/questions/{id}/approve", h.handleApproveQuestion)
		r.Put("/api/questions/{id}", h.handleUpdateQuestion)
		r.Delete("/api/questions/{id}", h.handleDeleteQuestion)

		r.Get("/api/dashboard/stats", h.handleDashboardStats)

		r.Post("/api/export", h.handleExport)
		r.Get("/api/export/{id}", h.handleExportStatus)

		r.Get("/api/settings/ai", h.handleListAIConfigs)
		r.Post("/api/settings/ai", h.handleCreateAIConfig)
		r.Put("/api/settings/ai/{id}", h.handleUpdateAIConfig)
		r.Delete("/api/settings/ai/{id}", h.handleDeleteAIConfig)
		r.Post("/api/settings/ai/{id}/test", h.handleTestAIConfig)

		r.Get("/api/settings/providers", h.handleListAIProviders)
		r.Post("/api/settings/providers", h.handleCreateAIProvider)
		r.Put("/api/settings/providers/{id}", h.handleUpdateAIProvider)

		r.Get("/api/settings/models", h.handleListAIModels)
		r.Post("/api/settings/models", h.handleCreateAIModel)
		r.Put("/api/settings/models/{id}", h.handleUpdateAIModel)

		r.Get("/api/tasks", h.handleListTasks)
		r.Post("/api/tasks", h.handleCreateTask)
		r.Get("/api/tasks/{id}", h.handleGetTask)
		r.Delete("/api/tasks/{id}", h.handleDeleteTask)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
