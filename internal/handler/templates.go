package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lvnplus/qgen/internal/model"
	"github.com/lvnplus/qgen/internal/template"
)

// templateResponse augments a template with the placeholder names found in
// its body so the authoring UI can diff declared against used variables.
type templateResponse struct {
	model.Template
	ExtractedVariables []string `json:"extracted_variables"`
}

func toTemplateResponse(t model.Template) templateResponse {
	extracted := template.Extract(t.TemplateText, template.SyntaxPrompt)
	if extracted == nil {
		extracted = []string{}
	}
	return templateResponse{Template: t, ExtractedVariables: extracted}
}

type templateRequest struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	TemplateText   string           `json:"template_text"`
	Variables      []model.Variable `json:"variables"`
	SubjectName    string           `json:"subject_name"`
	TopicName      string           `json:"topic_name"`
	SubtopicName   string           `json:"subtopic_name"`
	QuestionFormat string           `json:"question_format"`
	OptionsFormat  string           `json:"options_format"`
	SolutionFormat string           `json:"solution_format"`
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.ListTemplates()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch templates")
		return
	}
	out := make([]templateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.store.GetTemplate(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch template")
		return
	}
	if tpl == nil {
		respondError(w, http.StatusNotFound, "Template not found")
		return
	}
	respondJSON(w, http.StatusOK, toTemplateResponse(*tpl))
}

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.TemplateText == "" {
		respondError(w, http.StatusBadRequest, "Name and template text are required")
		return
	}

	variables := req.Variables
	if len(variables) == 0 {
		variables = synthesizeVariables(template.Extract(req.TemplateText, template.SyntaxPrompt), 0)
	}
	variables = ensureVariableIDs(variables)

	id, err := h.store.CreateTemplate(model.Template{
		Name:           req.Name,
		Description:    req.Description,
		TemplateText:   req.TemplateText,
		Variables:      variables,
		SubjectName:    req.SubjectName,
		TopicName:      req.TopicName,
		SubtopicName:   req.SubtopicName,
		QuestionFormat: req.QuestionFormat,
		OptionsFormat:  req.OptionsFormat,
		SolutionFormat: req.SolutionFormat,
		CreatedBy:      "system",
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create template")
		return
	}

	tpl, err := h.store.GetTemplate(id)
	if err != nil || tpl == nil {
		respondError(w, http.StatusInternalServerError, "Failed to create template")
		return
	}
	respondJSON(w, http.StatusCreated, toTemplateResponse(*tpl))
}

func (h *Handler) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.store.GetTemplate(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Template not found")
		return
	}

	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	variables := req.Variables
	if len(variables) == 0 {
		// Keep the declared set and append declarations for placeholders
		// that appeared in the new body.
		variables = existing.Variables
		declared := make(map[string]bool, len(variables))
		for _, v := range variables {
			declared[v.Name] = true
		}
		var added []string
		for _, name := range template.Extract(req.TemplateText, template.SyntaxPrompt) {
			if !declared[name] {
				declared[name] = true
				added = append(added, name)
			}
		}
		variables = append(variables, synthesizeVariables(added, len(existing.Variables))...)
	}
	variables = ensureVariableIDs(variables)

	updated := *existing
	updated.Name = req.Name
	updated.Description = req.Description
	updated.TemplateText = req.TemplateText
	updated.Variables = variables
	if req.SubjectName != "" {
		updated.SubjectName = req.SubjectName
	}
	if req.TopicName != "" {
		updated.TopicName = req.TopicName
	}
	if req.SubtopicName != "" {
		updated.SubtopicName = req.SubtopicName
	}
	if req.QuestionFormat != "" {
		updated.QuestionFormat = req.QuestionFormat
	}
	if req.OptionsFormat != "" {
		updated.OptionsFormat = req.OptionsFormat
	}
	if req.SolutionFormat != "" {
		updated.SolutionFormat = req.SolutionFormat
	}

	if err := h.store.UpdateTemplate(updated); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}
	respondJSON(w, http.StatusOK, toTemplateResponse(updated))
}

func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTemplate(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Template deleted successfully"})
}

// synthesizeVariables turns extracted placeholder names into text-typed
// required declarations when the author supplied none.
func synthesizeVariables(names []string, sortOffset int) []model.Variable {
	variables := make([]model.Variable, 0, len(names))
	for i, name := range names {
		variables = append(variables, model.Variable{
			ID:           uuid.NewString(),
			Name:         name,
			DisplayName:  displayName(name),
			Description:  "Variable for " + name,
			VariableType: "text",
			IsRequired:   true,
			SortOrder:    sortOffset + i,
		})
	}
	return variables
}

func ensureVariableIDs(variables []model.Variable) []model.Variable {
	for i := range variables {
		if variables[i].ID == "" {
			variables[i].ID = uuid.NewString()
		}
	}
	return variables
}

func displayName(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.ReplaceAll(name[1:], "_", " ")
}
