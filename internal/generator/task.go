package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lvnplus/qgen/internal/llm"
	"github.com/lvnplus/qgen/internal/model"
	"github.com/lvnplus/qgen/internal/template"
)

const taskSystemPrompt = "You are an educational content generator."

// katexStyles are the accepted values for the optional katex_style variable.
var katexStyles = map[string]bool{"minimal": true, "standard": true, "detailed": true}

// ValidateTaskVariables checks the variable payload for an ad-hoc task.
// topic, subtopic and total_questions are required; total_questions must be
// numeric. difficulty_distribution and katex_style are optional but typed.
func ValidateTaskVariables(values map[string]any) error {
	var missing []string
	for _, name := range []string{"topic", "subtopic", "total_questions"} {
		if !present(values[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return ValidationError("Missing required variables: " + strings.Join(missing, ", "))
	}

	if _, ok := values["total_questions"].(float64); !ok {
		return ValidationError("total_questions must be a number")
	}

	if dd, ok := values["difficulty_distribution"]; ok && present(dd) {
		if _, isObj := dd.(map[string]any); !isObj {
			return ValidationError("difficulty_distribution must be an object")
		}
	}

	if ks, ok := values["katex_style"]; ok && present(ks) {
		s, isStr := ks.(string)
		if !isStr || !katexStyles[s] {
			return ValidationError("katex_style must be one of: minimal, standard, detailed")
		}
	}

	return nil
}

// present treats absent, nil, empty string, false and zero as missing.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	}
	return true
}

// StartTask validates and records a single-prompt task, then schedules it.
func (g *Generator) StartTask(templateID, variableValues string) (*model.Task, error) {
	tpl, err := g.store.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, ErrTemplateNotFound
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(variableValues), &values); err != nil {
		return nil, ValidationError("variable_values must be a JSON object")
	}
	if err := ValidateTaskVariables(values); err != nil {
		return nil, err
	}

	taskID, err := g.store.CreateTask(model.Task{
		TemplateID:     templateID,
		VariableValues: variableValues,
	})
	if err != nil {
		return nil, err
	}

	if err := g.pool.Submit(func(ctx context.Context) {
		g.runTask(ctx, taskID)
	}); err != nil {
		return nil, err
	}

	return g.store.GetTask(taskID)
}

// runTask renders the template prompt and sends it once. The response is
// logged, not stored; the durable outcome is the task status.
func (g *Generator) runTask(ctx context.Context, taskID string) {
	task, err := g.store.GetTask(taskID)
	if err != nil || task == nil {
		slog.Error("task lookup failed", "task_id", taskID, "error", err)
		return
	}

	if err := g.store.SetTaskProcessing(taskID); err != nil {
		slog.Error("marking task processing failed", "task_id", taskID, "error", err)
		return
	}

	if err := g.executeTask(ctx, task); err != nil {
		slog.Error("task failed", "task_id", taskID, "error", err)
		if ferr := g.store.FailTask(taskID, err.Error()); ferr != nil {
			slog.Error("recording task failure failed", "task_id", taskID, "error", ferr)
		}
		return
	}

	if err := g.store.CompleteTask(taskID); err != nil {
		slog.Error("completing task failed", "task_id", taskID, "error", err)
	}
}

func (g *Generator) executeTask(ctx context.Context, task *model.Task) error {
	tpl, err := g.store.GetTemplate(task.TemplateID)
	if err != nil {
		return err
	}
	if tpl == nil {
		return ErrTemplateNotFound
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(task.VariableValues), &values); err != nil {
		return fmt.Errorf("parse variable values: %w", err)
	}
	stringValues := make(map[string]string, len(values))
	for k, v := range values {
		stringValues[k] = fmt.Sprint(v)
	}

	prompt := template.RenderPrompt(tpl.TemplateText, stringValues)

	cfg, err := g.store.GetDefaultAIConfig()
	if err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("no AI configuration found")
	}

	client := g.factory(*cfg)
	response, err := client.Complete(ctx, llm.Request{
		Model:        cfg.ModelName,
		Temperature:  defaultTemperature,
		MaxTokens:    cfg.MaxTokens,
		SystemPrompt: taskSystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		return err
	}

	slog.Info("task completed", "task_id", task.ID, "response", response)
	return nil
}
