// Package generator runs asynchronous LLM question generation batches.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/lvnplus/qgen/internal/jobs"
	"github.com/lvnplus/qgen/internal/llm"
	"github.com/lvnplus/qgen/internal/model"
	"github.com/lvnplus/qgen/internal/store"
)

// ErrTemplateNotFound is returned when a start request names an unknown template.
var ErrTemplateNotFound = errors.New("template not found")

// ValidationError reports invalid caller input.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// defaultTemperature is used when a batch carries no explicit temperature.
const defaultTemperature = 0.7

// Generator persists batch state and runs the generation loop on the job pool.
type Generator struct {
	store   *store.Store
	pool    *jobs.Pool
	factory llm.Factory
}

func New(st *store.Store, pool *jobs.Pool, factory llm.Factory) *Generator {
	return &Generator{store: st, pool: pool, factory: factory}
}

// StartRequest is the payload for starting a batch.
type StartRequest struct {
	TemplateID      string  `json:"templateId"`
	Count           int     `json:"count"`
	DifficultyLevel int     `json:"difficultyLevel"`
	Temperature     float64 `json:"temperature"`
}

func (r StartRequest) validate() error {
	if r.TemplateID == "" {
		return ValidationError("templateId is required")
	}
	if r.Count < 1 || r.Count > 50 {
		return ValidationError("count must be between 1 and 50")
	}
	if r.DifficultyLevel < 0 || r.DifficultyLevel > 5 {
		return ValidationError("difficultyLevel must be between 0 and 5")
	}
	if r.Temperature < 0 || r.Temperature > 1 {
		return ValidationError("temperature must be between 0 and 1")
	}
	return nil
}

// Start validates the request, records a pending batch and schedules the
// generation loop. It returns the batch id immediately; callers poll Status.
func (g *Generator) Start(req StartRequest, userID string) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	tpl, err := g.store.GetTemplate(req.TemplateID)
	if err != nil {
		return "", err
	}
	if tpl == nil {
		return "", ErrTemplateNotFound
	}

	// The default config's model is pinned on the batch at creation so a
	// later config change does not alter an in-flight batch.
	var modelName string
	if cfg, err := g.store.GetDefaultAIConfig(); err != nil {
		return "", err
	} else if cfg != nil {
		modelName = cfg.ModelName
	}

	batchID, err := g.store.CreateBatch(model.GenerationBatch{
		TemplateID:      req.TemplateID,
		Count:           req.Count,
		DifficultyLevel: req.DifficultyLevel,
		AITemperature:   req.Temperature,
		AIModel:         modelName,
	})
	if err != nil {
		return "", err
	}

	tplCopy := *tpl
	if err := g.pool.Submit(func(ctx context.Context) {
		g.run(ctx, batchID, tplCopy, userID)
	}); err != nil {
		return "", err
	}

	return batchID, nil
}

// run generates up to batch.Count questions. Per-item failures are logged
// and skipped; the batch completes as long as the loop itself survives.
func (g *Generator) run(ctx context.Context, batchID string, tpl model.Template, userID string) {
	cfg, err := g.store.GetDefaultAIConfig()
	if err != nil {
		g.fail(batchID, err.Error())
		return
	}
	if cfg == nil {
		g.fail(batchID, "no AI configuration found")
		return
	}

	batch, err := g.store.GetBatch(batchID)
	if err != nil || batch == nil {
		g.fail(batchID, "batch not found")
		return
	}

	client := g.factory(*cfg)
	systemPrompt := llm.BuildSystemPrompt(tpl)
	userPrompt := llm.BuildUserPrompt(tpl, batch.DifficultyLevel)

	temperature := batch.AITemperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	for i := 0; i < batch.Count; i++ {
		response, err := client.Complete(ctx, llm.Request{
			Model:        batch.AIModel,
			Temperature:  temperature,
			MaxTokens:    cfg.MaxTokens,
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
		})
		if err != nil {
			slog.Warn("question generation failed", "batch_id", batchID, "index", i, "error", err)
			continue
		}
		if response == "" {
			continue
		}

		parsed, err := llm.ParseGeneratedQuestion(response)
		if err != nil {
			slog.Warn("discarding malformed response", "batch_id", batchID, "index", i, "error", err)
			continue
		}

		optionsJSON, err := json.Marshal(parsed.Options)
		if err != nil {
			slog.Warn("encoding options failed", "batch_id", batchID, "index", i, "error", err)
			continue
		}

		if _, err := g.store.CreateQuestion(model.GeneratedQuestion{
			BatchID:            batchID,
			SubjectName:        tpl.SubjectName,
			TopicName:          tpl.TopicName,
			SubtopicName:       tpl.SubtopicName,
			QuestionText:       parsed.QuestionText,
			QuestionTextPlain:  parsed.QuestionText,
			Options:            string(optionsJSON),
			OptionsPlain:       string(optionsJSON),
			CorrectAnswer:      parsed.CorrectAnswer,
			CorrectAnswerPlain: parsed.CorrectAnswer,
			Solution:           parsed.Solution,
			SolutionPlain:      parsed.Solution,
			DifficultyLevel:    batch.DifficultyLevel,
			CreatedBy:          userID,
		}); err != nil {
			slog.Warn("storing question failed", "batch_id", batchID, "index", i, "error", err)
		}
	}

	if err := g.store.CompleteBatch(batchID); err != nil {
		slog.Error("completing batch failed", "batch_id", batchID, "error", err)
	}
}

func (g *Generator) fail(batchID, message string) {
	slog.Error("batch failed", "batch_id", batchID, "error", message)
	if err := g.store.FailBatch(batchID, message); err != nil {
		slog.Error("recording batch failure failed", "batch_id", batchID, "error", err)
	}
}

// Status reports a batch's state with progress recomputed from stored
// questions. A nil result means the batch does not exist.
func (g *Generator) Status(batchID string) (*model.BatchProgress, error) {
	batch, err := g.store.GetBatch(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, nil
	}

	progress, err := g.store.CountBatchQuestions(batchID)
	if err != nil {
		return nil, err
	}

	return &model.BatchProgress{
		Status:       batch.Status,
		Progress:     progress,
		Total:        batch.Count,
		ErrorMessage: batch.ErrorMessage,
	}, nil
}
