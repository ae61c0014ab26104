// Package exporter marks reviewed questions as exported to the downstream
// question bank and keeps a durable log of each export run.
package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lvnplus/qgen/internal/jobs"
	"github.com/lvnplus/qgen/internal/model"
	"github.com/lvnplus/qgen/internal/store"
)

// Exporter records export logs and applies the status flip on the job pool.
type Exporter struct {
	store *store.Store
	pool  *jobs.Pool
}

func New(st *store.Store, pool *jobs.Pool) *Exporter {
	return &Exporter{store: st, pool: pool}
}

// Start records a pending export log for the given questions and schedules
// the export. The returned id is used to poll the log.
func (e *Exporter) Start(questionIDs []string, batchID string) (string, error) {
	ids, err := json.Marshal(questionIDs)
	if err != nil {
		return "", err
	}

	exportID, err := e.store.CreateExportLog(model.ExportLog{
		BatchID:     batchID,
		QuestionIDs: string(ids),
	})
	if err != nil {
		return "", err
	}

	if err := e.pool.Submit(func(ctx context.Context) {
		e.run(exportID)
	}); err != nil {
		return "", err
	}

	return exportID, nil
}

// run flips the questions to exported, then closes the log. A failure after
// the question update leaves the questions marked; the log records the error
// and reviewers re-export to reconcile.
func (e *Exporter) run(exportID string) {
	if err := e.process(exportID); err != nil {
		slog.Error("export failed", "export_id", exportID, "error", err)
		if ferr := e.store.FailExportLog(exportID, err.Error()); ferr != nil {
			slog.Error("recording export failure failed", "export_id", exportID, "error", ferr)
		}
	}
}

func (e *Exporter) process(exportID string) error {
	log, err := e.store.GetExportLog(exportID)
	if err != nil {
		return err
	}
	if log == nil {
		return fmt.Errorf("export log not found")
	}

	var questionIDs []string
	if err := json.Unmarshal([]byte(log.QuestionIDs), &questionIDs); err != nil {
		return fmt.Errorf("parse question ids: %w", err)
	}

	if err := e.store.MarkQuestionsExported(questionIDs); err != nil {
		return err
	}

	return e.store.CompleteExportLog(exportID)
}

// Status returns the export log, or nil when it does not exist.
func (e *Exporter) Status(exportID string) (*model.ExportLog, error) {
	return e.store.GetExportLog(exportID)
}
