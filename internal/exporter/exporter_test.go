package exporter

import (
	"testing"

	"github.com/lvnplus/qgen/internal/jobs"
	"github.com/lvnplus/qgen/internal/model"
	"github.com/lvnplus/qgen/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertQuestion(t *testing.T, s *store.Store, batchID string) string {
	t.Helper()
	id, err := s.CreateQuestion(model.GeneratedQuestion{
		BatchID: batchID, QuestionText: "q", Options: "[]", Status: model.QuestionApproved,
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	return id
}

func TestExport(t *testing.T) {
	s := newTestStore(t)
	tplID, err := s.CreateTemplate(model.Template{Name: "T", TemplateText: "x"})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	batchID, err := s.CreateBatch(model.GenerationBatch{TemplateID: tplID, Count: 2})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	q1 := insertQuestion(t, s, batchID)
	q2 := insertQuestion(t, s, batchID)
	q3 := insertQuestion(t, s, batchID)

	pool := jobs.NewPool(1, 4)
	e := New(s, pool)

	exportID, err := e.Start([]string{q1, q2}, batchID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	pool.Close()

	log, err := e.Status(exportID)
	if err != nil || log == nil {
		t.Fatalf("Status: %v / %v", log, err)
	}
	if log.Status != model.ExportCompleted {
		t.Errorf("expected completed, got %q (%s)", log.Status, log.ErrorMessage)
	}
	if log.ExportTime == nil {
		t.Error("expected export_time set")
	}
	if log.BatchID != batchID {
		t.Errorf("batch id = %q", log.BatchID)
	}

	for _, id := range []string{q1, q2} {
		q, _ := s.GetQuestion(id)
		if q.ExportStatus != model.ExportStatusExported {
			t.Errorf("question %s export_status = %q", id, q.ExportStatus)
		}
	}
	q, _ := s.GetQuestion(q3)
	if q.ExportStatus != model.ExportStatusNone {
		t.Errorf("unselected question was exported: %q", q.ExportStatus)
	}
}

func TestExportWithoutBatch(t *testing.T) {
	s := newTestStore(t)
	q1 := insertQuestion(t, s, "b-1")

	pool := jobs.NewPool(1, 4)
	e := New(s, pool)

	exportID, err := e.Start([]string{q1}, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	pool.Close()

	log, _ := e.Status(exportID)
	if log.Status != model.ExportCompleted {
		t.Errorf("expected completed, got %q", log.Status)
	}
	if log.BatchID != "" {
		t.Errorf("expected empty batch id, got %q", log.BatchID)
	}
}

func TestExportBadQuestionIDs(t *testing.T) {
	s := newTestStore(t)

	// A log whose question_ids payload is not valid JSON fails during
	// processing and records the parse error.
	exportID, err := s.CreateExportLog(model.ExportLog{QuestionIDs: "not json"})
	if err != nil {
		t.Fatalf("CreateExportLog: %v", err)
	}

	e := New(s, nil)
	e.run(exportID)

	log, _ := e.Status(exportID)
	if log.Status != model.ExportFailed {
		t.Errorf("expected failed, got %q", log.Status)
	}
	if log.ErrorMessage == "" {
		t.Error("expected error message recorded")
	}
}

func TestStatusUnknown(t *testing.T) {
	s := newTestStore(t)
	e := New(s, nil)

	log, err := e.Status("nope")
	if err != nil || log != nil {
		t.Errorf("expected nil for unknown export, got %v / %v", log, err)
	}
}
