package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lvnplus/qgen/internal/exporter"
	"github.com/lvnplus/qgen/internal/generator"
	"github.com/lvnplus/qgen/internal/jobs"
	"github.com/lvnplus/qgen/internal/llm"
	"github.com/lvnplus/qgen/internal/model"
	"github.com/lvnplus/qgen/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.calls++
	return f.response, f.err
}

type testEnv struct {
	store  *store.Store
	pool   *jobs.Pool
	router chi.Router
	client *fakeClient
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	pool := jobs.NewPool(1, 16)
	client := &fakeClient{response: "ok"}
	factory := func(cfg model.AIConfig) llm.Client { return client }

	g := generator.New(s, pool, factory)
	e := exporter.New(s, pool)
	h := New(s, g, e, factory, []byte(testSecret))

	r := chi.NewRouter()
	h.Routes(r)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if _, err := s.CreateUser(model.User{Email: "admin@example.com", PasswordHash: string(hash)}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	env := &testEnv{store: s, pool: pool, router: r, client: client}
	env.token = env.login(t, "admin@example.com", "secret", http.StatusOK)
	return env
}

func (e *testEnv) login(t *testing.T, email, password string, wantStatus int) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, "")
	if rec.Code != wantStatus {
		t.Fatalf("login status = %d, want %d: %s", rec.Code, wantStatus, rec.Body)
	}
	if wantStatus != http.StatusOK {
		return ""
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["token"] == "" {
		t.Fatal("login returned empty token")
	}
	return resp["token"]
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body, err)
	}
}

func (e *testEnv) insertConfig(t *testing.T) {
	t.Helper()
	err := e.store.CreateAIConfig(model.AIConfig{
		ID: "deepseek-deepseek-chat", Name: "DeepSeek", Provider: "deepseek",
		ModelName: "deepseek-chat", APIKey: "k", MaxTokens: 2048, Temperature: 0.7, IsDefault: true,
	})
	if err != nil {
		t.Fatalf("CreateAIConfig: %v", err)
	}
}

func (e *testEnv) createTemplate(t *testing.T, body map[string]any) templateResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/prompt-templates", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create template status = %d: %s", rec.Code, rec.Body)
	}
	var tpl templateResponse
	decodeBody(t, rec, &tpl)
	return tpl
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin@example.com", "wrong", http.StatusUnauthorized)
	env.login(t, "nobody@example.com", "secret", http.StatusUnauthorized)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/dashboard/stats", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/dashboard/stats", nil, "garbage")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/dashboard/stats", nil, env.token)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", rec.Code)
	}
}

func TestTemplateEndpointsUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	// Template CRUD is reachable without a token.
	rec := env.do(t, http.MethodGet, "/api/prompt-templates", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("list templates status = %d, want 200", rec.Code)
	}
}

func TestCreateTemplateSynthesizesVariables(t *testing.T) {
	env := newTestEnv(t)

	tpl := env.createTemplate(t, map[string]any{
		"name":          "Algebra",
		"template_text": "Generate {count} questions about {topic_name}",
	})

	if len(tpl.ExtractedVariables) != 2 || tpl.ExtractedVariables[0] != "count" || tpl.ExtractedVariables[1] != "topic_name" {
		t.Errorf("extracted_variables = %v", tpl.ExtractedVariables)
	}
	if len(tpl.Variables) != 2 {
		t.Fatalf("expected 2 synthesized variables, got %d", len(tpl.Variables))
	}
	v := tpl.Variables[1]
	if v.Name != "topic_name" || v.DisplayName != "Topic name" || v.VariableType != "text" || !v.IsRequired {
		t.Errorf("synthesized variable = %+v", v)
	}
	if v.ID == "" {
		t.Error("synthesized variable missing id")
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/prompt-templates", map[string]any{"name": "x"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateTemplateAddsNewVariables(t *testing.T) {
	env := newTestEnv(t)
	tpl := env.createTemplate(t, map[string]any{
		"name":          "T",
		"template_text": "about {topic}",
	})

	rec := env.do(t, http.MethodPut, "/api/prompt-templates/"+tpl.ID, map[string]any{
		"name":          "T",
		"template_text": "about {topic} at {grade}",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	var updated templateResponse
	decodeBody(t, rec, &updated)

	if len(updated.Variables) != 2 {
		t.Fatalf("expected declared set to grow to 2, got %d", len(updated.Variables))
	}
	if updated.Variables[1].Name != "grade" {
		t.Errorf("appended variable = %+v", updated.Variables[1])
	}
}

func TestTemplateNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/prompt-templates/nope", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get status = %d, want 404", rec.Code)
	}
	rec = env.do(t, http.MethodPut, "/api/prompt-templates/nope", map[string]any{"name": "x", "template_text": "y"}, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("update status = %d, want 404", rec.Code)
	}
}

func TestGenerateFlow(t *testing.T) {
	env := newTestEnv(t)
	env.insertConfig(t)
	env.client.response = "What is 2+2?\n\nA) 4\nB) 3\n\nAdd the numbers."

	tpl := env.createTemplate(t, map[string]any{
		"name":          "Algebra",
		"template_text": "irrelevant",
		"subject_name":  "Maths",
		"topic_name":    "Algebra",
		"subtopic_name": "Linear",
	})

	rec := env.do(t, http.MethodPost, "/api/generate", map[string]any{
		"templateId": tpl.ID, "count": 2, "difficultyLevel": 3, "temperature": 0.5,
	}, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	batchID := resp["batchId"]
	if batchID == "" {
		t.Fatal("empty batchId")
	}

	env.pool.Close()

	rec = env.do(t, http.MethodGet, "/api/generate/"+batchID+"/status", nil, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d: %s", rec.Code, rec.Body)
	}
	var progress model.BatchProgress
	decodeBody(t, rec, &progress)
	if progress.Status != model.BatchCompleted || progress.Progress != 2 || progress.Total != 2 {
		t.Errorf("progress = %+v", progress)
	}

	rec = env.do(t, http.MethodGet, "/api/questions?batchId="+batchID, nil, env.token)
	var questions []model.GeneratedQuestion
	decodeBody(t, rec, &questions)
	if len(questions) != 2 {
		t.Errorf("expected 2 questions, got %d", len(questions))
	}
}

func TestGenerateValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generate", map[string]any{
		"templateId": "t", "count": 0, "difficultyLevel": 3, "temperature": 0.5,
	}, env.token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid count: status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/generate", map[string]any{
		"templateId": "nope", "count": 5, "difficultyLevel": 3, "temperature": 0.5,
	}, env.token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown template: status = %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/generate/nope/status", nil, env.token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown batch: status = %d, want 404", rec.Code)
	}
}

func TestQuestionReviewEndpoints(t *testing.T) {
	env := newTestEnv(t)
	tplID, _ := env.store.CreateTemplate(model.Template{Name: "T", TemplateText: "x"})
	batchID, _ := env.store.CreateBatch(model.GenerationBatch{TemplateID: tplID, Count: 1})
	qID, _ := env.store.CreateQuestion(model.GeneratedQuestion{BatchID: batchID, QuestionText: "q", Options: `["a"]`})

	rec := env.do(t, http.MethodPost, "/api/questions/"+qID+"/approve", nil, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d: %s", rec.Code, rec.Body)
	}
	q, _ := env.store.GetQuestion(qID)
	if q.Status != model.QuestionApproved {
		t.Errorf("status = %q after approve", q.Status)
	}

	rec = env.do(t, http.MethodPost, "/api/questions/nope/approve", nil, env.token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("approve unknown: status = %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/questions/"+qID, model.QuestionUpdate{
		QuestionText: "edited", Options: `["a","b"]`, CorrectAnswer: "a",
	}, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	var updated model.GeneratedQuestion
	decodeBody(t, rec, &updated)
	if updated.QuestionText != "edited" {
		t.Errorf("question_text = %q", updated.QuestionText)
	}

	rec = env.do(t, http.MethodDelete, "/api/questions/"+qID, nil, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	q, _ = env.store.GetQuestion(qID)
	if q != nil {
		t.Error("question still present after delete")
	}
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	tplID, _ := env.store.CreateTemplate(model.Template{Name: "T", TemplateText: "x"})
	batchID, _ := env.store.CreateBatch(model.GenerationBatch{TemplateID: tplID, Count: 1})
	qID, _ := env.store.CreateQuestion(model.GeneratedQuestion{BatchID: batchID, QuestionText: "q", Options: "[]"})
	env.store.CreateQuestion(model.GeneratedQuestion{BatchID: batchID, QuestionText: "q2", Options: "[]"})
	env.store.ApproveQuestion(qID)
	failedID, _ := env.store.CreateBatch(model.GenerationBatch{TemplateID: tplID, Count: 1})
	env.store.FailBatch(failedID, "boom")

	rec := env.do(t, http.MethodGet, "/api/dashboard/stats", nil, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats model.DashboardStats
	decodeBody(t, rec, &stats)
	want := model.DashboardStats{TotalQuestions: 2, ApprovedQuestions: 1, PendingQuestions: 1, FailedQuestions: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestExportEndpoints(t *testing.T) {
	env := newTestEnv(t)
	tplID, _ := env.store.CreateTemplate(model.Template{Name: "T", TemplateText: "x"})
	batchID, _ := env.store.CreateBatch(model.GenerationBatch{TemplateID: tplID, Count: 1})
	qID, _ := env.store.CreateQuestion(model.GeneratedQuestion{BatchID: batchID, QuestionText: "q", Options: "[]"})

	rec := env.do(t, http.MethodPost, "/api/export", map[string]any{
		"questionIds": []string{qID}, "batchId": batchID,
	}, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)

	env.pool.Close()

	rec = env.do(t, http.MethodGet, "/api/export/"+resp["exportId"], nil, env.token)
	var log model.ExportLog
	decodeBody(t, rec, &log)
	if log.Status != model.ExportCompleted {
		t.Errorf("export log status = %q (%s)", log.Status, log.ErrorMessage)
	}

	q, _ := env.store.GetQuestion(qID)
	if q.ExportStatus != model.ExportStatusExported {
		t.Errorf("question export_status = %q", q.ExportStatus)
	}

	rec = env.do(t, http.MethodPost, "/api/export", map[string]any{"questionIds": []string{}}, env.token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty export: status = %d, want 400", rec.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/settings/ai", map[string]any{
		"name": "GPT-4", "provider": "OpenAI", "model_name": "gpt-4",
		"api_key": "k", "max_tokens": 2048, "temperature": 0.7, "is_default": true,
	}, env.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create config status = %d: %s", rec.Code, rec.Body)
	}
	var cfg model.AIConfig
	decodeBody(t, rec, &cfg)
	if cfg.ID != "openai-gpt-4" {
		t.Errorf("config id = %q, want slug openai-gpt-4", cfg.ID)
	}

	rec = env.do(t, http.MethodPost, "/api/settings/providers", map[string]any{
		"name": "Deep Seek", "active": true,
	}, env.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create provider status = %d: %s", rec.Code, rec.Body)
	}
	var p model.AIProvider
	decodeBody(t, rec, &p)
	if p.ID != "deep-seek" {
		t.Errorf("provider id = %q", p.ID)
	}

	rec = env.do(t, http.MethodPost, "/api/settings/models", map[string]any{
		"provider_id": p.ID, "name": "DeepSeek Chat", "max_tokens": 4096, "active": true,
	}, env.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create model status = %d: %s", rec.Code, rec.Body)
	}
	var m model.AIModel
	decodeBody(t, rec, &m)
	if m.ID != "deep-seek-deepseek-chat" {
		t.Errorf("model id = %q", m.ID)
	}

	rec = env.do(t, http.MethodGet, "/api/settings/ai", nil, env.token)
	var configs []model.AIConfig
	decodeBody(t, rec, &configs)
	if len(configs) != 1 {
		t.Errorf("expected 1 config, got %d", len(configs))
	}
}

func TestTestAIConfig(t *testing.T) {
	env := newTestEnv(t)
	env.insertConfig(t)
	env.client.response = "pong"

	rec := env.do(t, http.MethodPost, "/api/settings/ai/deepseek-deepseek-chat/test", map[string]any{
		"prompt": "ping",
	}, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("test status = %d: %s", rec.Code, rec.Body)
	}
	var resp testConfigResponse
	decodeBody(t, rec, &resp)
	if !resp.Success || resp.Response != "pong" {
		t.Errorf("response = %+v", resp)
	}

	rec = env.do(t, http.MethodPost, "/api/settings/ai/nope/test", nil, env.token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown config: status = %d, want 404", rec.Code)
	}
}

func TestTaskEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.insertConfig(t)
	tpl := env.createTemplate(t, map[string]any{"name": "T", "template_text": "about {topic}"})

	rec := env.do(t, http.MethodPost, "/api/tasks", map[string]any{
		"template_id":     tpl.ID,
		"variable_values": `{"topic":"algebra","subtopic":"linear","total_questions":5}`,
	}, env.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task status = %d: %s", rec.Code, rec.Body)
	}
	var task model.Task
	decodeBody(t, rec, &task)

	rec = env.do(t, http.MethodPost, "/api/tasks", map[string]any{
		"template_id":     tpl.ID,
		"variable_values": `{"topic":"algebra"}`,
	}, env.token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid variables: status = %d, want 400", rec.Code)
	}
	var errResp map[string]string
	decodeBody(t, rec, &errResp)
	if errResp["error"] != "Missing required variables: subtopic, total_questions" {
		t.Errorf("error = %q", errResp["error"])
	}

	env.pool.Close()

	rec = env.do(t, http.MethodGet, "/api/tasks/"+task.ID, nil, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get task status = %d", rec.Code)
	}
	decodeBody(t, rec, &task)
	if task.Status != model.TaskCompleted {
		t.Errorf("task status = %q (%s)", task.Status, task.ErrorMessage)
	}

	rec = env.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete task status = %d", rec.Code)
	}
}

func TestMasterDataEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.store.UpsertSubject(model.Subject{SubjectID: 1, SubjectName: "Maths", Description: "m"})
	env.store.UpsertTopic(model.Topic{TopicID: 10, SubjectID: 1, TopicName: "Algebra", Description: "a"})
	env.store.UpsertSubtopic(model.Subtopic{SubtopicID: 100, TopicID: 10, SubtopicName: "Linear", Description: "l"})
	env.store.UpsertDifficultyLevel(model.DifficultyLevel{LevelID: 1, LevelName: "Easy", LevelValue: 1, SubjectID: 1, Active: true})

	rec := env.do(t, http.MethodGet, "/api/master-data/subjects", nil, env.token)
	var subjects []model.Subject
	decodeBody(t, rec, &subjects)
	if len(subjects) != 1 {
		t.Errorf("subjects = %+v", subjects)
	}

	rec = env.do(t, http.MethodGet, "/api/master-data/topics/1", nil, env.token)
	var topics []model.Topic
	decodeBody(t, rec, &topics)
	if len(topics) != 1 {
		t.Errorf("topics = %+v", topics)
	}

	rec = env.do(t, http.MethodGet, "/api/master-data/subtopics/10", nil, env.token)
	var subtopics []model.Subtopic
	decodeBody(t, rec, &subtopics)
	if len(subtopics) != 1 {
		t.Errorf("subtopics = %+v", subtopics)
	}

	rec = env.do(t, http.MethodGet, "/api/master-data/difficulty-levels/1", nil, env.token)
	var levels []model.DifficultyLevel
	decodeBody(t, rec, &levels)
	if len(levels) != 1 {
		t.Errorf("levels = %+v", levels)
	}

	rec = env.do(t, http.MethodGet, "/api/master-data/topics/x", nil, env.token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad subject id: status = %d, want 400", rec.Code)
	}
}

func TestVariableTaxonomyEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/variable-categories", map[string]any{
		"name": "Curriculum", "icon": "book", "color": "#336699",
	}, env.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category status = %d: %s", rec.Code, rec.Body)
	}
	var cat model.VariableCategory
	decodeBody(t, rec, &cat)
	if cat.CreatedBy == "" {
		t.Error("created_by not filled from token")
	}

	rec = env.do(t, http.MethodPost, "/api/variable-definitions", map[string]any{
		"category_id": cat.ID, "name": "topic", "display_name": "Topic", "variable_type_id": "text",
	}, env.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create definition status = %d: %s", rec.Code, rec.Body)
	}
	var def model.VariableDefinition
	decodeBody(t, rec, &def)

	tpl := env.createTemplate(t, map[string]any{"name": "T", "template_text": "x"})
	rec = env.do(t, http.MethodPut, "/api/template-variables/"+tpl.ID, map[string]any{
		"variable_ids": []string{def.ID},
	}, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("set template variables status = %d: %s", rec.Code, rec.Body)
	}
	var usage []model.TemplateVariableUsage
	decodeBody(t, rec, &usage)
	if len(usage) != 1 || usage[0].VariableID != def.ID {
		t.Errorf("usage = %+v", usage)
	}

	rec = env.do(t, http.MethodGet, "/api/variable-definitions/"+cat.ID, nil, env.token)
	var defs []model.VariableDefinition
	decodeBody(t, rec, &defs)
	if len(defs) != 1 {
		t.Errorf("definitions = %+v", defs)
	}
}
