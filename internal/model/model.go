package model

import (
	"context"
	"time"
)

// User represents an operator account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type userCtxKey struct{}

// AuthUser identifies the authenticated caller on a request context.
type AuthUser struct {
	UserID string
	Email  string
}

// ContextWithUser stores the authenticated user in the request context.
func ContextWithUser(ctx context.Context, u AuthUser) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context.
// The zero value means the request was unauthenticated.
func UserFromContext(ctx context.Context) AuthUser {
	u, _ := ctx.Value(userCtxKey{}).(AuthUser)
	return u
}

// Variable is a declared placeholder on a prompt template. Declarations are
// stored as a JSON array on the template row.
type Variable struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DisplayName     string `json:"display_name"`
	Description     string `json:"description,omitempty"`
	VariableType    string `json:"variable_type_id"`
	DefaultValue    string `json:"default_value,omitempty"`
	ValidationRules string `json:"validation_rules,omitempty"`
	Options         string `json:"options,omitempty"`
	IsRequired      bool   `json:"is_required"`
	SortOrder       int    `json:"sort_order"`
}

// Template is an operator-authored prompt template. The subject/topic/subtopic
// names and the three format strings feed the generation prompt builder.
type Template struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	TemplateText   string     `json:"template_text"`
	Variables      []Variable `json:"variables"`
	SubjectName    string     `json:"subject_name"`
	TopicName      string     `json:"topic_name"`
	SubtopicName   string     `json:"subtopic_name"`
	QuestionFormat string     `json:"question_format"`
	OptionsFormat  string     `json:"options_format"`
	SolutionFormat string     `json:"solution_format"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
}

// VariableCategory groups reusable variable definitions.
type VariableCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sort_order"`
	CreatedBy   string `json:"created_by"`
}

// VariableDefinition is a reusable variable in the taxonomy.
type VariableDefinition struct {
	ID              string `json:"id"`
	CategoryID      string `json:"category_id"`
	Name            string `json:"name"`
	DisplayName     string `json:"display_name"`
	Description     string `json:"description,omitempty"`
	Placeholder     string `json:"placeholder,omitempty"`
	VariableType    string `json:"variable_type_id"`
	DefaultValue    string `json:"default_value,omitempty"`
	ValidationRules string `json:"validation_rules,omitempty"`
	Options         string `json:"options,omitempty"`
	IsRequired      bool   `json:"is_required"`
	SortOrder       int    `json:"sort_order"`
	CreatedBy       string `json:"created_by"`
}

// TemplateVariableUsage associates a variable definition with a template.
type TemplateVariableUsage struct {
	TemplateID string `json:"template_id"`
	VariableID string `json:"variable_id"`
	SortOrder  int    `json:"sort_order"`
}

// BatchStatus is the lifecycle state of a generation batch.
type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchCompleted BatchStatus = "completed"
	BatchFailed    BatchStatus = "failed"
)

// GenerationBatch is one request to generate up to Count questions.
// Progress is never stored; it is recomputed by counting child rows.
type GenerationBatch struct {
	ID              string      `json:"id"`
	TemplateID      string      `json:"template_id"`
	Count           int         `json:"count"`
	DifficultyLevel int         `json:"difficulty_level"`
	AITemperature   float64     `json:"ai_temperature"`
	AIModel         string      `json:"ai_model"`
	Status          BatchStatus `json:"status"`
	ErrorMessage    string      `json:"error_message,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
}

// QuestionStatus is the review state of a generated question.
type QuestionStatus string

const (
	QuestionPending  QuestionStatus = "pending"
	QuestionApproved QuestionStatus = "approved"
)

// Export states for a generated question. Empty means never exported.
const (
	ExportStatusNone     = ""
	ExportStatusExported = "exported"
	ExportStatusFailed   = "failed"
)

// GeneratedQuestion is one parsed LLM response inside a batch. Options are
// stored JSON-encoded, matching the wire format the review UI expects.
type GeneratedQuestion struct {
	ID                 string         `json:"id"`
	BatchID            string         `json:"batch_id"`
	SubjectName        string         `json:"subject_name"`
	TopicName          string         `json:"topic_name"`
	SubtopicName       string         `json:"subtopic_name"`
	QuestionText       string         `json:"question_text"`
	QuestionTextPlain  string         `json:"question_text_plain"`
	Options            string         `json:"options"`
	OptionsPlain       string         `json:"options_plain"`
	CorrectAnswer      string         `json:"correct_answer"`
	CorrectAnswerPlain string         `json:"correct_answer_plain"`
	Solution           string         `json:"solution"`
	SolutionPlain      string         `json:"solution_plain"`
	DifficultyLevel    int            `json:"difficulty_level"`
	Status             QuestionStatus `json:"status"`
	ExportStatus       string         `json:"export_status,omitempty"`
	CreatedBy          string         `json:"created_by"`
	CreatedAt          time.Time      `json:"created_at"`
}

// QuestionUpdate carries the wholesale field overwrite for a reviewer edit.
type QuestionUpdate struct {
	QuestionText       string `json:"question_text"`
	QuestionTextPlain  string `json:"question_text_plain"`
	Options            string `json:"options"`
	OptionsPlain       string `json:"options_plain"`
	CorrectAnswer      string `json:"correct_answer"`
	CorrectAnswerPlain string `json:"correct_answer_plain"`
	Solution           string `json:"solution"`
	SolutionPlain      string `json:"solution_plain"`
}

// ExportLogStatus is the lifecycle state of an export log entry.
type ExportLogStatus string

const (
	ExportPending   ExportLogStatus = "pending"
	ExportCompleted ExportLogStatus = "completed"
	ExportFailed    ExportLogStatus = "failed"
)

// ExportLog is the durable record of one bulk-export operation.
type ExportLog struct {
	ID           string          `json:"id"`
	BatchID      string          `json:"batch_id,omitempty"`
	QuestionIDs  string          `json:"question_ids"`
	Status       ExportLogStatus `json:"status"`
	ExportTime   *time.Time      `json:"export_time,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// AIConfig binds a provider, model and credentials. At most one config is
// the default used by the batch generator.
type AIConfig struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Provider    string    `json:"provider"`
	ModelName   string    `json:"model_name"`
	APIKey      string    `json:"api_key"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}

// AIProvider is a configurable LLM vendor.
type AIProvider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	APIBaseURL  string `json:"api_base_url,omitempty"`
	Active      bool   `json:"active"`
}

// AIModel is a model offered by a provider.
type AIModel struct {
	ID                string `json:"id"`
	ProviderID        string `json:"provider_id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	MaxTokens         int    `json:"max_tokens"`
	SupportsFunctions bool   `json:"supports_functions"`
	SupportsVision    bool   `json:"supports_vision"`
	Active            bool   `json:"active"`
}

// TaskStatus is the lifecycle state of an ad-hoc prompt task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Task is a single-prompt execution against a template.
type Task struct {
	ID             string     `json:"id"`
	TemplateID     string     `json:"template_id"`
	VariableValues string     `json:"variable_values"`
	Status         TaskStatus `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Master data mirrored from the LVNPLUS source database.

type Subject struct {
	SubjectID   int    `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Description string `json:"description,omitempty"`
}

type Topic struct {
	TopicID     int    `json:"topic_id"`
	SubjectID   int    `json:"subject_id"`
	TopicName   string `json:"topic_name"`
	Description string `json:"description,omitempty"`
}

type Subtopic struct {
	SubtopicID   int    `json:"subtopic_id"`
	TopicID      int    `json:"topic_id"`
	SubtopicName string `json:"subtopic_name"`
	Description  string `json:"description,omitempty"`
}

type DifficultyLevel struct {
	LevelID         int    `json:"level_id"`
	LevelName       string `json:"level_name"`
	LevelValue      int    `json:"level_value"`
	SubjectID       int    `json:"subject_id"`
	Purpose         string `json:"purpose,omitempty"`
	Characteristics string `json:"characteristics,omitempty"`
	FocusArea       string `json:"focus_area,omitempty"`
	StepsRequired   string `json:"steps_required,omitempty"`
	Active          bool   `json:"active"`
}

// DashboardStats aggregates review-queue counts. FailedQuestions counts
// failed batches, not questions; the admin UI labels it that way.
type DashboardStats struct {
	TotalQuestions    int `json:"totalQuestions"`
	ApprovedQuestions int `json:"approvedQuestions"`
	PendingQuestions  int `json:"pendingQuestions"`
	FailedQuestions   int `json:"failedQuestions"`
}

// BatchProgress is the polling payload for a running batch.
type BatchProgress struct {
	Status       BatchStatus `json:"status"`
	Progress     int         `json:"progress"`
	Total        int         `json:"total"`
	ErrorMessage string      `json:"error_message,omitempty"`
}
