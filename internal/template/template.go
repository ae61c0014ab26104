// Package template implements placeholder extraction, validation and preview
// rendering for prompt templates. All functions are pure; persistence and
// HTTP concerns live elsewhere.
package template

import (
	"regexp"
	"strings"

	"github.com/lvnplus/qgen/internal/model"
)

// Syntax selects a placeholder dialect. The authoring flow and the prompt
// rendering flow use different brace conventions; they are intentionally kept
// apart rather than merged into one pattern.
type Syntax int

const (
	// SyntaxAuthoring matches {{name}} placeholders. Names are trimmed of
	// surrounding whitespace.
	SyntaxAuthoring Syntax = iota
	// SyntaxPrompt matches {name} placeholders. Names are taken verbatim.
	SyntaxPrompt
)

var (
	authoringRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	promptRe    = regexp.MustCompile(`\{([^{}]+)\}`)
)

// Extract returns the placeholder names present in text, in first-occurrence
// order with duplicates preserved. Matching is case-sensitive.
func Extract(text string, syntax Syntax) []string {
	re := promptRe
	trim := false
	if syntax == SyntaxAuthoring {
		re = authoringRe
		trim = true
	}

	var names []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if trim {
			name = strings.TrimSpace(name)
		}
		names = append(names, name)
	}
	return names
}

// ValidationResult reports the outcome of validating a template against its
// declared variables.
type ValidationResult struct {
	IsValid          bool     `json:"isValid"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	MissingVariables []string `json:"missingVariables"`
}

// Validate checks a template's structure. Errors cover empty name or body.
// Placeholders used in the body but not declared are reported through
// MissingVariables, not Errors; the authoring save gate must check both.
// Declared variables never referenced in the body only warn.
func Validate(tpl model.Template) ValidationResult {
	result := ValidationResult{
		Errors:           []string{},
		Warnings:         []string{},
		MissingVariables: []string{},
	}

	if tpl.Name == "" {
		result.Errors = append(result.Errors, "Template name is required")
	}
	if tpl.TemplateText == "" {
		result.Errors = append(result.Errors, "Template content is required")
	}

	used := Extract(tpl.TemplateText, SyntaxAuthoring)

	declared := make(map[string]bool, len(tpl.Variables))
	for _, v := range tpl.Variables {
		declared[v.Name] = true
	}

	seen := make(map[string]bool, len(used))
	for _, name := range used {
		seen[name] = true
		if !declared[name] {
			result.MissingVariables = append(result.MissingVariables, name)
		}
	}

	for _, v := range tpl.Variables {
		if !seen[v.Name] {
			result.Warnings = append(result.Warnings, `Variable "`+v.Name+`" is defined but not used in template`)
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// PreviewResult holds a rendered template body and the declared variables
// that had no value at render time.
type PreviewResult struct {
	RenderedContent  string   `json:"renderedContent"`
	MissingVariables []string `json:"missingVariables"`
	IsValid          bool     `json:"isValid"`
}

// Preview substitutes values into the template body using the authoring
// dialect. A declared variable with no value (or an empty string) is recorded
// as missing and every occurrence of its placeholder is replaced with the
// empty string. Substitution is global, textual and non-recursive: a value is
// never re-scanned for placeholders.
func Preview(tpl model.Template, values map[string]string) PreviewResult {
	rendered := tpl.TemplateText
	missing := []string{}

	for _, v := range tpl.Variables {
		placeholder := "{{" + v.Name + "}}"
		value, ok := values[v.Name]
		if !ok || value == "" {
			missing = append(missing, v.Name)
			rendered = strings.ReplaceAll(rendered, placeholder, "")
			continue
		}
		rendered = strings.ReplaceAll(rendered, placeholder, value)
	}

	return PreviewResult{
		RenderedContent:  rendered,
		MissingVariables: missing,
		IsValid:          len(missing) == 0,
	}
}

// RenderPrompt substitutes values into text using the prompt dialect.
// Every {key} occurrence is replaced for each provided key; keys with no
// placeholder in text are ignored. Used by the task execution path.
func RenderPrompt(text string, values map[string]string) string {
	for key, value := range values {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}
	return text
}
