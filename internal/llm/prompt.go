package llm

import (
	"fmt"
	"strings"

	"github.com/lvnplus/qgen/internal/model"
)

// BuildSystemPrompt instructs the model to produce a question, its options
// and a solution in the template's declared formats.
func BuildSystemPrompt(tpl model.Template) string {
	var sb strings.Builder
	sb.WriteString("You are a question generator for " + tpl.SubjectName + ".\n")
	sb.WriteString("Generate a question following this format:\n")
	sb.WriteString(tpl.QuestionFormat + "\n\n")
	sb.WriteString("The options should follow this format:\n")
	sb.WriteString(tpl.OptionsFormat + "\n\n")
	sb.WriteString("The solution should follow this format:\n")
	sb.WriteString(tpl.SolutionFormat + "\n\n")
	sb.WriteString("Separate the question, the options, and the solution with a blank line.\n")
	return sb.String()
}

// BuildUserPrompt asks for one question on the template's topic at the
// batch difficulty. Difficulty is on a 0 to 5 scale.
func BuildUserPrompt(tpl model.Template, difficulty int) string {
	return fmt.Sprintf("Generate a %s question about %s, specifically about %s, at difficulty level %d/5.",
		tpl.SubjectName, tpl.TopicName, tpl.SubtopicName, difficulty)
}
