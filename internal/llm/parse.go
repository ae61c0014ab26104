package llm

import (
	"fmt"
	"strings"
)

// ParsedQuestion is the structured form of one model response.
type ParsedQuestion struct {
	QuestionText  string
	Options       []string
	CorrectAnswer string
	Solution      string
}

// ParseGeneratedQuestion splits a response into its three blank-line
// separated sections: question text, options, solution. The first option
// line is taken as the correct answer; reviewers fix it up when the model
// orders options differently.
func ParseGeneratedQuestion(response string) (*ParsedQuestion, error) {
	parts := strings.Split(response, "\n\n")
	if len(parts) < 3 {
		return nil, fmt.Errorf("malformed response: expected question, options and solution sections, got %d", len(parts))
	}

	options := strings.Split(parts[1], "\n")
	return &ParsedQuestion{
		QuestionText:  parts[0],
		Options:       options,
		CorrectAnswer: options[0],
		Solution:      parts[2],
	}, nil
}
