package quiz

import (
	"fmt"
	"strings"
)

// Category is one of the supported question kinds.
type Category string

const (
	MultiChoice Category = "multi-choice"
	FillGaps    Category = "fill-gaps"
	ShortAnswer Category = "short-answer"
)

// Categories lists every category in the fixed order used for grading.
var Categories = []Category{MultiChoice, FillGaps, ShortAnswer}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case MultiChoice, FillGaps, ShortAnswer:
		return true
	}
	return false
}

// ParseCategories converts raw names into categories, rejecting unknown ones.
func ParseCategories(names []string) ([]Category, error) {
	out := make([]Category, 0, len(names))
	for _, n := range names {
		c := Category(strings.TrimSpace(n))
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown question type %q", ErrInvalidArgument, n)
		}
		out = append(out, c)
	}
	return out, nil
}

// Question is the canonical question record returned to callers.
type Question struct {
	ID            int      `json:"question_id"`
	Text          string   `json:"question"`
	Category      Category `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// SubmittedAnswer is one learner answer joined with its stored question.
type SubmittedAnswer struct {
	QuestionID    int      `json:"question_id"`
	QuestionText  string   `json:"question"`
	Category      Category `json:"type"`
	UserAnswer    string   `json:"user_answer"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options,omitempty"`
}

// GradedAnswer is the verdict for one submitted answer.
type GradedAnswer struct {
	QuestionID    int    `json:"question_id"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Feedback      string `json:"feedback"`
}

// GenerateInput describes a quiz to generate.
type GenerateInput struct {
	Total        int
	Categories   []Category
	Topic        string
	TextContent  string
	FileContents []string
}

// Allocation is the number of questions requested from one category.
type Allocation struct {
	Category Category
	Count    int
}
