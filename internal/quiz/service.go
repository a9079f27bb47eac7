package quiz

import (
	"context"

	"github.com/abhisek/quizforge/internal/logging"
)

// Service is the entry point for quiz creation and grading.
type Service struct {
	gen    *Generator
	grader *Grader
}

// NewService builds a Service whose pipelines share one completion client.
func NewService(client CompletionClient, cfg GeneratorConfig, log *logging.Logger) *Service {
	return &Service{
		gen:    NewGenerator(client, cfg, log.With("pipeline", "generate")),
		grader: NewGrader(client, log.With("pipeline", "grade")),
	}
}

// CreateQuiz generates a question set. See Generator.Generate.
func (s *Service) CreateQuiz(ctx context.Context, in GenerateInput) ([]Question, error) {
	return s.gen.Generate(ctx, in)
}

// AnswerQuiz grades submitted answers. See Grader.Grade.
func (s *Service) AnswerQuiz(ctx context.Context, answers []SubmittedAnswer) ([]GradedAnswer, error) {
	return s.grader.Grade(ctx, answers)
}
