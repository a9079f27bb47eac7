package quiz

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/logging"
)

// Grader produces verdicts and feedback for submitted answers.
type Grader struct {
	client CompletionClient
	log    *logging.Logger
}

// NewGrader wires a Grader to a completion client.
func NewGrader(client CompletionClient, log *logging.Logger) *Grader {
	return &Grader{client: client, log: log}
}

// Grade returns one GradedAnswer per submitted answer, ordered by question
// id. Multi-choice and fill-gaps answers are judged locally by exact match
// and only sent out for feedback when wrong. Short answers are judged by
// the completion service.
func (g *Grader) Grade(ctx context.Context, answers []SubmittedAnswer) ([]GradedAnswer, error) {
	if err := validateAnswers(answers); err != nil {
		return nil, err
	}

	groups := make([][]SubmittedAnswer, len(Categories))
	for _, a := range answers {
		i := slices.Index(Categories, a.Category)
		groups[i] = append(groups[i], a)
	}

	start := time.Now()
	slots := make([][]GradedAnswer, len(Categories))
	errs := make([]error, len(Categories))

	var eg errgroup.Group
	for i, group := range groups {
		if len(group) == 0 {
			continue
		}
		c := Categories[i]
		eg.Go(func() error {
			var graded []GradedAnswer
			var err error
			if c == ShortAnswer {
				graded, err = g.gradeOpen(ctx, group)
			} else {
				graded, err = g.gradeExact(ctx, c, group)
			}
			if err != nil {
				errs[i] = err
				return err
			}
			slots[i] = graded
			return nil
		})
	}
	_ = eg.Wait()

	for i, err := range errs {
		if err != nil {
			g.log.Error("grading group failed", "category", Categories[i], "error", err)
			return nil, &GradingError{Category: Categories[i], Err: err}
		}
	}

	out := make([]GradedAnswer, 0, len(answers))
	for _, s := range slots {
		out = append(out, s...)
	}
	slices.SortFunc(out, func(a, b GradedAnswer) int { return cmp.Compare(a.QuestionID, b.QuestionID) })

	g.log.Info("answers graded",
		"answers", len(out), "correct", Score(out), "duration_ms", time.Since(start).Milliseconds())
	return out, nil
}

func validateAnswers(answers []SubmittedAnswer) error {
	if len(answers) == 0 {
		return fmt.Errorf("%w: no answers submitted", ErrInvalidArgument)
	}
	seen := make(map[int]bool, len(answers))
	for _, a := range answers {
		if !a.Category.Valid() {
			return fmt.Errorf("%w: question %d has unknown type %q", ErrInvalidArgument, a.QuestionID, a.Category)
		}
		if seen[a.QuestionID] {
			return fmt.Errorf("%w: question %d answered twice", ErrInvalidArgument, a.QuestionID)
		}
		seen[a.QuestionID] = true
	}
	return nil
}

// gradeExact decides verdicts locally and asks the judge for feedback on
// the wrong answers only.
func (g *Grader) gradeExact(ctx context.Context, c Category, group []SubmittedAnswer) ([]GradedAnswer, error) {
	var local []GradedAnswer
	var wrong []SubmittedAnswer
	for _, a := range group {
		if a.UserAnswer == a.CorrectAnswer {
			local = append(local, GradedAnswer{
				QuestionID:    a.QuestionID,
				IsCorrect:     true,
				CorrectAnswer: a.CorrectAnswer,
			})
			continue
		}
		wrong = append(wrong, a)
	}
	if len(wrong) == 0 {
		return stitch(local, nil), nil
	}

	verdicts, err := g.judge(ctx, c, wrong)
	if err != nil {
		return nil, err
	}

	remote := make([]GradedAnswer, len(wrong))
	for i, a := range wrong {
		remote[i] = GradedAnswer{
			QuestionID:    a.QuestionID,
			IsCorrect:     false,
			CorrectAnswer: a.CorrectAnswer,
		}
		if v, ok := verdicts[a.QuestionID]; ok && v.Feedback != nil {
			remote[i].Feedback = strings.TrimSpace(*v.Feedback)
		}
	}
	return stitch(local, remote), nil
}

// gradeOpen sends the whole group to the lenient judge. Every answer must
// come back with a verdict.
func (g *Grader) gradeOpen(ctx context.Context, group []SubmittedAnswer) ([]GradedAnswer, error) {
	verdicts, err := g.judge(ctx, ShortAnswer, group)
	if err != nil {
		return nil, err
	}

	remote := make([]GradedAnswer, len(group))
	for i, a := range group {
		v, ok := verdicts[a.QuestionID]
		if !ok || v.IsCorrect == nil {
			return nil, fmt.Errorf("%w for question %d", ErrMissingVerdict, a.QuestionID)
		}
		ga := GradedAnswer{
			QuestionID:    a.QuestionID,
			IsCorrect:     bool(*v.IsCorrect),
			CorrectAnswer: a.CorrectAnswer,
		}
		if v.CorrectAnswer != nil && strings.TrimSpace(*v.CorrectAnswer) != "" {
			ga.CorrectAnswer = strings.TrimSpace(*v.CorrectAnswer)
		} else if ga.IsCorrect {
			ga.CorrectAnswer = a.UserAnswer
		}
		if v.Feedback != nil {
			ga.Feedback = strings.TrimSpace(*v.Feedback)
		}
		remote[i] = ga
	}
	return stitch(nil, remote), nil
}

// judge runs one judge call and indexes the verdicts by question id. The
// first verdict for an id wins. A reply without any verdict fails.
func (g *Grader) judge(ctx context.Context, c Category, answers []SubmittedAnswer) (map[int]verdict, error) {
	p, err := judgePrompt(c, answers)
	if err != nil {
		return nil, err
	}
	raw, err := g.client.Complete(llm.WithPurpose(ctx, llm.PurposeGrade), p.Instruction, p.Content)
	if err != nil {
		return nil, err
	}

	verdicts := parseVerdicts(raw, c, g.log)
	if len(verdicts) == 0 {
		return nil, ErrNoFragments
	}

	byID := make(map[int]verdict, len(answers))
	for _, v := range verdicts {
		if _, dup := byID[int(v.QuestionID)]; !dup {
			byID[int(v.QuestionID)] = v
		}
	}
	if len(byID) < len(answers) {
		g.log.Warn("judge skipped answers", "category", c, "sent", len(answers), "received", len(byID))
	}
	return byID, nil
}

// stitch merges locally decided and judged records of one group.
func stitch(local, remote []GradedAnswer) []GradedAnswer {
	switch {
	case len(local) == 0 && len(remote) == 0:
		return []GradedAnswer{}
	case len(remote) == 0:
		return local
	case len(local) == 0:
		return remote
	}
	return append(slices.Clip(local), remote...)
}
