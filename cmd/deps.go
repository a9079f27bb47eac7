package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/config"
	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/logging"
	"github.com/abhisek/quizforge/internal/notify"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/screens/results"
	"github.com/abhisek/quizforge/internal/store"
)

// deps holds what every subcommand needs.
type deps struct {
	cfg   *config.Config
	log   *logging.Logger
	store *store.Store
}

// setup loads configuration, builds the logger and opens the store.
func setup(cmd *cobra.Command) (*deps, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &deps{cfg: cfg, log: log, store: st}, nil
}

func (d *deps) Close() {
	_ = d.store.Close()
	d.log.Sync()
}

// service wires the quiz pipelines to the configured completion provider.
func (d *deps) service(ctx context.Context) (*quiz.Service, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	p, err := llm.NewProvider(ctx, d.cfg.LLM, d.store.EventRepo(), d.log)
	if err != nil {
		return nil, err
	}
	d.log.Debug("completion provider ready", "provider", d.cfg.LLM.Provider, "model", p.ModelID())

	completer := llm.NewCompleter(p, d.cfg.LLM, d.log)
	return quiz.NewService(completer, d.cfg.Generation, d.log), nil
}

// notifier returns the configured notifier, falling back to the log when
// Redis is unreachable.
func (d *deps) notifier(ctx context.Context) notify.Notifier {
	n, err := notify.New(ctx, d.cfg.Notify.RedisURL, d.cfg.Notify.ChannelPrefix, d.log)
	if err != nil {
		d.log.Warn("notifications fall back to log", "error", err)
		return notify.NewLogNotifier(d.log)
	}
	return n
}

// loadQuestions fetches a quiz that is ready to be answered.
func (d *deps) loadQuestions(ctx context.Context, id string) (*store.Quiz, []quiz.Question, error) {
	q, err := d.store.QuizRepo().Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	switch q.Status {
	case store.QuizErrored:
		return nil, nil, fmt.Errorf("quiz %s failed to generate: %s", id, q.Error)
	case store.QuizPending:
		return nil, nil, fmt.Errorf("quiz %s is still being generated", id)
	}

	var questions []quiz.Question
	if err := json.Unmarshal(q.Questions, &questions); err != nil {
		return nil, nil, fmt.Errorf("decode questions of quiz %s: %w", id, err)
	}
	return q, questions, nil
}

// attemptRecord is what gets stored with every attempt.
type attemptRecord struct {
	Submitted []quiz.SubmittedAnswer `json:"submitted"`
	Graded    []quiz.GradedAnswer    `json:"graded"`
}

// submitAttempt grades raw answers, records the attempt and reports
// whether it beat the user's previous best.
func (d *deps) submitAttempt(ctx context.Context, svc *quiz.Service, quizID, userID string,
	questions []quiz.Question, raw map[string]string) (results.Outcome, error) {
	submitted, err := quiz.JoinAnswers(questions, raw)
	if err != nil {
		return results.Outcome{}, err
	}

	if d.cfg.Grading.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Grading.Timeout)
		defer cancel()
	}

	start := time.Now()
	graded, err := svc.AnswerQuiz(ctx, submitted)
	if err != nil {
		return results.Outcome{}, err
	}
	score := quiz.Score(graded)

	attempts := d.store.AttemptRepo()
	var previous []int
	best, ok, err := attempts.TopScore(ctx, quizID, userID)
	if err != nil {
		return results.Outcome{}, fmt.Errorf("load previous score: %w", err)
	}
	if ok {
		previous = append(previous, best)
	}

	body, err := json.Marshal(attemptRecord{Submitted: submitted, Graded: graded})
	if err != nil {
		return results.Outcome{}, fmt.Errorf("encode attempt: %w", err)
	}
	if err := attempts.Append(ctx, &store.Attempt{
		QuizID:  quizID,
		UserID:  userID,
		Score:   score,
		Total:   len(graded),
		Answers: body,
	}); err != nil {
		return results.Outcome{}, fmt.Errorf("save attempt: %w", err)
	}

	d.log.Info("attempt graded", "quiz_id", quizID, "user_id", userID,
		"score", score, "total", len(graded), "duration_ms", time.Since(start).Milliseconds())

	return results.Outcome{
		Graded:   graded,
		Score:    score,
		Total:    len(graded),
		TopScore: quiz.IsTopScore(score, previous),
	}, nil
}
