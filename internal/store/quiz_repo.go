package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var quizColumns = []string{
	"id", "owner", "topic", "question_types", "num_questions",
	"status", "error", "questions", "created_at", "updated_at",
}

type quizRepo struct {
	db *sql.DB
}

func (r *quizRepo) Create(ctx context.Context, q *Quiz) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	q.Status = QuizPending
	q.CreatedAt, q.UpdatedAt = now, now
	if q.Questions == nil {
		q.Questions = json.RawMessage("[]")
	}

	types, err := json.Marshal(q.QuestionTypes)
	if err != nil {
		return fmt.Errorf("encode question types: %w", err)
	}

	query, args := builder().Insert("quizzes").
		Columns(quizColumns...).
		Values(q.ID, q.Owner, q.Topic, string(types), q.NumQuestions,
			string(q.Status), q.Error, string(q.Questions), now.UnixMilli(), now.UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *quizRepo) SaveQuestions(ctx context.Context, id string, questions json.RawMessage) error {
	return r.update(ctx, id, map[string]any{
		"status":    string(QuizProcessed),
		"error":     "",
		"questions": string(questions),
	})
}

func (r *quizRepo) MarkErrored(ctx context.Context, id, message string) error {
	return r.update(ctx, id, map[string]any{
		"status": string(QuizErrored),
		"error":  message,
	})
}

func (r *quizRepo) update(ctx context.Context, id string, set map[string]any) error {
	u := builder().Update("quizzes").
		Set("updated_at", time.Now().UTC().UnixMilli()).
		Where(entsql.EQ("id", id))
	for _, col := range []string{"status", "error", "questions"} {
		if v, ok := set[col]; ok {
			u.Set(col, v)
		}
	}
	query, args := u.Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update quiz %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *quizRepo) Get(ctx context.Context, id string) (*Quiz, error) {
	query, args := builder().Select(quizColumns...).
		From(entsql.Table("quizzes")).
		Where(entsql.EQ("id", id)).
		Query()

	q, err := scanQuiz(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz %s: %w", id, err)
	}
	return q, nil
}

func (r *quizRepo) List(ctx context.Context, owner string, limit int) ([]Quiz, error) {
	sel := builder().Select(quizColumns...).
		From(entsql.Table("quizzes")).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if owner != "" {
		sel.Where(entsql.EQ("owner", owner))
	}
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (*Quiz, error) {
	var (
		q                Quiz
		types, questions string
		status           string
		created, updated int64
	)
	if err := row.Scan(&q.ID, &q.Owner, &q.Topic, &types, &q.NumQuestions,
		&status, &q.Error, &questions, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(types), &q.QuestionTypes); err != nil {
		return nil, fmt.Errorf("decode question types: %w", err)
	}
	q.Status = QuizStatus(status)
	q.Questions = json.RawMessage(questions)
	q.CreatedAt = time.UnixMilli(created).UTC()
	q.UpdatedAt = time.UnixMilli(updated).UTC()
	return &q, nil
}
