package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type attemptRepo struct {
	db *sql.DB
}

func (r *attemptRepo) Append(ctx context.Context, a *Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Answers == nil {
		a.Answers = json.RawMessage("[]")
	}

	query, args := builder().Insert("attempts").
		Columns("id", "quiz_id", "user_id", "score", "total", "answers", "created_at").
		Values(a.ID, a.QuizID, a.UserID, a.Score, a.Total, string(a.Answers), a.CreatedAt.UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) TopScore(ctx context.Context, quizID, userID string) (int, bool, error) {
	query, args := builder().Select(entsql.Max("score")).
		From(entsql.Table("attempts")).
		Where(entsql.And(entsql.EQ("quiz_id", quizID), entsql.EQ("user_id", userID))).
		Query()

	var top sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&top); err != nil {
		return 0, false, fmt.Errorf("top score: %w", err)
	}
	return int(top.Int64), top.Valid, nil
}

func (r *attemptRepo) ListByQuiz(ctx context.Context, quizID, userID string) ([]Attempt, error) {
	sel := builder().Select("id", "quiz_id", "user_id", "score", "total", "answers", "created_at").
		From(entsql.Table("attempts")).
		OrderBy("created_at", "id")
	if userID != "" {
		sel.Where(entsql.And(entsql.EQ("quiz_id", quizID), entsql.EQ("user_id", userID)))
	} else {
		sel.Where(entsql.EQ("quiz_id", quizID))
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var (
			a       Attempt
			answers string
			created int64
		)
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.Total, &answers, &created); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Answers = json.RawMessage(answers)
		a.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
