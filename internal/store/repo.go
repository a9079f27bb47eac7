package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match when set
	After   int64  // id > After
}

// QuizStatus is the processing state of a stored quiz.
type QuizStatus string

const (
	QuizPending   QuizStatus = "pending"
	QuizProcessed QuizStatus = "processed"
	QuizErrored   QuizStatus = "errored"
)

// Quiz is a stored quiz. Questions holds the generated question list as
// JSON so that this package stays independent of the quiz types.
type Quiz struct {
	ID            string
	Owner         string
	Topic         string
	QuestionTypes []string
	NumQuestions  int
	Status        QuizStatus
	Error         string
	Questions     json.RawMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuizRepo manages stored quizzes.
type QuizRepo interface {
	// Create stores a new pending quiz. An empty ID is filled with a UUID.
	Create(ctx context.Context, q *Quiz) error

	// SaveQuestions stores the generated questions and marks the quiz processed.
	SaveQuestions(ctx context.Context, id string, questions json.RawMessage) error

	// MarkErrored records a generation failure.
	MarkErrored(ctx context.Context, id, message string) error

	// Get returns a quiz or ErrNotFound.
	Get(ctx context.Context, id string) (*Quiz, error)

	// List returns quizzes newest first, filtered by owner when non-empty.
	List(ctx context.Context, owner string, limit int) ([]Quiz, error)
}

// Attempt is one graded submission of a quiz.
type Attempt struct {
	ID        string
	QuizID    string
	UserID    string
	Score     int
	Total     int
	Answers   json.RawMessage
	CreatedAt time.Time
}

// AttemptRepo records graded submissions.
type AttemptRepo interface {
	// Append stores a new attempt. An empty ID is filled with a UUID.
	Append(ctx context.Context, a *Attempt) error

	// TopScore returns the best score of a user on a quiz and whether any
	// attempt exists.
	TopScore(ctx context.Context, quizID, userID string) (int, bool, error)

	// ListByQuiz returns the attempts on a quiz, oldest first, filtered by
	// user when non-empty.
	ListByQuiz(ctx context.Context, quizID, userID string) ([]Attempt, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStat aggregates requests sharing a purpose.
type LLMUsageStat struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates requests served by one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStat, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
