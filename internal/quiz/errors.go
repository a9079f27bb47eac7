package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports bad caller input. It is never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrGenerationFailed matches every *GenerationError.
	ErrGenerationFailed = errors.New("quiz generation failed")

	// ErrGradingFailed matches every *GradingError.
	ErrGradingFailed = errors.New("quiz grading failed")

	// ErrNoFragments means a category response held no usable record.
	ErrNoFragments = errors.New("no usable records in completion")

	// ErrInsufficientQuestions means fewer questions survived than requested.
	ErrInsufficientQuestions = errors.New("insufficient questions generated")

	// ErrMissingVerdict means the judge skipped a short answer.
	ErrMissingVerdict = errors.New("judge returned no verdict")
)

// GenerationError is the single failure signal of a generation run. It
// names the category whose task failed first.
type GenerationError struct {
	Category Category
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("%v: %v", ErrGenerationFailed, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrGenerationFailed, e.Category, e.Err)
}

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

func (e *GenerationError) Unwrap() error { return e.Err }

// GradingError is the single failure signal of a grading run.
type GradingError struct {
	Category Category
	Err      error
}

func (e *GradingError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrGradingFailed, e.Category, e.Err)
}

func (e *GradingError) Is(target error) bool { return target == ErrGradingFailed }

func (e *GradingError) Unwrap() error { return e.Err }
