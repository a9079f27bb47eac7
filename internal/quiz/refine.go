package quiz

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/logging"
)

// GapRefiner turns plain facts into fill-in-the-gap questions: it asks the
// completion service for four options and blanks the correct one out of
// the fact.
type GapRefiner struct {
	client      CompletionClient
	concurrency int
	log         *logging.Logger
}

// NewGapRefiner returns a refiner running at most concurrency refinements
// at once. Values below 1 mean one at a time.
func NewGapRefiner(client CompletionClient, concurrency int, log *logging.Logger) *GapRefiner {
	return &GapRefiner{client: client, concurrency: max(concurrency, 1), log: log}
}

// Refine refines every fact and returns the survivors in fact order.
// A fact whose call, parse, validation or masking fails is dropped.
func (r *GapRefiner) Refine(ctx context.Context, facts []Question) []Question {
	slots := make([]*Question, len(facts))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, fact := range facts {
		g.Go(func() error {
			q, err := r.refineOne(ctx, fact)
			if err != nil {
				r.log.Warn("dropping fact", "fact", fact.Text, "error", err)
				return nil
			}
			slots[i] = &q
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Question, 0, len(facts))
	for _, q := range slots {
		if q != nil {
			out = append(out, *q)
		}
	}
	return out
}

func (r *GapRefiner) refineOne(ctx context.Context, fact Question) (Question, error) {
	p := refinePrompt(fact.Text)
	raw, err := r.client.Complete(llm.WithPurpose(ctx, llm.PurposeRefine), p.Instruction, p.Content)
	if err != nil {
		return Question{}, fmt.Errorf("refine call: %w", err)
	}

	ref, err := parseRefinement(raw)
	if err != nil {
		return Question{}, fmt.Errorf("parse refinement: %w", err)
	}

	opts := cleanOptions(ref.Options)
	if len(opts) != 4 {
		return Question{}, fmt.Errorf("want 4 options, got %d", len(opts))
	}
	answer, ok := matchOption(opts, ref.CorrectAnswer)
	if !ok {
		return Question{}, fmt.Errorf("correct answer %q is not one of the options", ref.CorrectAnswer)
	}

	masked, ok := MaskPhrase(fact.Text, answer)
	if !ok {
		return Question{}, fmt.Errorf("correct answer %q does not occur in the fact", answer)
	}

	return Question{
		Text:          masked,
		Category:      FillGaps,
		Options:       opts,
		CorrectAnswer: answer,
	}, nil
}

// MaskPhrase replaces the first case-insensitive whole-word occurrence of
// phrase in text with underscores, one per rune of the occurrence. It
// reports false when phrase is empty or does not occur.
func MaskPhrase(text, phrase string) (string, bool) {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return text, false
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}

	re, err := regexp.Compile(`(?i)(?:^|[^\p{L}\p{N}_])(` + strings.Join(words, `\s+`) + `)(?:$|[^\p{L}\p{N}_])`)
	if err != nil {
		return text, false
	}
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, false
	}

	start, end := loc[2], loc[3]
	blank := strings.Repeat("_", utf8.RuneCountInString(text[start:end]))
	return text[:start] + blank + text[end:], true
}
