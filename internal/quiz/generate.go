package quiz

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/logging"
)

// GeneratorConfig tunes a Generator.
type GeneratorConfig struct {
	// RefineConcurrency bounds parallel fill-gaps refinements per category.
	RefineConcurrency int `yaml:"refine_concurrency"`

	// AllowShortfall returns fewer questions than requested instead of
	// failing when fragments are dropped.
	AllowShortfall bool `yaml:"allow_shortfall"`

	// Rand drives the shuffle. Nil seeds from the clock.
	Rand *rand.Rand `yaml:"-"`
}

// DefaultGeneratorConfig returns the defaults used by the CLI.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{RefineConcurrency: 4}
}

// Generator produces a typed question set from source material.
type Generator struct {
	client  CompletionClient
	refiner *GapRefiner
	cfg     GeneratorConfig
	log     *logging.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator wires a Generator to a completion client.
func NewGenerator(client CompletionClient, cfg GeneratorConfig, log *logging.Logger) *Generator {
	rng := cfg.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Generator{
		client:  client,
		refiner: NewGapRefiner(client, cfg.RefineConcurrency, log),
		cfg:     cfg,
		log:     log,
		rng:     rng,
	}
}

// Generate builds in.Total questions spread over in.Categories. Questions
// are shuffled and numbered 1..n. If any category task fails the whole
// run fails with a *GenerationError naming that category.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) ([]Question, error) {
	corpus := buildCorpus(in)
	if corpus == "" {
		return nil, fmt.Errorf("%w: no source text or topic given", ErrInvalidArgument)
	}
	allocs, err := Allocate(in.Total, in.Categories)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	slots := make([][]Question, len(allocs))
	errs := make([]error, len(allocs))

	var eg errgroup.Group
	for i, a := range allocs {
		if a.Count == 0 {
			continue
		}
		eg.Go(func() error {
			qs, err := g.generateCategory(ctx, a, corpus)
			if err != nil {
				errs[i] = err
				return err
			}
			slots[i] = qs
			return nil
		})
	}
	_ = eg.Wait()

	// First failure in allocation order names the category.
	for i, err := range errs {
		if err != nil {
			g.log.Error("category task failed", "category", allocs[i].Category, "error", err)
			return nil, &GenerationError{Category: allocs[i].Category, Err: err}
		}
	}

	var all []Question
	for _, qs := range slots {
		all = append(all, qs...)
	}

	g.mu.Lock()
	g.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	g.mu.Unlock()

	if len(all) > in.Total {
		all = all[:in.Total]
	}
	for i := range all {
		all[i].ID = i + 1
	}

	g.log.Info("quiz generated",
		"requested", in.Total, "produced", len(all), "duration_ms", time.Since(start).Milliseconds())

	if len(all) < in.Total && !g.cfg.AllowShortfall {
		return nil, &GenerationError{
			Err: fmt.Errorf("%w: got %d of %d", ErrInsufficientQuestions, len(all), in.Total),
		}
	}
	return all, nil
}

func (g *Generator) generateCategory(ctx context.Context, a Allocation, corpus string) ([]Question, error) {
	p, err := BuildPrompt(a.Category, a.Count, corpus)
	if err != nil {
		return nil, err
	}

	raw, err := g.client.Complete(llm.WithPurpose(ctx, llm.PurposeGenerate), p.Instruction, p.Content)
	if err != nil {
		return nil, err
	}

	qs := ParseQuestions(raw, a.Category, g.log)
	if a.Category == FillGaps && len(qs) > 0 {
		qs = g.refiner.Refine(ctx, qs)
	}
	if len(qs) == 0 {
		return nil, ErrNoFragments
	}

	g.log.Debug("category generated", "category", a.Category, "requested", a.Count, "produced", len(qs))
	return qs, nil
}

func buildCorpus(in GenerateInput) string {
	var parts []string
	if t := strings.TrimSpace(in.Topic); t != "" {
		parts = append(parts, "Topic: "+t)
	}
	if t := strings.TrimSpace(in.TextContent); t != "" {
		parts = append(parts, t)
	}
	for _, f := range in.FileContents {
		if t := strings.TrimSpace(f); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
