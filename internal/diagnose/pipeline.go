package diagnose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/boom724/boomguru/internal/contract"
	"github.com/boom724/boomguru/internal/llm"
	"github.com/boom724/boomguru/internal/prompts"
	"github.com/boom724/boomguru/internal/reference"
)

// Config holds pipeline tuning knobs.
type Config struct {
	// MaxTokens caps each stage's response length.
	MaxTokens int

	// Temperature for model calls. The production deployment runs at 0.5.
	Temperature float64

	// StopOnUnreal terminates the pipeline after a negative realness check.
	StopOnUnreal bool

	// BatchLimit bounds how many tasks RunBatch processes concurrently.
	BatchLimit int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.5,
		BatchLimit:  4,
	}
}

// Pipeline drives the router, invoker, contract and aggregator for one
// image task to completion.
type Pipeline struct {
	provider llm.Provider
	library  *prompts.Library
	vocab    *reference.Vocabulary
	catalog  *reference.Catalog
	router   Router
	cfg      Config
}

// New creates a Pipeline. A nil library uses the built-in prompts; a nil
// vocabulary uses the default canonical list; a nil catalog leaves error
// descriptions unenriched.
func New(provider llm.Provider, library *prompts.Library, vocab *reference.Vocabulary, catalog *reference.Catalog, cfg Config) *Pipeline {
	if library == nil {
		library = prompts.Default()
	}
	if vocab == nil {
		vocab = reference.DefaultVocabulary()
	}
	if catalog == nil {
		catalog = reference.NewCatalog()
	}
	return &Pipeline{
		provider: provider,
		library:  library,
		vocab:    vocab,
		catalog:  catalog,
		router:   Router{StopOnUnreal: cfg.StopOnUnreal},
		cfg:      cfg,
	}
}

// Run executes the pipeline for one task. It always returns the record
// accumulated so far: on error the record carries whatever earlier stages
// produced, so partial results are surfaced rather than discarded.
func (p *Pipeline) Run(ctx context.Context, task ImageTask) (*DiagnosticRecord, error) {
	agg := NewAggregator(p.vocab)

	var prev contract.StageKind
	for {
		kind, ok := p.router.Next(prev, agg.Snapshot())
		if !ok {
			return agg.Snapshot(), nil
		}

		if err := ctx.Err(); err != nil {
			return agg.Snapshot(), err
		}

		res, err := p.runStage(ctx, task, kind, agg)
		if err != nil {
			return agg.Snapshot(), fmt.Errorf("stage %s: %w", kind, err)
		}

		agg.Record(res)

		// Between extraction and synthesis the detected codes are
		// enriched with catalog descriptions, so the synthesis prompt
		// sees names, not bare numbers.
		if kind == contract.StageErrorCodeExtraction {
			agg.EnrichDescriptions(p.catalog)
		}

		prev = kind
	}
}

// runStage renders the stage prompt, invokes the model and validates the
// response. A contract violation triggers a single re-prompt with the
// same input before being escalated.
func (p *Pipeline) runStage(ctx context.Context, task ImageTask, kind contract.StageKind, agg *Aggregator) (StageResult, error) {
	req, err := p.buildRequest(task, kind, agg.Snapshot())
	if err != nil {
		return StageResult{}, err
	}

	ctx = llm.WithStage(ctx, string(kind))

	raw, err := p.invoke(ctx, req)
	if err != nil {
		return StageResult{}, err
	}

	payload, verr := contract.Validate(kind, raw)
	if verr != nil {
		logrus.WithFields(logrus.Fields{
			"task":  task.ID,
			"stage": string(kind),
		}).WithError(verr).Warn("contract violation, re-prompting once")

		raw, err = p.invoke(ctx, req)
		if err != nil {
			return StageResult{}, err
		}
		payload, verr = contract.Validate(kind, raw)
		if verr != nil {
			return StageResult{Kind: kind, RawText: raw}, verr
		}
	}

	return StageResult{Kind: kind, RawText: raw, Payload: payload, Valid: true}, nil
}

func (p *Pipeline) invoke(ctx context.Context, req llm.Request) (string, error) {
	resp, err := p.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return string(resp.Content), nil
}

// buildRequest assembles the stage's prompt and attachments.
func (p *Pipeline) buildRequest(task ImageTask, kind contract.StageKind, rec *DiagnosticRecord) (llm.Request, error) {
	params := prompts.Params{
		LanguageName: prompts.LanguageName(task.Language),
		Categories:   p.vocab.Categories(),
		Narrative:    rec.Narrative,
	}

	if kind == contract.StageRecommendationSynthesis {
		finalJSON, err := json.Marshal(struct {
			Errors         []contract.ErrorCode `json:"errors"`
			AdditionalInfo []string             `json:"additional_info"`
		}{rec.Errors, rec.AdditionalInfo})
		if err != nil {
			return llm.Request{}, fmt.Errorf("marshal error context: %w", err)
		}
		params.FinalJSON = string(finalJSON)
	}

	system, err := p.library.System(kind, params)
	if err != nil {
		return llm.Request{}, err
	}

	msg := llm.Message{
		Role:    llm.RoleUser,
		Content: prompts.UserText(kind, params),
	}
	// The synthesis stage reasons over already-extracted codes; every
	// other stage looks at the image itself.
	if kind != contract.StageRecommendationSynthesis {
		msg.ImageURL = task.Image
	}

	return llm.Request{
		System:      system,
		Messages:    []llm.Message{msg},
		Schema:      contract.SchemaFor(kind),
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}, nil
}

// TaskOutcome pairs a task with its pipeline result.
type TaskOutcome struct {
	Task   ImageTask
	Record *DiagnosticRecord
	Err    error
}

// RunBatch processes independent tasks concurrently, bounded by the
// configured batch limit. Tasks share no mutable state; one task's
// failure does not cancel the others. Outcomes are returned in task order.
func (p *Pipeline) RunBatch(ctx context.Context, tasks []ImageTask) []TaskOutcome {
	outcomes := make([]TaskOutcome, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	limit := p.cfg.BatchLimit
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, task := range tasks {
		g.Go(func() error {
			rec, err := p.Run(ctx, task)
			outcomes[i] = TaskOutcome{Task: task, Record: rec, Err: err}
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes.
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Warn("batch wait")
	}

	return outcomes
}
