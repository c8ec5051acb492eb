package narrative

import (
	"context"
	"time"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"go.uber.org/zap"
)

// PlaceholderText replaces the narrative whenever generation fails.
const PlaceholderText = "[AI insights unavailable] Narrative analysis could not be generated for this request. " +
	"The structured results are complete and can be used as-is."

// Enriched is a structured payload with narrative text attached.
type Enriched[T any] struct {
	Results   T                `json:"results"`
	Narrative models.Narrative `json:"narrative"`
}

// Merger runs one generation attempt per request and never fails it.
type Merger struct {
	gen     Generator
	timeout time.Duration
	log     *zap.Logger
}

func NewMerger(gen Generator, timeout time.Duration, log *zap.Logger) *Merger {
	return &Merger{gen: gen, timeout: timeout, log: log}
}

// Narrate returns generated text, or the placeholder if generation fails or
// times out. There is no retry.
func (m *Merger) Narrate(ctx context.Context, prompt string, history []models.ChatMessage) models.Narrative {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := m.gen.Generate(ctx, prompt, history)
	if err != nil {
		generationsTotal.WithLabelValues("placeholder").Inc()
		m.log.Warn("narrative generation failed, using placeholder",
			zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return models.Narrative{Text: PlaceholderText}
	}
	generationsTotal.WithLabelValues("generated").Inc()
	return models.Narrative{Text: text, Generated: true}
}

// Merge attaches a narrative for prompt to results.
func Merge[T any](ctx context.Context, m *Merger, results T, prompt string) Enriched[T] {
	return Enriched[T]{Results: results, Narrative: m.Narrate(ctx, prompt, nil)}
}
