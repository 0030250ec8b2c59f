// Package pipeline runs the two summarization stages: sentence ranking and
// the abstractive rewrite of the ranked sentences.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tldrbot/internal/ranker"
	"tldrbot/internal/summarizer"
)

const (
	MinLines = 1
	MaxLines = 10

	// LengthPerLine converts requested abstractive lines to a length budget.
	LengthPerLine = 20
	// MinLengthGap is the distance between the maximum and minimum length.
	MinLengthGap = 20
	// MinAbstractiveWords is the word count the extractive summary must exceed
	// before the rewriter is called.
	MinAbstractiveWords = 5
	// MaxInputBytes caps the text handed to the ranker.
	MaxInputBytes = 256 << 10
)

const (
	EmptyInputMessage = "Please enter text to summarize."
	TooShortMessage   = "Input text is too short for meaningful abstractive summarization."
	TooSimilarMessage = "The abstractive summary is too similar to the extractive summary."
)

// Status tells how Result.Abstractive was produced.
type Status string

const (
	StatusGenerated  Status = "generated"
	StatusTooShort   Status = "too_short"
	StatusTooSimilar Status = "too_similar"
)

type Request struct {
	Text             string
	ExtractiveLines  int
	AbstractiveLines int
}

type Result struct {
	Extractive string
	// Abstractive holds the rewrite, or TooShortMessage or TooSimilarMessage
	// depending on Status.
	Abstractive   string
	Status        Status
	SentenceCount int
}

type Ranker interface {
	Rank(text string, k int) (ranker.Summary, error)
}

// Pipeline is safe for concurrent use when its ranker and rewriter are.
type Pipeline struct {
	ranker   Ranker
	rewriter summarizer.Rewriter
	log      *slog.Logger
}

func New(r Ranker, w summarizer.Rewriter, log *slog.Logger) *Pipeline {
	return &Pipeline{
		ranker:   r,
		rewriter: w,
		log:      log,
	}
}

// Budget returns the rewrite length bounds for the requested line count.
func Budget(lines int) (maxLength, minLength int) {
	maxLength = lines * LengthPerLine
	return maxLength, max(maxLength-MinLengthGap, 0)
}

// Run summarizes req.Text. Failures are *Error values carrying a Kind.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, fail(KindEmptyInput, ErrEmptyInput)
	}
	if len(text) > MaxInputBytes {
		return Result{}, fail(KindInvalidInput,
			fmt.Errorf("%w (%d bytes, limit %d)", ErrInputTooLarge, len(text), MaxInputBytes))
	}

	if err := validateLines("extractive", req.ExtractiveLines); err != nil {
		return Result{}, fail(KindInvalidInput, err)
	}
	if err := validateLines("abstractive", req.AbstractiveLines); err != nil {
		return Result{}, fail(KindInvalidInput, err)
	}

	start := time.Now()
	summary, err := p.ranker.Rank(text, req.ExtractiveLines)
	if err != nil {
		if errors.Is(err, ranker.ErrNoSentences) || errors.Is(err, ranker.ErrInvalidCount) {
			return Result{}, fail(KindInvalidInput, err)
		}
		return Result{}, fail(KindLibraryFailure, fmt.Errorf("rank sentences: %w", err))
	}

	p.log.DebugContext(ctx, "Sentences are ranked",
		"sentences", summary.Total,
		"selected", len(summary.Sentences),
		"latencyMs", time.Since(start).Milliseconds())

	result := Result{
		Extractive:    summary.Text,
		SentenceCount: summary.Total,
	}

	if len(strings.Fields(summary.Text)) <= MinAbstractiveWords {
		result.Abstractive = TooShortMessage
		result.Status = StatusTooShort
		return result, nil
	}

	maxLength, minLength := Budget(req.AbstractiveLines)
	start = time.Now()
	rewritten, err := p.rewriter.Rewrite(ctx, summarizer.Input{
		Text:      summary.Text,
		MaxLength: maxLength,
		MinLength: minLength,
	})
	if err != nil {
		p.log.ErrorContext(ctx, "Rewrite failed",
			"maxLength", maxLength,
			"error", err)

		return Result{}, fail(KindLibraryFailure, fmt.Errorf("rewrite summary: %w", err))
	}

	p.log.DebugContext(ctx, "Summary is rewritten",
		"maxLength", maxLength,
		"latencyMs", time.Since(start).Milliseconds())

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == strings.TrimSpace(summary.Text) {
		result.Abstractive = TooSimilarMessage
		result.Status = StatusTooSimilar
		return result, nil
	}

	result.Abstractive = rewritten
	result.Status = StatusGenerated

	return result, nil
}

func validateLines(name string, lines int) error {
	if lines < MinLines || lines > MaxLines {
		return fmt.Errorf("%s lines must be between %d and %d (got %d)", name, MinLines, MaxLines, lines)
	}
	return nil
}
