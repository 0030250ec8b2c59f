package summarizer

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyInput  = errors.New("input is empty")
	ErrEmptyOutput = errors.New("model returned no text")
)

// Input describes the payload for a rewrite request.
type Input struct {
	// Text is the extractive summary to paraphrase.
	Text string
	// MaxLength and MinLength bound the output length in model units
	// (tokens for seq2seq models, words for chat models).
	MaxLength int
	MinLength int
}

// Sampling holds the decoding parameters forwarded to the model.
type Sampling struct {
	Temperature float64
	TopK        int
	TopP        float64
}

//nolint:gochecknoglobals // Immutable defaults.
var DefaultSampling = Sampling{
	Temperature: 1.2,
	TopK:        50,
	TopP:        0.95,
}

// Rewriter produces an abstractive summary of already condensed text.
// Implementations are built once and shared; calls may block for a long time.
type Rewriter interface {
	Rewrite(ctx context.Context, input Input) (string, error)
}

func instructions(input Input) string {
	return fmt.Sprintf(`Rewrite the text as an abstractive summary.

Rules:
- Between %d and %d words.
- Paraphrase; do not copy sentences verbatim.
- Keep names, numbers and dates that matter.
- Plain prose, no lists, no preamble.
- Write in the same language as the input.`, input.MinLength, input.MaxLength)
}
