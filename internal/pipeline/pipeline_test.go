package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tldrbot/internal/pipeline"
	"tldrbot/internal/ranker"
	"tldrbot/internal/summarizer"
)

const animals = "A cat sat. A dog ran. The cat slept. A bird flew. The dog barked."

type fakeRewriter struct {
	calls  int
	inputs []summarizer.Input
	output func(summarizer.Input) string
	err    error
}

func (f *fakeRewriter) Rewrite(_ context.Context, input summarizer.Input) (string, error) {
	f.calls++
	f.inputs = append(f.inputs, input)

	if f.err != nil {
		return "", f.err
	}
	return f.output(input), nil
}

type brokenRanker struct {
	calls int
	err   error
}

func (b *brokenRanker) Rank(string, int) (ranker.Summary, error) {
	b.calls++
	return ranker.Summary{}, b.err
}

func newPipeline(t *testing.T, w summarizer.Rewriter) *pipeline.Pipeline {
	t.Helper()

	splitter, err := ranker.NewPunktSplitter()
	require.NoError(t, err)

	r := ranker.New(splitter)
	return pipeline.New(r, w, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunGeneratesBothSummaries(t *testing.T) {
	w := &fakeRewriter{output: func(summarizer.Input) string { return "  Pets rested.  " }}
	p := newPipeline(t, w)

	got, err := p.Run(context.Background(), pipeline.Request{
		Text:             animals,
		ExtractiveLines:  2,
		AbstractiveLines: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, "The cat slept. The dog barked.", got.Extractive)
	assert.Equal(t, "Pets rested.", got.Abstractive)
	assert.Equal(t, pipeline.StatusGenerated, got.Status)
	assert.Equal(t, 5, got.SentenceCount)

	require.Len(t, w.inputs, 1)
	assert.Equal(t, summarizer.Input{
		Text:      "The cat slept. The dog barked.",
		MaxLength: 60,
		MinLength: 40,
	}, w.inputs[0])
}

func TestRunSkipsRewriteForShortSummary(t *testing.T) {
	w := &fakeRewriter{output: func(in summarizer.Input) string { return in.Text }}
	p := newPipeline(t, w)

	got, err := p.Run(context.Background(), pipeline.Request{
		Text:             animals,
		ExtractiveLines:  1,
		AbstractiveLines: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, pipeline.StatusTooShort, got.Status)
	assert.Equal(t, pipeline.TooShortMessage, got.Abstractive)
	assert.NotEmpty(t, got.Extractive)
	assert.Zero(t, w.calls)
}

func TestRunFiveWordsIsTooShort(t *testing.T) {
	w := &fakeRewriter{output: func(summarizer.Input) string { return "unused" }}
	p := newPipeline(t, w)

	got, err := p.Run(context.Background(), pipeline.Request{
		Text:             "One two three four five.",
		ExtractiveLines:  3,
		AbstractiveLines: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, pipeline.StatusTooShort, got.Status)
	assert.Zero(t, w.calls)
}

func TestRunReplacesEchoedRewrite(t *testing.T) {
	w := &fakeRewriter{output: func(in summarizer.Input) string { return "\n" + in.Text + "  " }}
	p := newPipeline(t, w)

	got, err := p.Run(context.Background(), pipeline.Request{
		Text:             animals,
		ExtractiveLines:  3,
		AbstractiveLines: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "A cat sat. The cat slept. The dog barked.", got.Extractive)
	assert.Equal(t, pipeline.StatusTooSimilar, got.Status)
	assert.Equal(t, pipeline.TooSimilarMessage, got.Abstractive)
	assert.Equal(t, 1, w.calls)
}

func TestRunPassthroughIsTooSimilar(t *testing.T) {
	p := newPipeline(t, summarizer.Passthrough{})

	got, err := p.Run(context.Background(), pipeline.Request{
		Text:             animals,
		ExtractiveLines:  5,
		AbstractiveLines: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, animals, got.Extractive)
	assert.Equal(t, pipeline.StatusTooSimilar, got.Status)
}

func TestRunRejectsEmptyInputBeforeRanking(t *testing.T) {
	r := &brokenRanker{}
	w := &fakeRewriter{}
	p := pipeline.New(r, w, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := p.Run(context.Background(), pipeline.Request{
			Text:             text,
			ExtractiveLines:  3,
			AbstractiveLines: 3,
		})

		require.Error(t, err)
		assert.Equal(t, pipeline.KindEmptyInput, pipeline.KindOf(err))
		assert.ErrorIs(t, err, pipeline.ErrEmptyInput)
		assert.Equal(t, pipeline.EmptyInputMessage, pipeline.UserMessage(err))
	}

	assert.Zero(t, r.calls)
	assert.Zero(t, w.calls)
}

func TestRunRejectsOversizedInputBeforeRanking(t *testing.T) {
	r := &brokenRanker{}
	w := &fakeRewriter{}
	p := pipeline.New(r, w, slog.New(slog.NewTextHandler(io.Discard, nil)))

	text := strings.Repeat("The cat sat. ", pipeline.MaxInputBytes/13+1)

	_, err := p.Run(context.Background(), pipeline.Request{
		Text:             text,
		ExtractiveLines:  3,
		AbstractiveLines: 3,
	})

	require.Error(t, err)
	assert.Equal(t, pipeline.KindInvalidInput, pipeline.KindOf(err))
	assert.ErrorIs(t, err, pipeline.ErrInputTooLarge)
	assert.Zero(t, r.calls)
	assert.Zero(t, w.calls)
}

func TestRunAcceptsInputAtLimit(t *testing.T) {
	w := &fakeRewriter{output: func(summarizer.Input) string { return "Cats sat." }}
	p := newPipeline(t, w)

	sentence := "The cat sat on the mat. "
	text := strings.Repeat(sentence, pipeline.MaxInputBytes/len(sentence))
	require.LessOrEqual(t, len(strings.TrimSpace(text)), pipeline.MaxInputBytes)

	_, err := p.Run(context.Background(), pipeline.Request{
		Text:             text,
		ExtractiveLines:  2,
		AbstractiveLines: 2,
	})
	require.NoError(t, err)
}

func TestRunRejectsLinesOutOfRange(t *testing.T) {
	p := newPipeline(t, &fakeRewriter{})

	tests := []struct {
		name        string
		extractive  int
		abstractive int
	}{
		{name: "zero extractive", extractive: 0, abstractive: 3},
		{name: "too many extractive", extractive: 11, abstractive: 3},
		{name: "negative abstractive", extractive: 3, abstractive: -1},
		{name: "too many abstractive", extractive: 3, abstractive: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Run(context.Background(), pipeline.Request{
				Text:             animals,
				ExtractiveLines:  tt.extractive,
				AbstractiveLines: tt.abstractive,
			})

			assert.Equal(t, pipeline.KindInvalidInput, pipeline.KindOf(err))
		})
	}
}

func TestRunClassifiesFailures(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("rewriter", func(t *testing.T) {
		p := newPipeline(t, &fakeRewriter{err: errBoom})

		_, err := p.Run(context.Background(), pipeline.Request{
			Text:             animals,
			ExtractiveLines:  2,
			AbstractiveLines: 2,
		})

		assert.Equal(t, pipeline.KindLibraryFailure, pipeline.KindOf(err))
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, "An error occurred: rewrite summary: boom", pipeline.UserMessage(err))
	})

	t.Run("ranker", func(t *testing.T) {
		p := pipeline.New(&brokenRanker{err: errBoom}, &fakeRewriter{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := p.Run(context.Background(), pipeline.Request{
			Text:             animals,
			ExtractiveLines:  2,
			AbstractiveLines: 2,
		})

		assert.Equal(t, pipeline.KindLibraryFailure, pipeline.KindOf(err))
	})

	t.Run("no sentences", func(t *testing.T) {
		p := pipeline.New(&brokenRanker{err: ranker.ErrNoSentences}, &fakeRewriter{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := p.Run(context.Background(), pipeline.Request{
			Text:             "...",
			ExtractiveLines:  2,
			AbstractiveLines: 2,
		})

		assert.Equal(t, pipeline.KindInvalidInput, pipeline.KindOf(err))
	})
}

func TestBudget(t *testing.T) {
	tests := []struct {
		lines, max, min int
	}{
		{lines: 1, max: 20, min: 0},
		{lines: 3, max: 60, min: 40},
		{lines: 10, max: 200, min: 180},
	}

	for _, tt := range tests {
		gotMax, gotMin := pipeline.Budget(tt.lines)
		if gotMax != tt.max || gotMin != tt.min {
			t.Fatalf("Budget(%d) = %d, %d; want %d, %d", tt.lines, gotMax, gotMin, tt.max, tt.min)
		}
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := pipeline.KindOf(errors.New("other")); got != pipeline.KindUnknown {
		t.Fatalf("KindOf() = %v", got)
	}
	if got := pipeline.UserMessage(nil); got != "" {
		t.Fatalf("UserMessage(nil) = %q", got)
	}
}
