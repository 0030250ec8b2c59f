// Package ranker builds extractive summaries by ranking sentences on their
// TF-IDF cosine-similarity centrality within the document.
package ranker

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrNoSentences  = errors.New("text has no sentences")
	ErrInvalidCount = errors.New("sentence count must be positive")
)

// Sentence is a sentence of the document with its position and centrality.
type Sentence struct {
	Index int
	Text  string
	Score float64
}

// Summary is an extractive summary. Sentences are in document order.
type Summary struct {
	Sentences []Sentence
	Text      string
	// Total is the number of sentences in the document.
	Total int
}

type Ranker struct {
	splitter Splitter
}

func New(splitter Splitter) *Ranker {
	return &Ranker{splitter: splitter}
}

// Rank selects the k most central sentences of text. k larger than the
// sentence count selects every sentence. Equal scores prefer the earlier
// sentence.
func (r *Ranker) Rank(text string, k int) (Summary, error) {
	if k < 1 {
		return Summary{}, fmt.Errorf("%w (got %d)", ErrInvalidCount, k)
	}

	split := r.splitter.Split(text)
	if len(split) == 0 {
		return Summary{}, ErrNoSentences
	}

	scores := centrality(split)

	ranked := make([]Sentence, len(split))
	for i, s := range split {
		ranked[i] = Sentence{Index: i, Text: s, Score: scores[i]}
	}

	slices.SortFunc(ranked, func(a, b Sentence) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	selected := ranked[:min(k, len(ranked))]
	slices.SortFunc(selected, func(a, b Sentence) int {
		return cmp.Compare(a.Index, b.Index)
	})

	texts := make([]string, len(selected))
	for i, s := range selected {
		texts[i] = s.Text
	}

	return Summary{
		Sentences: selected,
		Text:      strings.Join(texts, " "),
		Total:     len(split),
	}, nil
}

// Summarize is Rank returning only the joined summary text.
func (r *Ranker) Summarize(text string, k int) (string, error) {
	summary, err := r.Rank(text, k)
	if err != nil {
		return "", err
	}

	return summary.Text, nil
}
