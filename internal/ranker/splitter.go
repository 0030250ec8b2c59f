package ranker

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Splitter breaks a document into sentences, preserving document order.
type Splitter interface {
	Split(text string) []string
}

// PunktSplitter detects sentence boundaries with the pretrained English Punkt model.
type PunktSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunktSplitter loads the Punkt parameters. Loading is the expensive part,
// so build one splitter per process and share it.
func NewPunktSplitter() (*PunktSplitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt model: %w", err)
	}

	return &PunktSplitter{tokenizer: tokenizer}, nil
}

func (s *PunktSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tokens := s.tokenizer.Tokenize(text)

	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		sentence := strings.TrimSpace(token.Text)
		if sentence == "" {
			continue
		}
		out = append(out, sentence)
	}

	return out
}
