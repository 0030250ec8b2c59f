package ranker

import (
	"math"
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/floats"
)

const minTermRunes = 2

var wordRunRe = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]+`)

// terms lower-cases the sentence and keeps word runs of at least two runes.
func terms(sentence string) []string {
	lower := cases.Lower(language.Und).String(norm.NFC.String(sentence))

	var out []string
	for _, run := range wordRunRe.FindAllString(lower, -1) {
		if len([]rune(run)) < minTermRunes {
			continue
		}
		out = append(out, run)
	}

	return out
}

// termVector is a sparse TF-IDF row: weights[k] belongs to column columns[k].
type termVector struct {
	columns []int
	weights []float64
}

// tfidfVectors builds the L2-normalized TF-IDF row of every document and
// returns them with the vocabulary size. Columns follow first appearance.
// IDF is smoothed: ln((1+n)/(1+df)) + 1.
func tfidfVectors(docs [][]string) ([]termVector, int) {
	columns := make(map[string]int)
	vectors := make([]termVector, len(docs))
	var df []float64

	for i, doc := range docs {
		position := make(map[int]int, len(doc))
		for _, term := range doc {
			col, ok := columns[term]
			if !ok {
				col = len(columns)
				columns[term] = col
				df = append(df, 0)
			}

			k, ok := position[col]
			if !ok {
				k = len(vectors[i].columns)
				position[col] = k
				vectors[i].columns = append(vectors[i].columns, col)
				vectors[i].weights = append(vectors[i].weights, 0)
				df[col]++
			}
			vectors[i].weights[k]++
		}
	}

	n := float64(len(docs))
	for i := range vectors {
		v := &vectors[i]
		for k, col := range v.columns {
			v.weights[k] *= math.Log((1+n)/(1+df[col])) + 1
		}
		if l2 := floats.Norm(v.weights, 2); l2 > 0 {
			floats.Scale(1/l2, v.weights)
		}
	}

	return vectors, len(columns)
}

// centrality scores every sentence by the sum of its cosine similarities to
// all sentences, itself included. Rows are unit length, so the row sum of
// X·Xᵀ is x_i · Σ_j x_j and the similarity matrix is never built.
func centrality(sentences []string) []float64 {
	docs := make([][]string, len(sentences))
	for i, sentence := range sentences {
		docs[i] = terms(sentence)
	}

	scores := make([]float64, len(sentences))

	vectors, vocabSize := tfidfVectors(docs)
	if vocabSize == 0 {
		return scores
	}

	total := make([]float64, vocabSize)
	for _, v := range vectors {
		for k, col := range v.columns {
			total[col] += v.weights[k]
		}
	}

	for i, v := range vectors {
		for k, col := range v.columns {
			scores[i] += v.weights[k] * total[col]
		}
	}

	return scores
}
