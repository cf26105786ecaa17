package tfidf

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"askhr/internal/domain"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer fits TF-IDF vector spaces. It holds no corpus state, so every
// Fit starts from an empty vocabulary.
type Vectorizer struct {
	stopwords map[string]struct{}
}

// NewVectorizer creates a vectorizer that drops English stop words.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{stopwords: englishStopwords}
}

// Name returns the identifier of this vectorizer implementation.
func (v *Vectorizer) Name() string { return "tfidf" }

// Fit builds the vocabulary and IDF values from the provided corpus.
// An empty corpus, or one made only of stop words, yields a zero-dimension
// space whose projections are all empty.
func (v *Vectorizer) Fit(corpus []string) (domain.VectorSpace, error) {
	return v.fit(corpus), nil
}

func (v *Vectorizer) fit(corpus []string) *Model {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range v.tokens(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	m := &Model{
		stopwords:  v.stopwords,
		vocabulary: make(map[string]int, len(terms)),
		terms:      terms,
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		m.vocabulary[term] = i
		// smoothed idf
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return m
}

func (v *Vectorizer) tokens(text string) []string {
	return filter(Tokenize(text), v.stopwords)
}

// Model is a fitted, read-only TF-IDF vector space.
type Model struct {
	stopwords  map[string]struct{}
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// Dimension returns the vocabulary size.
func (m *Model) Dimension() int { return len(m.terms) }

// Vocabulary returns the fitted terms in index order.
func (m *Model) Vocabulary() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Transform projects text into the fitted space. Terms outside the
// vocabulary are ignored; the result is L2-normalised.
func (m *Model) Transform(text string) domain.SparseVector {
	tf := make(map[int]int)
	for _, tok := range filter(Tokenize(text), m.stopwords) {
		if idx, ok := m.vocabulary[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return domain.SparseVector{}
	}
	vec := domain.SparseVector{
		Indices: make([]int, 0, len(tf)),
		Values:  make([]float64, 0, len(tf)),
	}
	for idx := range tf {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)
	norm := 0.0
	for _, idx := range vec.Indices {
		w := float64(tf[idx]) * m.idf[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}

// Tokenize lowercases text and returns runs of two or more letters, digits
// or underscores. Stop words are kept.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// IsStopword reports whether the lowercase token is an English stop word.
func IsStopword(token string) bool {
	_, ok := englishStopwords[token]
	return ok
}

func filter(tokens []string, stopwords map[string]struct{}) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if _, isStop := stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}
