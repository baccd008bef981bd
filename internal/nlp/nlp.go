// Package nlp defines the tokenizer/lemmatizer capability the classifier
// consumes. The engine treats it as opaque: any adapter that can split text
// into tokens and propose ordered lemma candidates will do.
package nlp

// Token is one unit of the learner's text in written order.
type Token struct {
	Surface string
	IsPunct bool
}

// Adapter supplies tokenization and per-token lemma candidates.
type Adapter interface {
	Tokenize(text string) []Token
	// LemmaCandidates returns ordered lemma strings for a normalized token,
	// best candidate first; empty if the adapter has nothing to offer.
	LemmaCandidates(token string) []string
}

// NullAdapter offers no linguistic knowledge; classification degrades to
// exact matching plus the typo pipeline.
type NullAdapter struct{}

func (NullAdapter) Tokenize(string) []Token { return nil }
func (NullAdapter) LemmaCandidates(string) []string { return nil }
