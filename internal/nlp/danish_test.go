package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuffixAdapter_Tokenize(t *testing.T) {
	a := NewSuffixAdapter()
	tokens := a.Tokenize("Jeg spiser æbler, ikke 42 kager!")
	surfaces := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		surfaces = append(surfaces, tok.Surface)
	}
	assert.Equal(t, []string{"Jeg", "spiser", "æbler", ",", "ikke", "42", "kager", "!"}, surfaces)

	byToken := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		byToken[tok.Surface] = tok.IsPunct
	}
	assert.False(t, byToken["spiser"])
	assert.False(t, byToken["æbler"])
	assert.False(t, byToken["42"])
	assert.True(t, byToken[","])
	assert.True(t, byToken["!"])
}

func TestSuffixAdapter_TokenizeEmpty(t *testing.T) {
	assert.Empty(t, NewSuffixAdapter().Tokenize("   "))
}

func TestSuffixAdapter_LemmaCandidates(t *testing.T) {
	a := NewSuffixAdapter()

	assert.Equal(t, []string{"spis"}, a.LemmaCandidates("spiser"))
	assert.Equal(t, []string{"hus"}, a.LemmaCandidates("husene"))
}

func TestSuffixAdapter_LemmaCandidates_DoubledConsonant(t *testing.T) {
	a := NewSuffixAdapter()
	got := a.LemmaCandidates("klasserne")
	require.NotEmpty(t, got)
	assert.Contains(t, got, "klass")
	assert.Contains(t, got, "klas")
	// Most specific strip comes first.
	assert.Equal(t, "klass", got[0])
}

func TestSuffixAdapter_LemmaCandidates_ExcludesToken(t *testing.T) {
	a := NewSuffixAdapter()
	assert.NotContains(t, a.LemmaCandidates("spiser"), "spiser")
}

func TestSuffixAdapter_LemmaCandidates_Guards(t *testing.T) {
	a := NewSuffixAdapter()
	assert.Nil(t, a.LemmaCandidates(""))
	assert.Nil(t, a.LemmaCandidates("usb6525"))
	assert.Empty(t, a.LemmaCandidates("is")) // stem would drop below the minimum
	assert.Nil(t, a.LemmaCandidates("!!"))
}

func TestSuffixAdapter_LemmaCandidates_Lowercases(t *testing.T) {
	a := NewSuffixAdapter()
	assert.Equal(t, []string{"hus"}, a.LemmaCandidates("Husene"))
}

func TestNullAdapter(t *testing.T) {
	var a Adapter = NullAdapter{}
	assert.Nil(t, a.Tokenize("Jeg spiser"))
	assert.Nil(t, a.LemmaCandidates("spiser"))
}
