package typo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"lowercases", "Hund", "hund"},
		{"trims", "  kat  ", "kat"},
		{"collapses whitespace", "god  \t morgen", "god morgen"},
		{"strips edge punctuation", "»hej!«", "hej"},
		{"strips repeatedly", "-- (bog) --", "bog"},
		{"keeps internal hyphen", "tre-årig", "tre-årig"},
		{"keeps danish vowels", "Æble", "æble"},
		{"curly apostrophe", "det’s", "det's"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Hund!", "  KØB  ", "»god- morgen«", "aalborg", "x", "", "tre-årig", "...", "MiLkOsCnA"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestForms_Alternates(t *testing.T) {
	forms := Forms("Aalborg")
	assert.Equal(t, "aalborg", forms.Normalized)
	assert.ElementsMatch(t, []string{"aalborg", "ålborg"}, forms.Alternates)

	forms = Forms("høne")
	assert.ElementsMatch(t, []string{"høne", "hoene"}, forms.Alternates)

	forms = Forms("lærer")
	assert.ElementsMatch(t, []string{"lærer", "laerer"}, forms.Alternates)

	// No digraph material: the normalized form is its only alternate.
	forms = Forms("hund")
	assert.Equal(t, []string{"hund"}, forms.Alternates)
}

func TestForms_EmptyHasNoAlternates(t *testing.T) {
	forms := Forms("  ?! ")
	require.Equal(t, "", forms.Normalized)
	assert.Empty(t, forms.Alternates)
}

func TestForms_AlternatesNonEmptyIffNormalizedNonEmpty(t *testing.T) {
	for _, in := range []string{"bog", "", "!!!", "søen", "Aa"} {
		forms := Forms(in)
		if forms.Normalized == "" {
			assert.Empty(t, forms.Alternates, "input %q", in)
		} else {
			assert.NotEmpty(t, forms.Alternates, "input %q", in)
		}
	}
}
