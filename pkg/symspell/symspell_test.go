package symspell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kat", "kat", 0},
		{"kat", "hat", 1},
		{"spisr", "spiser", 1},
		{"spisr", "spise", 1},
		{"hest", "heste", 1},
		{"klase", "klasse", 1},
		{"ab", "ba", 1}, // adjacent transposition counts as one edit
		{"frokost", "forkost", 1},
		{"hund", "kat", 4},
		{"blå", "bla", 1}, // rune-safe
	}
	for _, tc := range tests {
		t.Run(tc.a+"_"+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.expected, Distance(tc.a, tc.b))
		})
	}
}

func TestIndexLookup_WithinDistance(t *testing.T) {
	ix := NewIndex()
	ix.Add("spiser", 10)
	ix.Add("spise", 10)
	ix.Add("klasse", 10)

	got := ix.Lookup("spisr", 2)
	require.Len(t, got, 2)
	for _, s := range got {
		assert.LessOrEqual(t, s.Distance, 2)
	}
	terms := []string{got[0].Term, got[1].Term}
	assert.Contains(t, terms, "spiser")
	assert.Contains(t, terms, "spise")
}

func TestIndexLookup_Ordering(t *testing.T) {
	ix := NewIndex()
	ix.Add("bord", 10)
	ix.Add("bard", 500)
	ix.Add("bort", 10)

	got := ix.Lookup("bord", 1)
	require.NotEmpty(t, got)
	// Exact hit always sorts first.
	assert.Equal(t, "bord", got[0].Term)
	assert.Equal(t, 0, got[0].Distance)
	// Equal distance orders by count descending, then term.
	require.Len(t, got, 3)
	assert.Equal(t, "bard", got[1].Term)
	assert.Equal(t, "bort", got[2].Term)
}

func TestIndexLookup_RespectsMaxDistance(t *testing.T) {
	ix := NewIndex()
	ix.Add("klasse", 10)

	assert.Empty(t, ix.Lookup("klae", 1)) // distance 2 away
	got := ix.Lookup("klae", 2)
	require.Len(t, got, 1)
	assert.Equal(t, "klasse", got[0].Term)
	assert.Equal(t, 2, got[0].Distance)
}

func TestIndexAdd_KeepsHigherCount(t *testing.T) {
	ix := NewIndex()
	ix.Add("bog", 10)
	ix.Add("bog", 1000)
	ix.Add("bog", 5)

	got := ix.Lookup("bog", 0)
	require.Len(t, got, 1)
	assert.Equal(t, 1000, got[0].Count)
	assert.Equal(t, 1, ix.Len())
}

func TestIndexLookup_LongWordsSharePrefix(t *testing.T) {
	// Words longer than the prefix window still resolve via their prefix.
	ix := NewIndex(WithPrefixLength(7))
	ix.Add("undervisningen", 10)

	got := ix.Lookup("undervisningne", 2)
	require.Len(t, got, 1)
	assert.Equal(t, "undervisningen", got[0].Term)
	assert.Equal(t, 1, got[0].Distance) // trailing transposition
}

func TestIndexContains(t *testing.T) {
	ix := NewIndex()
	ix.Add("hygge", 10)
	assert.True(t, ix.Contains("hygge"))
	assert.False(t, ix.Contains("hyggelig"))
}

func TestIndex_CountThresholdFiltersRareTerms(t *testing.T) {
	ix := NewIndex(WithCountThreshold(5))
	ix.Add("sjælden", 1)
	assert.False(t, ix.Contains("sjælden"))
	assert.Empty(t, ix.Lookup("sjælden", 1))
}
