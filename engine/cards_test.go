package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDeckComposition(t *testing.T) {
	deck := BuildDeck()
	require.Len(t, deck, DeckSize)

	ids := make(map[string]bool, len(deck))
	kinds := make(map[Kind]int)
	perColor := make(map[Color]int)
	for _, c := range deck {
		require.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
		kinds[c.Kind]++
		if c.Colored() {
			perColor[c.Color]++
		} else {
			assert.Empty(t, c.Color, "colorless card %s has a color", c.ID)
		}
	}

	assert.Equal(t, 76, kinds[KindNumber], "number cards")
	assert.Equal(t, 8, kinds[KindReverse], "reverse cards")
	assert.Equal(t, 8, kinds[KindSkip], "skip cards")
	assert.Equal(t, 8, kinds[KindDraw2], "draw2 cards")
	assert.Equal(t, 4, kinds[KindWild], "wild cards")
	assert.Equal(t, 4, kinds[KindDraw4], "draw4 cards")
	for _, color := range Colors {
		assert.Equal(t, 25, perColor[color], "cards of %s", color)
	}
}

func TestBuildDeckDeterministicOrder(t *testing.T) {
	a, b := BuildDeck(), BuildDeck()
	require.Equal(t, a, b)

	// Colored cards first, grouped by color; Draw4 and Wild close the deck.
	assert.Equal(t, "num-r-0-0", a[0].ID)
	assert.Equal(t, "draw2-y-1", a[99].ID)
	assert.Equal(t, "draw4-0", a[100].ID)
	assert.Equal(t, "wild-3", a[107].ID)
}

func TestCardByID(t *testing.T) {
	c, err := CardByID("num-g-7-1")
	require.NoError(t, err)
	assert.Equal(t, Card{ID: "num-g-7-1", Kind: KindNumber, Color: ColorGreen, Value: 7}, c)

	_, err = CardByID("num-r-10-0")
	require.ErrorIs(t, err, ErrUnknownCard)
}

func TestCardDigest(t *testing.T) {
	// Functionally identical cards collapse; distinct ones do not.
	a, _ := CardByID("num-b-4-0")
	b, _ := CardByID("num-b-4-1")
	c, _ := CardByID("num-b-5-0")
	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), c.Digest())

	r0, _ := CardByID("rev-r-0")
	r1, _ := CardByID("rev-r-1")
	g0, _ := CardByID("rev-g-0")
	assert.Equal(t, r0.Digest(), r1.Digest())
	assert.NotEqual(t, r0.Digest(), g0.Digest())

	w0, _ := CardByID("wild-0")
	w3, _ := CardByID("wild-3")
	d0, _ := CardByID("draw4-0")
	assert.Equal(t, "Wild", w0.Digest())
	assert.Equal(t, w0.Digest(), w3.Digest())
	assert.Equal(t, "Draw4", d0.Digest())
}

func TestParseColor(t *testing.T) {
	for _, c := range Colors {
		got, err := ParseColor(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	for _, v := range []string{"", "red", "Purple", "RED"} {
		_, err := ParseColor(v)
		assert.Error(t, err, "value %q", v)
	}
}
