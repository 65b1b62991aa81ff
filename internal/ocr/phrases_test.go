package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(text string, left, top, right, bottom, conf float64) Word {
	return Word{Text: text, Left: left, Top: top, Right: right, Bottom: bottom, Confidence: conf}
}

func TestMergeWords_JoinsCloseWordsOnALine(t *testing.T) {
	words := []Word{
		word("000", 218, 102, 245, 120, 0.8),
		word("Terrain", 10, 100, 70, 120, 0.9),
		word("1", 200, 101, 208, 121, 1.0),
		word("800", 350, 100, 378, 120, 0.7),
	}
	frags := MergeWords(words, DefaultGapFactor)
	require.Len(t, frags, 3)

	assert.Equal(t, "Terrain", frags[0].Text)
	assert.Equal(t, "1 000", frags[1].Text)
	assert.Equal(t, "800", frags[2].Text)

	assert.Equal(t, 200.0, frags[1].Left())
	assert.Equal(t, 245.0, frags[1].Right())
	assert.Equal(t, 101.0, frags[1].Top())
	assert.Equal(t, 121.0, frags[1].Bottom())
	assert.InDelta(t, 0.9, frags[1].Confidence, 1e-9)
}

func TestMergeWords_KeepsLinesApart(t *testing.T) {
	words := []Word{
		word("Capital", 10, 100, 60, 120, 0.9),
		word("social", 65, 100, 110, 120, 0.9),
		word("Réserves", 10, 130, 70, 150, 0.9),
	}
	frags := MergeWords(words, DefaultGapFactor)
	require.Len(t, frags, 2)
	assert.Equal(t, "Capital social", frags[0].Text)
	assert.Equal(t, "Réserves", frags[1].Text)
}

func TestMergeWords_SkipsBlankAndDegenerate(t *testing.T) {
	words := []Word{
		word("  ", 10, 100, 20, 120, 0.9),
		word("x", 30, 100, 30, 120, 0.9),
		word("ok", 50, 100, 70, 120, 0.9),
	}
	frags := MergeWords(words, DefaultGapFactor)
	require.Len(t, frags, 1)
	assert.Equal(t, "ok", frags[0].Text)
	assert.Nil(t, MergeWords(nil, DefaultGapFactor))
}
