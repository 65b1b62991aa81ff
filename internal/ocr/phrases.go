package ocr

import (
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/ocrgrid/internal/tables"
)

// DefaultGapFactor is the widest horizontal gap, as a multiple of line
// height, that still joins two words into one phrase.
const DefaultGapFactor = 0.8

// Word is a single recognized token in pixel space.
type Word struct {
	Text       string
	Left       float64
	Top        float64
	Right      float64
	Bottom     float64
	Confidence float64
}

func (w Word) centerY() float64 { return (w.Top + w.Bottom) / 2 }
func (w Word) height() float64  { return w.Bottom - w.Top }

// MergeWords joins words that sit on the same line and are separated by
// less than gapFactor line heights into phrase fragments, so that a
// grouped amount like "1 000" or a label like "Frais de recherche" reaches
// the table extractor as a single fragment. Output runs top to bottom,
// left to right; a phrase's confidence is the mean of its words.
func MergeWords(words []Word, gapFactor float64) []tables.TextFragment {
	var clean []Word
	for _, w := range words {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text == "" || w.Right <= w.Left || w.Bottom <= w.Top {
			continue
		}
		clean = append(clean, w)
	}
	if len(clean) == 0 {
		return nil
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].centerY() < clean[j].centerY() })

	var lines [][]Word
	line := []Word{clean[0]}
	for _, w := range clean[1:] {
		anchor := line[0]
		if math.Abs(w.centerY()-anchor.centerY()) <= math.Max(anchor.height(), w.height())/2 {
			line = append(line, w)
			continue
		}
		lines = append(lines, line)
		line = []Word{w}
	}
	lines = append(lines, line)

	var out []tables.TextFragment
	for _, ln := range lines {
		sort.SliceStable(ln, func(i, j int) bool { return ln[i].Left < ln[j].Left })
		phrase := []Word{ln[0]}
		for _, w := range ln[1:] {
			prev := phrase[len(phrase)-1]
			if w.Left-prev.Right <= gapFactor*math.Max(prev.height(), w.height()) {
				phrase = append(phrase, w)
				continue
			}
			out = append(out, joinPhrase(phrase))
			phrase = []Word{w}
		}
		out = append(out, joinPhrase(phrase))
	}
	return out
}

func joinPhrase(ws []Word) tables.TextFragment {
	texts := make([]string, len(ws))
	left, top := math.Inf(1), math.Inf(1)
	right, bottom := math.Inf(-1), math.Inf(-1)
	var conf float64
	for i, w := range ws {
		texts[i] = w.Text
		left = math.Min(left, w.Left)
		top = math.Min(top, w.Top)
		right = math.Max(right, w.Right)
		bottom = math.Max(bottom, w.Bottom)
		conf += w.Confidence
	}
	return tables.NewFragment(strings.Join(texts, " "), left, top, right, bottom, conf/float64(len(ws)))
}
