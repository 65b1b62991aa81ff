package tables

import (
	"math"
	"regexp"
)

// HeaderKind tags where a table's header row came from.
type HeaderKind int

const (
	// HeaderNone means the table has no matched or synthesized header.
	HeaderNone HeaderKind = iota
	// HeaderFound means an existing header-like row above the table was matched.
	HeaderFound
	// HeaderSynthesized means the header was built from aligned fragments above the table.
	HeaderSynthesized
)

// String returns "none", "found" or "synthesized".
func (k HeaderKind) String() string {
	switch k {
	case HeaderFound:
		return "found"
	case HeaderSynthesized:
		return "synthesized"
	default:
		return "none"
	}
}

// MarshalText encodes the kind as its String form.
func (k HeaderKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// HeaderMatch is the outcome of header matching for one block.
type HeaderMatch struct {
	Kind HeaderKind
	Row  Row
	// Score is the alignment-times-proximity score of a found header.
	Score float64
	// Sources indexes the candidate rows the header was taken from: the
	// header rows for HeaderFound, the page rows for HeaderSynthesized.
	Sources []int
}

// Found reports whether the match carries a row.
func (m HeaderMatch) Found() bool { return m.Kind != HeaderNone }

var synthesisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2}`),
	regexp.MustCompile(`\d{1,2}/\d{4}`),
	regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}`),
	regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{2}`),
	regexp.MustCompile(`\d{4}`),
	regexp.MustCompile(`exercice\s+n(?:-\d)?`),
	regexp.MustCompile(`n-\d`),
}

var synthesisKeywords = []string{"brut", "net", "amortissement", "depreciation", "total", "montant"}

// MatchHeader finds the header for a block. It first scores the header
// rows above the block by column alignment and proximity; when none clears
// p.MinHeaderScore it assembles a header from date, year and keyword
// fragments above the block that line up with the columns.
func MatchHeader(headerRows []Row, block Block, columns []float64, rows []Row, p Profile) HeaderMatch {
	if len(block.Rows) == 0 || len(columns) == 0 {
		return HeaderMatch{}
	}
	tableY := block.Y()
	if m := explicitHeader(headerRows, tableY, columns, p); m.Found() {
		return m
	}
	return synthesizeHeader(rows, tableY, columns, p)
}

func explicitHeader(headerRows []Row, tableY float64, columns []float64, p Profile) HeaderMatch {
	best := HeaderMatch{}
	for i, h := range headerRows {
		if len(h.Fragments) == 0 {
			continue
		}
		headerY := h.Y()
		if headerY >= tableY {
			continue
		}
		aligned := 0
		for _, f := range h.Fragments {
			if alignedColumn(f.Left(), columns, p.HeaderAlignTolerance) >= 0 {
				aligned++
			}
		}
		alignment := float64(aligned) / float64(len(h.Fragments))
		proximity := 1 / (1 + (tableY-headerY)/p.ProximityScale)
		score := alignment * proximity
		if score > best.Score {
			best = HeaderMatch{Kind: HeaderFound, Row: h, Score: score, Sources: []int{i}}
		}
	}
	if best.Score > p.MinHeaderScore {
		return best
	}
	return HeaderMatch{}
}

func synthesizeHeader(rows []Row, tableY float64, columns []float64, p Profile) HeaderMatch {
	var kept []TextFragment
	var sources []int
	taken := make(map[int]bool)

	for i, row := range rows {
		if len(row.Fragments) == 0 {
			continue
		}
		rowY := row.Y()
		if rowY >= tableY || tableY-rowY > p.SynthesisWindow {
			continue
		}
		used := false
		for _, f := range row.Fragments {
			if !isHeaderText(f.Text) {
				continue
			}
			col := alignedColumn(f.Left(), columns, p.SynthesisAlignTolerance)
			if col < 0 || taken[col] || nearKept(f, kept, p.SynthesisDedupWindow) {
				continue
			}
			taken[col] = true
			kept = append(kept, f)
			used = true
		}
		if used {
			sources = append(sources, i)
		}
	}

	if len(taken) < p.MinSynthesizedColumns {
		return HeaderMatch{}
	}
	frags := make([]TextFragment, len(kept))
	copy(frags, kept)
	return HeaderMatch{Kind: HeaderSynthesized, Row: newRow(frags), Sources: sources}
}

func isHeaderText(text string) bool {
	t := normalizeText(text)
	for _, re := range synthesisPatterns {
		if re.MatchString(t) {
			return true
		}
	}
	return containsAny(t, synthesisKeywords)
}

// alignedColumn returns the index of the first column within tol of x,
// or -1.
func alignedColumn(x float64, columns []float64, tol float64) int {
	for i, c := range columns {
		if math.Abs(x-c) < tol {
			return i
		}
	}
	return -1
}

func nearKept(f TextFragment, kept []TextFragment, window float64) bool {
	for _, k := range kept {
		if math.Abs(k.Left()-f.Left()) < window {
			return true
		}
	}
	return false
}
