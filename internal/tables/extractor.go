package tables

import (
	"fmt"
	"log/slog"
)

// PageResult is everything the extractor learned about one page.
type PageResult struct {
	Page   int             `json:"page"`
	Tables []RenderedTable `json:"tables"`
	// Leftover holds the usable fragments not placed in any table.
	Leftover   []TextFragment `json:"leftover"`
	Rows       int            `json:"rows"`
	HeaderRows int            `json:"header_rows"`
	DataRows   int            `json:"data_rows"`
}

// Extractor runs the reconstruction pipeline with a fixed profile.
// It holds no per-page state and may be shared across goroutines.
type Extractor struct {
	profile Profile
	log     *slog.Logger
}

func NewExtractor(p Profile, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Extractor{profile: p, log: log}
}

// Profile returns the extractor's thresholds.
func (e *Extractor) Profile() Profile { return e.profile }

// ExtractTablesFromPage returns the tables found among a page's fragments,
// top to bottom. It never fails: malformed fragments are skipped and an
// internal fault yields an empty list and a logged warning.
func (e *Extractor) ExtractTablesFromPage(frags []TextFragment, page int) []RenderedTable {
	return e.ExtractPage(frags, page).Tables
}

// ExtractPage is ExtractTablesFromPage plus the fragments left outside
// tables and row counts.
func (e *Extractor) ExtractPage(frags []TextFragment, page int) (res PageResult) {
	usable := usableFragments(frags)
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("table detection error", "page", page, "error", fmt.Sprint(r))
			res = PageResult{Page: page, Leftover: usable}
		}
	}()
	return e.extract(usable, page)
}

func (e *Extractor) extract(frags []TextFragment, page int) PageResult {
	p := e.profile
	res := PageResult{Page: page}

	rows := GroupRows(frags, p)
	res.Rows = len(rows)

	// A row is either header-like or data, never both. Both kinds feed the
	// block grouping, where a header-like row may only open a block.
	var headerIdx, candIdx []int
	var leads []bool
	for i, row := range rows {
		switch {
		case IsHeaderRow(row, p):
			headerIdx = append(headerIdx, i)
			candIdx = append(candIdx, i)
			leads = append(leads, true)
		case IsFinancialRow(row, p):
			res.DataRows++
			candIdx = append(candIdx, i)
			leads = append(leads, false)
		}
	}
	res.HeaderRows = len(headerIdx)
	if res.DataRows == 0 {
		res.Leftover = frags
		return res
	}

	candRows := pick(rows, candIdx)
	spans := assemble(candRows, leads, p)

	// Rows inside a block, or already used as a header, are not offered as
	// header candidates again.
	claimed := make(map[int]bool)
	for _, s := range spans {
		for k := s.start; k < s.end; k++ {
			claimed[candIdx[k]] = true
		}
	}

	var placed []TextFragment
	for _, s := range spans {
		block := Block{Rows: candRows[s.start:s.end]}
		columns := DetectColumns(block.Rows, p)

		var header HeaderMatch
		if p.MatchHeaders && !s.led {
			hIdx := unclaimed(headerIdx, claimed)
			allIdx := unclaimed(allIndices(len(rows)), claimed)
			header = MatchHeader(pick(rows, hIdx), block, columns, pick(rows, allIdx), p)
			switch header.Kind {
			case HeaderFound:
				claimed[hIdx[header.Sources[0]]] = true
			case HeaderSynthesized:
				for _, src := range header.Sources {
					claimed[allIdx[src]] = true
				}
			}
		}

		t := Render(block, header, columns, p)
		t.Page = page
		res.Tables = append(res.Tables, t)

		placed = append(placed, header.Row.Fragments...)
		for _, r := range block.Rows {
			placed = append(placed, r.Fragments...)
		}
		e.log.Debug("created table",
			"page", page,
			"rows", len(t.Cells),
			"columns", len(columns),
			"header", header.Kind.String(),
		)
	}

	res.Leftover = subtract(frags, placed)
	if len(res.Tables) > 0 {
		e.log.Info("page tables detected",
			"page", page,
			"tables", len(res.Tables),
			"header_rows", res.HeaderRows,
			"data_rows", res.DataRows,
		)
	}
	return res
}

func pick(rows []Row, idx []int) []Row {
	out := make([]Row, len(idx))
	for i, k := range idx {
		out[i] = rows[k]
	}
	return out
}

func unclaimed(idx []int, claimed map[int]bool) []int {
	out := make([]int, 0, len(idx))
	for _, k := range idx {
		if !claimed[k] {
			out = append(out, k)
		}
	}
	return out
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// subtract removes one occurrence of each placed fragment from frags,
// keeping the original order of what remains.
func subtract(frags, placed []TextFragment) []TextFragment {
	pending := make(map[TextFragment]int, len(placed))
	for _, f := range placed {
		pending[f]++
	}
	var out []TextFragment
	for _, f := range frags {
		if pending[f] > 0 {
			pending[f]--
			continue
		}
		out = append(out, f)
	}
	return out
}
