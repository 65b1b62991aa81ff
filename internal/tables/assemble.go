package tables

// AssembleTables groups consecutive data rows into blocks. Rows must be in
// top-to-bottom order. A row extends the running block while it sits
// within p.TableGap of the previous row and its fragment count differs by
// at most p.MaxFragmentDelta. Blocks that are too short or do not look
// tabular are dropped.
func AssembleTables(rows []Row, p Profile) []Block {
	var blocks []Block
	for _, span := range assemble(rows, nil, p) {
		blocks = append(blocks, Block{Rows: rows[span.start:span.end]})
	}
	return blocks
}

// span is a half-open range of row indices. led marks a span whose first
// row is a header-like row.
type span struct {
	start, end int
	led        bool
}

// assemble runs the block grouping over rows in page order. header, when
// set, flags header-like rows: such a row may open a run as its header
// but never joins a run that already holds data. Meeting one after data
// closes the run, and the row is left free for header matching unless it
// sits further than p.TableGap below the data, in which case it opens the
// next run.
func assemble(rows []Row, header []bool, p Profile) []span {
	isHeader := func(i int) bool { return header != nil && header[i] }

	var spans []span
	start, hasData := -1, false
	closeRun := func(end int) {
		if start >= 0 && hasData && keepBlock(rows[start:end], p) {
			spans = append(spans, span{start: start, end: end, led: isHeader(start)})
		}
		start, hasData = -1, false
	}

	for i := range rows {
		switch {
		case start < 0:
			start, hasData = i, !isHeader(i)
		case isHeader(i):
			near := continues(rows[i-1], rows[i], p)
			if hasData {
				closeRun(i)
				if near {
					continue
				}
			}
			start, hasData = i, false
		case continues(rows[i-1], rows[i], p):
			hasData = true
		default:
			closeRun(i)
			start, hasData = i, true
		}
	}
	closeRun(len(rows))
	return spans
}

// continues reports whether cur may extend a run that ends with prev.
func continues(prev, cur Row, p Profile) bool {
	gap := cur.Y() - prev.Y()
	delta := len(cur.Fragments) - len(prev.Fragments)
	if delta < 0 {
		delta = -delta
	}
	return gap <= p.TableGap && delta <= p.MaxFragmentDelta
}

// keepBlock applies the minimum size and the tabular-shape test: enough
// multi-fragment rows, or failing that enough digit-bearing rows.
func keepBlock(rows []Row, p Profile) bool {
	if len(rows) < p.MinTableRows {
		return false
	}
	n := float64(len(rows))

	multi := 0
	for _, r := range rows {
		if len(r.Fragments) >= 2 {
			multi++
		}
	}
	if float64(multi) >= n*p.MultiColumnShare {
		return true
	}

	numeric := 0
	for _, r := range rows {
		if rowHasDigit(r) {
			numeric++
		}
	}
	return float64(numeric) >= n*p.NumericRowShare
}
