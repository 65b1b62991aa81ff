package tables

import (
	"math"
	"sort"
)

// GroupRows clusters fragments into rows by vertical center, top to bottom.
// A fragment joins the running row while its center is within
// p.RowTolerance of the previous fragment's center. Unusable fragments
// are skipped.
func GroupRows(frags []TextFragment, p Profile) []Row {
	sorted := usableFragments(frags)
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CenterY() < sorted[j].CenterY()
	})

	var rows []Row
	current := []TextFragment{sorted[0]}
	for _, f := range sorted[1:] {
		prev := current[len(current)-1]
		if math.Abs(f.CenterY()-prev.CenterY()) <= p.RowTolerance {
			current = append(current, f)
			continue
		}
		rows = append(rows, newRow(current))
		current = []TextFragment{f}
	}
	return append(rows, newRow(current))
}

func newRow(frags []TextFragment) Row {
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].Left() < frags[j].Left()
	})
	return Row{Fragments: frags}
}
