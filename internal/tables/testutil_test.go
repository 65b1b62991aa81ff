package tables

import "unicode/utf8"

// frag places text with its left edge at x and its vertical center at y.
func frag(text string, x, y float64) TextFragment {
	w := float64(8*utf8.RuneCountInString(text) + 4)
	return NewFragment(text, x, y-8, x+w, y+8, 0.95)
}

func row(frags ...TextFragment) Row {
	return Row{Fragments: frags}
}

// scenarioA is a balance-sheet excerpt: a header line and two asset lines.
func scenarioA() []TextFragment {
	return []TextFragment{
		frag("2 100", 350, 160),
		frag("Actif", 10, 100),
		frag("Brut", 200, 100),
		frag("Net", 350, 100),
		frag("Terrain", 10, 130),
		frag("1 000", 200, 130),
		frag("800", 350, 130),
		frag("Bâtiments", 10, 160),
		frag("2 500", 200, 160),
	}
}

// numericBlock returns n rows of a label and two amounts starting at y.
func numericBlock(y float64, n int) []TextFragment {
	var out []TextFragment
	for i := range n {
		yy := y + float64(i)*30
		out = append(out,
			frag("Poste", 10, yy),
			frag("1 200", 200, yy),
			frag("950", 350, yy),
		)
	}
	return out
}
