package tables

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// headerVocabulary holds financial-statement header terms, matched as
// substrings of the folded, lowercased row text.
var headerVocabulary = []string{
	"actif", "passif", "total", "brut", "amortissement", "amort",
	"net", "exercice", "capital", "reserves", "resultat",
	"charges", "produits", "exploitation", "financier",
	"montant", "date", "libelle", "compte", "deprec",
	"n-1", "n+1",
	"assets", "liabilities", "gross", "depreciation", "equity",
	"revenue", "expenses", "amount", "period", "fiscal year",
}

var (
	yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	dateRe = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
)

// IsHeaderRow reports whether a row reads like a table header: it carries
// a header term, a year or a date, and is either mostly alphabetic once
// dates and years are removed or short enough to be given the benefit of
// the doubt.
func IsHeaderRow(row Row, p Profile) bool {
	if len(row.Fragments) == 0 {
		return false
	}
	text := normalizeText(row.Text())

	if !containsAny(text, headerVocabulary) && !yearRe.MatchString(text) && !dateRe.MatchString(text) {
		return false
	}

	clean := dateRe.ReplaceAllString(text, "")
	clean = yearRe.ReplaceAllString(clean, "")
	letters, digits := countLettersDigits(clean)
	if float64(letters) > float64(digits)*p.AlphaDigitRatio {
		return true
	}
	return len(row.Fragments) <= p.ShortHeaderFragments
}

// IsFinancialRow reports whether a row may belong to a table body.
func IsFinancialRow(row Row, p Profile) bool {
	if len(row.Fragments) == 0 {
		return false
	}
	for _, f := range row.Fragments {
		switch p.FinancialRule {
		case DigitDensity:
			if isMostlyNumeric(f.Text, p.NumericDensity) {
				return true
			}
		default:
			if hasDigit(f.Text) {
				return true
			}
			if letters, _ := countLettersDigits(f.Text); letters >= 2 {
				return true
			}
		}
	}
	return false
}

// isMostlyNumeric reports whether digits, minus signs and decimal points
// make up more than threshold of the text once spaces and commas, used
// as grouping separators, are removed.
func isMostlyNumeric(text string, threshold float64) bool {
	if !hasDigit(text) {
		return false
	}
	clean := strings.NewReplacer(" ", "", ",", "").Replace(text)
	total, numeric := 0, 0
	for _, r := range clean {
		total++
		if unicode.IsDigit(r) || r == '-' || r == '.' {
			numeric++
		}
	}
	if total == 0 {
		return false
	}
	return float64(numeric)/float64(total) > threshold
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func rowHasDigit(row Row) bool {
	for _, f := range row.Fragments {
		if hasDigit(f.Text) {
			return true
		}
	}
	return false
}

func countLettersDigits(s string) (letters, digits int) {
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	return letters, digits
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// normalizeText lowercases s and strips combining accents so that
// "Réserves" and "reserves" match the same vocabulary entry.
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	// Transformers carry state, so a fresh chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
