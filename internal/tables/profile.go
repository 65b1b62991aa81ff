package tables

import (
	"fmt"
	"sort"
)

// FinancialRule selects how RowClassifier decides a row carries data.
type FinancialRule string

const (
	// AnyContent accepts rows with a digit or a word of two or more letters.
	AnyContent FinancialRule = "any_content"
	// DigitDensity accepts rows holding at least one mostly numeric fragment.
	DigitDensity FinancialRule = "digit_density"
)

// Assignment selects how GridRenderer maps a fragment to a column.
type Assignment string

const (
	// Nearest puts a fragment in the column whose anchor is closest to its left edge.
	Nearest Assignment = "nearest"
	// Threshold puts a fragment in the last column whose anchor it has crossed.
	Threshold Assignment = "threshold"
)

// Profile holds every threshold used by the reconstruction pipeline.
// All distances are in pixels.
type Profile struct {
	Name string `json:"name"`

	// Row grouping
	RowTolerance float64 `json:"row_tolerance"`

	// Row classification
	FinancialRule        FinancialRule `json:"financial_rule"`
	NumericDensity       float64       `json:"numeric_density"`
	AlphaDigitRatio      float64       `json:"alpha_digit_ratio"`
	ShortHeaderFragments int           `json:"short_header_fragments"`

	// Block assembly
	TableGap         float64 `json:"table_gap"`
	MaxFragmentDelta int     `json:"max_fragment_delta"`
	MinTableRows     int     `json:"min_table_rows"`
	MultiColumnShare float64 `json:"multi_column_share"`
	NumericRowShare  float64 `json:"numeric_row_share"`

	// Column detection
	BucketSize    float64 `json:"bucket_size"`
	MinColumnGap  float64 `json:"min_column_gap"`
	ClusterFactor float64 `json:"cluster_factor"`
	MinRadius     int     `json:"min_radius"`
	MaxRadius     int     `json:"max_radius"`
	MaxColumns    int     `json:"max_columns"`

	// Header matching
	MatchHeaders            bool    `json:"match_headers"`
	HeaderAlignTolerance    float64 `json:"header_align_tolerance"`
	ProximityScale          float64 `json:"proximity_scale"`
	MinHeaderScore          float64 `json:"min_header_score"`
	SynthesisWindow         float64 `json:"synthesis_window"`
	SynthesisAlignTolerance float64 `json:"synthesis_align_tolerance"`
	SynthesisDedupWindow    float64 `json:"synthesis_dedup_window"`
	MinSynthesizedColumns   int     `json:"min_synthesized_columns"`

	// Rendering
	Assignment      Assignment `json:"assignment"`
	AssignTolerance float64    `json:"assign_tolerance"`
}

// Standard is the header-matching profile used by default.
func Standard() Profile {
	return Profile{
		Name: "standard",

		RowTolerance: 10,

		FinancialRule:        AnyContent,
		NumericDensity:       0.5,
		AlphaDigitRatio:      1.5,
		ShortHeaderFragments: 4,

		TableGap:         60,
		MaxFragmentDelta: 2,
		MinTableRows:     3,
		MultiColumnShare: 0.2,
		NumericRowShare:  0.3,

		BucketSize:    10,
		MinColumnGap:  20,
		ClusterFactor: 0.6,
		MinRadius:     50,
		MaxRadius:     200,
		MaxColumns:    8,

		MatchHeaders:            true,
		HeaderAlignTolerance:    40,
		ProximityScale:          100,
		MinHeaderScore:          0.3,
		SynthesisWindow:         200,
		SynthesisAlignTolerance: 50,
		SynthesisDedupWindow:    30,
		MinSynthesizedColumns:   2,

		Assignment:      Nearest,
		AssignTolerance: 10,
	}
}

// Lightweight trades header matching for looser row merging and a
// stricter data-row test.
func Lightweight() Profile {
	p := Standard()
	p.Name = "lightweight"
	p.RowTolerance = 20
	p.TableGap = 50
	p.FinancialRule = DigitDensity
	p.MatchHeaders = false
	p.Assignment = Threshold
	return p
}

var profiles = map[string]func() Profile{
	"standard":    Standard,
	"lightweight": Lightweight,
}

// ProfileByName resolves a named profile. The empty name means standard.
func ProfileByName(name string) (Profile, error) {
	if name == "" {
		return Standard(), nil
	}
	fn, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown table profile %q", name)
	}
	return fn(), nil
}

// ProfileNames lists the registered profile names in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate rejects profiles that would stall or misbehave.
func (p Profile) Validate() error {
	switch {
	case p.RowTolerance <= 0:
		return fmt.Errorf("row tolerance must be positive")
	case p.TableGap <= 0:
		return fmt.Errorf("table gap must be positive")
	case p.BucketSize <= 0:
		return fmt.Errorf("bucket size must be positive")
	case p.MinTableRows < 1:
		return fmt.Errorf("min table rows must be at least 1")
	case p.MaxColumns < 1:
		return fmt.Errorf("max columns must be at least 1")
	case p.MinRadius <= 0 || p.MaxRadius < p.MinRadius:
		return fmt.Errorf("cluster radius bounds [%d, %d] are invalid", p.MinRadius, p.MaxRadius)
	case p.ProximityScale <= 0:
		return fmt.Errorf("proximity scale must be positive")
	}
	switch p.FinancialRule {
	case AnyContent, DigitDensity:
	default:
		return fmt.Errorf("unknown financial rule %q", p.FinancialRule)
	}
	switch p.Assignment {
	case Nearest, Threshold:
	default:
		return fmt.Errorf("unknown column assignment %q", p.Assignment)
	}
	return nil
}
