package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("")
	require.NoError(t, err)
	assert.Equal(t, "standard", p.Name)

	p, err = ProfileByName("lightweight")
	require.NoError(t, err)
	assert.Equal(t, 20.0, p.RowTolerance)
	assert.Equal(t, 50.0, p.TableGap)
	assert.Equal(t, DigitDensity, p.FinancialRule)
	assert.Equal(t, Threshold, p.Assignment)
	assert.False(t, p.MatchHeaders)

	_, err = ProfileByName("strict")
	assert.Error(t, err)
}

func TestProfileNames(t *testing.T) {
	assert.Equal(t, []string{"lightweight", "standard"}, ProfileNames())
}

func TestProfile_Validate(t *testing.T) {
	for _, name := range ProfileNames() {
		p, err := ProfileByName(name)
		require.NoError(t, err)
		assert.NoError(t, p.Validate(), name)
	}

	tests := []struct {
		name   string
		mutate func(*Profile)
	}{
		{"row tolerance", func(p *Profile) { p.RowTolerance = 0 }},
		{"table gap", func(p *Profile) { p.TableGap = -1 }},
		{"bucket", func(p *Profile) { p.BucketSize = 0 }},
		{"max columns", func(p *Profile) { p.MaxColumns = 0 }},
		{"radius", func(p *Profile) { p.MaxRadius = 10 }},
		{"rule", func(p *Profile) { p.FinancialRule = "vibes" }},
		{"assignment", func(p *Profile) { p.Assignment = "random" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Standard()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}
