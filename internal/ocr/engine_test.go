package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/dgallion1/ocrgrid/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguages(t *testing.T) {
	assert.Equal(t, []string{"fra", "eng"}, ParseLanguages("fra+eng"))
	assert.Equal(t, []string{"fra", "deu"}, ParseLanguages(" fra , deu "))
	assert.Nil(t, ParseLanguages(""))
	assert.Nil(t, ParseLanguages("++"))
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(Options{Kind: "remote", URL: "http://ocr.local/recognize"})
	require.NoError(t, err)
	assert.Equal(t, "remote", e.Name())

	_, err = NewEngine(Options{Kind: "remote"})
	assert.Error(t, err)

	e, err = NewEngine(Options{Kind: "none"})
	require.NoError(t, err)
	_, err = e.Recognize(context.Background(), Input{Page: 1})
	assert.ErrorIs(t, err, ErrOCRNotEnabled)

	_, err = NewEngine(Options{Kind: "abbyy"})
	assert.Error(t, err)
}

type fakeEngine struct {
	frags []tables.TextFragment
	err   error
	calls int
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, in Input) ([]tables.TextFragment, error) {
	f.calls++
	return f.frags, f.err
}

func TestWithStats(t *testing.T) {
	fake := &fakeEngine{frags: []tables.TextFragment{tables.NewFragment("a", 0, 0, 10, 10, 1)}}
	stats := NewStats(0)
	e := WithStats(fake, stats)
	assert.Equal(t, "fake", e.Name())

	frags, err := e.Recognize(context.Background(), Input{Page: 1})
	require.NoError(t, err)
	assert.Len(t, frags, 1)

	fake.err = errors.New("boom")
	_, err = e.Recognize(context.Background(), Input{Page: 2})
	assert.EqualError(t, err, "boom")

	assert.Equal(t, 2, fake.calls)
	snap := stats.Snapshot()
	assert.Equal(t, 2, snap.Pages)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 1, snap.Fragments)

	assert.Same(t, fake, WithStats(fake, nil))
}

func TestRetryableErrorTruncates(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	err := &RetryableError{StatusCode: 503, Message: string(long)}
	assert.Contains(t, err.Error(), "status 503")
	assert.Less(t, len(err.Error()), 260)
}
