package tokenize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/rowdex/pkg/contract"
	"github.com/user/rowdex/pkg/tokenize"
)

type fakeSource struct {
	lines []string
	calls map[int]int
}

func newFakeSource(lines []string) *fakeSource {
	return &fakeSource{lines: lines, calls: make(map[int]int)}
}

func (f *fakeSource) GetLine(n int) (string, error) {
	if n < 0 || n >= len(f.lines) {
		return "", &contract.OutOfRangeError{Requested: n, LineCount: len(f.lines)}
	}
	f.calls[n]++
	return f.lines[n], nil
}

func TestGetTokenizedLineCachesResult(t *testing.T) {
	src := newFakeSource([]string{"id,name", "1,alice", "2,bob"})
	tl := tokenize.New(src, 10)

	fields, err := tl.GetTokenizedLine(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "alice"}, fields)

	fields, err = tl.GetTokenizedLine(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "alice"}, fields)
	assert.Equal(t, 1, src.calls[1], "second call must be served from cache")
}

func TestColumnCountUsesHeaderLine(t *testing.T) {
	src := newFakeSource([]string{"id,name,age", "1,alice,30"})
	tl := tokenize.New(src, 10)

	n, err := tl.ColumnCount(0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSetTokenizerFlushesCache(t *testing.T) {
	src := newFakeSource([]string{"id;name", "1;alice"})
	tl := tokenize.New(src, 10)

	_, err := tl.GetTokenizedLine(0)
	require.NoError(t, err)
	assert.Equal(t, 1, tl.CacheSize())

	require.NoError(t, tl.SetTokenizer(contract.TokenizerParams{Escape: 0, Separator: ';', Quote: '"'}))
	assert.Equal(t, 0, tl.CacheSize())

	fields, err := tl.GetTokenizedLine(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, fields)
}

func TestSetTokenizerRejectsNullSeparator(t *testing.T) {
	src := newFakeSource([]string{"id,name"})
	tl := tokenize.New(src, 10)

	err := tl.SetTokenizer(contract.TokenizerParams{Separator: 0, Quote: '"'})
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrInvalidSeparator)

	fields, err := tl.GetTokenizedLine(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, fields, "rejected SetTokenizer must leave prior params in effect")
}

func TestGetTokenizedLinePropagatesOutOfRange(t *testing.T) {
	src := newFakeSource([]string{"id,name"})
	tl := tokenize.New(src, 10)

	_, err := tl.GetTokenizedLine(5)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrOutOfRange)
}
