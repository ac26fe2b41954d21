package dialect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/rowdex/pkg/dialect"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDetectTabSeparatedSingleQuoted(t *testing.T) {
	path := writeTemp(t, "'id'\t'name'\t'age'\n'1'\t'alice'\t'30'\n")
	result, err := dialect.Detect(path)
	require.NoError(t, err)
	require.Equal(t, '\t', result.Separator)
	require.Equal(t, '\'', result.Quote)
}

func TestDetectAmbiguousSeparator(t *testing.T) {
	path := writeTemp(t, "a,b;c\nd,e;f\n")
	result, err := dialect.Detect(path)
	require.NoError(t, err)
	require.Equal(t, rune(0), result.Separator)
	require.Equal(t, rune(0), result.Quote)
}

func TestDetectCommaSeparatedDoubleQuoted(t *testing.T) {
	path := writeTemp(t, `"id","name","age"`+"\n"+`"1","alice","30"`+"\n")
	result, err := dialect.Detect(path)
	require.NoError(t, err)
	require.Equal(t, ',', result.Separator)
	require.Equal(t, '"', result.Quote)
}

func TestDetectSpaceSeparatedNoQuote(t *testing.T) {
	path := writeTemp(t, "id name age\n1 alice 30\n")
	result, err := dialect.Detect(path)
	require.NoError(t, err)
	require.Equal(t, ' ', result.Separator)
	require.Equal(t, rune(0), result.Quote)
}

func TestDetectSkipsLeadingBlankLines(t *testing.T) {
	path := writeTemp(t, "\n\n  \nid,name\n1,alice\n")
	result, err := dialect.Detect(path)
	require.NoError(t, err)
	require.Equal(t, ',', result.Separator)
}

func TestDetectQuoteByBigraphFallback(t *testing.T) {
	path := writeTemp(t, `id;"first name";age`+"\n"+`1;"alice smith";30`+"\n")
	result, err := dialect.Detect(path)
	require.NoError(t, err)
	require.Equal(t, ';', result.Separator)
	require.Equal(t, '"', result.Quote)
}

func TestDetectMissingFile(t *testing.T) {
	_, err := dialect.Detect("/no/such/file.csv")
	require.Error(t, err)
}

func TestDetectEmptyFile(t *testing.T) {
	path := writeTemp(t, "")
	result, err := dialect.Detect(path)
	require.NoError(t, err)
	require.Equal(t, ',', result.Separator)
	require.Equal(t, rune(0), result.Quote)
}
