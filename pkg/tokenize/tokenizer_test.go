package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/rowdex/pkg/contract"
)

func TestTokenizeLineDefaults(t *testing.T) {
	p := contract.DefaultTokenizerParams()
	got := tokenizeLine("id,name,age", p)
	assert.Equal(t, []string{"id", "name", "age"}, got)
}

func TestTokenizeLineQuotedFieldWithSeparator(t *testing.T) {
	p := contract.DefaultTokenizerParams()
	got := tokenizeLine(`1,"smith, john",30`, p)
	assert.Equal(t, []string{"1", "smith, john", "30"}, got)
}

func TestTokenizeLineConsecutiveQuotesToggleState(t *testing.T) {
	p := contract.DefaultTokenizerParams()
	got := tokenizeLine(`1,"ab""cd",30`, p)
	assert.Equal(t, []string{"1", "abcd", "30"}, got)
}

func TestTokenizeLineConsecutiveSeparatorsProduceEmptyFields(t *testing.T) {
	p := contract.DefaultTokenizerParams()
	got := tokenizeLine("a,,c", p)
	assert.Equal(t, []string{"a", "", "c"}, got)
}

func TestTokenizeLineEscapeDisabledByDefault(t *testing.T) {
	p := contract.DefaultTokenizerParams()
	got := tokenizeLine(`a\,b`, p)
	assert.Equal(t, []string{`a\`, "b"}, got)
}

func TestTokenizeLineEscapeCharPassesNextLiteral(t *testing.T) {
	p := contract.TokenizerParams{Escape: '\\', Separator: ',', Quote: '"'}
	got := tokenizeLine(`a\,b,c`, p)
	assert.Equal(t, []string{"a,b", "c"}, got)
}

func TestTokenizeLineUnterminatedQuoteFinalizesAsIs(t *testing.T) {
	p := contract.DefaultTokenizerParams()
	got := tokenizeLine(`1,"unterminated`, p)
	assert.Equal(t, []string{"1", "unterminated"}, got)
}

func TestTokenizeLineSingleEmptyField(t *testing.T) {
	p := contract.DefaultTokenizerParams()
	got := tokenizeLine("", p)
	assert.Equal(t, []string{""}, got)
}

func TestTokenizeLineRussianFields(t *testing.T) {
	p := contract.DefaultTokenizerParams()
	got := tokenizeLine("строка10,1,2,3", p)
	assert.Equal(t, "строка10", got[0])
}
